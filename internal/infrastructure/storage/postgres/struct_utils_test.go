package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tillpoint/internal/core/entity"
	"tillpoint/internal/core/id"
)

type MockCatalog struct {
	entity.BaseCatalog
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

func TestExtractDBColumns(t *testing.T) {
	cols := ExtractDBColumns[MockCatalog]()

	expectedCols := []string{
		"id", "deletion_mark", "version", "code", "name",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
}

func TestExtractDBColumns_SkipsUntaggedFields(t *testing.T) {
	type withUntagged struct {
		entity.BaseCatalog
		Code    string `db:"code"`
		Ignored string `db:"-"`
		NoTag   string
	}

	cols := ExtractDBColumns[withUntagged]()

	assert.Contains(t, cols, "code")
	assert.NotContains(t, cols, "-")
	assert.NotContains(t, cols, "Ignored")
	assert.NotContains(t, cols, "NoTag")
}

func TestStructToMap(t *testing.T) {
	cat := MockCatalog{
		BaseCatalog: entity.BaseCatalog{
			BaseEntity: entity.BaseEntity{
				ID:           id.New(),
				DeletionMark: true,
				Version:      5,
			},
		},
		Code: "TEST",
		Name: "Test Name",
	}

	m := StructToMap(cat)

	assert.Equal(t, cat.ID, m["id"])
	assert.Equal(t, true, m["deletion_mark"])
	assert.Equal(t, 5, m["version"])
	assert.Equal(t, "TEST", m["code"])
	assert.Equal(t, "Test Name", m["name"])
}

func TestStructToMap_PointerInput(t *testing.T) {
	cat := &MockCatalog{Code: "PTR"}

	m := StructToMap(cat)

	assert.Equal(t, "PTR", m["code"])
}
