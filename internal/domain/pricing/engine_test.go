package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/id"
	"tillpoint/internal/core/types"
	"tillpoint/internal/domain"
)

func TestEngine_Check(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	t.Run("valid expression", func(t *testing.T) {
		err := engine.Check(`payment_method == "cash" && subtotal > 100.0 ? subtotal * 0.05 : 0.0`)
		assert.NoError(t, err)
	})

	t.Run("syntax error", func(t *testing.T) {
		err := engine.Check(`subtotal >`)
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})

	t.Run("unknown variable", func(t *testing.T) {
		assert.Error(t, engine.Check(`weather == "sunny" ? 5.0 : 0.0`))
	})

	t.Run("non-numeric result", func(t *testing.T) {
		assert.Error(t, engine.Check(`payment_method`))
	})
}

func TestEngine_Evaluate(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rule := New("store-001", "CASH5", "5% off cash over 100",
		`payment_method == "cash" && subtotal > 100.0 ? subtotal * 0.05 : 0.0`)

	t.Run("applies", func(t *testing.T) {
		discount, err := engine.Evaluate(rule, Input{
			Subtotal:      types.MustMoney("200"),
			PaymentMethod: "cash",
		})
		require.NoError(t, err)
		assert.True(t, discount.Equal(types.MustMoney("10")))
	})

	t.Run("does not apply", func(t *testing.T) {
		discount, err := engine.Evaluate(rule, Input{
			Subtotal:      types.MustMoney("200"),
			PaymentMethod: "credit",
		})
		require.NoError(t, err)
		assert.True(t, discount.IsZero())
	})

	t.Run("negative result evaluates to zero", func(t *testing.T) {
		negative := New("store-001", "NEG", "always negative", `-5.0`)
		discount, err := engine.Evaluate(negative, Input{Subtotal: types.MustMoney("50")})
		require.NoError(t, err)
		assert.True(t, discount.IsZero())
	})

	t.Run("integer result", func(t *testing.T) {
		flat := New("store-001", "FLAT", "flat discount for linked customers",
			`customer_linked && item_count >= 3 ? 15 : 0`)
		discount, err := engine.Evaluate(flat, Input{
			Subtotal:       types.MustMoney("500"),
			ItemCount:      3,
			CustomerLinked: true,
		})
		require.NoError(t, err)
		assert.True(t, discount.Equal(types.MustMoney("15")))
	})
}

// stubRuleRepo serves a fixed rule set; only List is exercised by BestDiscount.
type stubRuleRepo struct {
	rules []*DiscountRule
}

func (r *stubRuleRepo) Create(ctx context.Context, rule *DiscountRule) error  { return nil }
func (r *stubRuleRepo) Update(ctx context.Context, rule *DiscountRule) error  { return nil }
func (r *stubRuleRepo) Delete(ctx context.Context, ruleID id.ID) error        { return nil }
func (r *stubRuleRepo) HardDelete(ctx context.Context, ruleID id.ID) error    { return nil }
func (r *stubRuleRepo) SetDeletionMark(ctx context.Context, ruleID id.ID, marked bool) error {
	return nil
}

func (r *stubRuleRepo) GetByID(ctx context.Context, ruleID id.ID) (*DiscountRule, error) {
	return nil, apperror.NewNotFound("discount_rule", ruleID.String())
}

func (r *stubRuleRepo) GetByCode(ctx context.Context, code string) (*DiscountRule, error) {
	return nil, apperror.NewNotFound("discount_rule", code)
}

func (r *stubRuleRepo) Exists(ctx context.Context, ruleID id.ID) (bool, error) { return false, nil }
func (r *stubRuleRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return false, nil
}

func (r *stubRuleRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*DiscountRule], error) {
	return domain.ListResult[*DiscountRule]{Items: r.rules, TotalCount: int64(len(r.rules))}, nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func TestBestDiscount_PicksLargest(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	repo := &stubRuleRepo{rules: []*DiscountRule{
		New("store-001", "CASH5", "5% cash", `payment_method == "cash" ? subtotal * 0.05 : 0.0`),
		New("store-001", "BULK", "flat 25 for big baskets", `item_count >= 5 ? 25.0 : 0.0`),
	}}
	svc := NewService(repo, engine, passthroughTx{})

	best, err := svc.BestDiscount(context.Background(), "store-001", Input{
		Subtotal:      types.MustMoney("300"),
		ItemCount:     6,
		PaymentMethod: "cash",
	})
	require.NoError(t, err)
	assert.True(t, best.Equal(types.MustMoney("25")))
}

func TestBestDiscount_ClampedToSubtotal(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	repo := &stubRuleRepo{rules: []*DiscountRule{
		New("store-001", "HUGE", "bigger than the basket", `1000.0`),
	}}
	svc := NewService(repo, engine, passthroughTx{})

	best, err := svc.BestDiscount(context.Background(), "store-001", Input{
		Subtotal: types.MustMoney("80"),
	})
	require.NoError(t, err)
	assert.True(t, best.Equal(types.MustMoney("80")))
}

func TestBestDiscount_BrokenRuleSkipped(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	// A rule returning a string fails evaluation and must not block the sale.
	broken := New("store-001", "BROKEN", "returns a string", `payment_method`)
	ok := New("store-001", "OK", "flat 10", `10.0`)

	repo := &stubRuleRepo{rules: []*DiscountRule{broken, ok}}
	svc := NewService(repo, engine, passthroughTx{})

	best, err := svc.BestDiscount(context.Background(), "store-001", Input{
		Subtotal:      types.MustMoney("100"),
		PaymentMethod: "cash",
	})
	require.NoError(t, err)
	assert.True(t, best.Equal(types.MustMoney("10")))
}

func TestBestDiscount_NoRules(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	svc := NewService(&stubRuleRepo{}, engine, passthroughTx{})
	best, err := svc.BestDiscount(context.Background(), "store-001", Input{
		Subtotal: types.MustMoney("100"),
	})
	require.NoError(t, err)
	assert.True(t, best.IsZero())
}
