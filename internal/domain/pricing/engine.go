package pricing

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"tillpoint/internal/core/apperror"
	"tillpoint/internal/core/types"
)

// Input carries the sale facts a rule can reference.
type Input struct {
	Subtotal       types.Money
	ItemCount      int64
	CustomerLinked bool
	PaymentMethod  string
}

// Engine compiles and evaluates discount expressions. Compiled programs are
// cached per rule version.
type Engine struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewEngine creates the CEL environment for discount rules.
func NewEngine() (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("subtotal", cel.DoubleType),
		cel.Variable("item_count", cel.IntType),
		cel.Variable("customer_linked", cel.BoolType),
		cel.Variable("payment_method", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel env: %w", err)
	}
	return &Engine{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Check compiles an expression and reports syntax or type errors. Used at
// rule save time so broken rules never reach the till.
func (e *Engine) Check(expression string) error {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return apperror.NewValidation("invalid discount expression").
			WithDetail("expression", expression).
			WithCause(issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.DoubleType) && !ast.OutputType().IsExactType(cel.IntType) {
		return apperror.NewValidation("discount expression must return a number").
			WithDetail("expression", expression).
			WithDetail("returns", ast.OutputType().String())
	}
	return nil
}

// Evaluate runs a rule against the input and returns the discount amount.
// Non-applicable rules (negative results) evaluate to zero.
func (e *Engine) Evaluate(rule *DiscountRule, in Input) (types.Money, error) {
	prg, err := e.program(rule)
	if err != nil {
		return types.Zero(), err
	}

	out, _, err := prg.Eval(map[string]any{
		"subtotal":        in.Subtotal.InexactFloat64(),
		"item_count":      in.ItemCount,
		"customer_linked": in.CustomerLinked,
		"payment_method":  in.PaymentMethod,
	})
	if err != nil {
		return types.Zero(), fmt.Errorf("evaluate rule %s: %w", rule.Code, err)
	}

	var discount types.Money
	switch v := out.Value().(type) {
	case float64:
		discount = types.NewMoney(v)
	case int64:
		discount = types.NewMoney(float64(v))
	default:
		return types.Zero(), fmt.Errorf("rule %s returned %T, want number", rule.Code, out.Value())
	}

	if discount.IsNegative() {
		return types.Zero(), nil
	}
	return discount, nil
}

func (e *Engine) program(rule *DiscountRule) (cel.Program, error) {
	key := fmt.Sprintf("%s@%d", rule.ID, rule.Version)

	e.mu.RLock()
	prg, ok := e.programs[key]
	e.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, issues := e.env.Compile(rule.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile rule %s: %w", rule.Code, issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build rule %s: %w", rule.Code, err)
	}

	e.mu.Lock()
	e.programs[key] = prg
	e.mu.Unlock()
	return prg, nil
}
