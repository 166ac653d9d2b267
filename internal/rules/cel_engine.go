package rules

import (
	"strings"
	"sync"

	ierr "github.com/ArowuTest/retail-loyalty-backend/internal/errors"
	"github.com/ArowuTest/retail-loyalty-backend/internal/models"
	"github.com/google/cel-go/cel"
)

// ConditionEngine evaluates a rule's optional extra condition against the
// purchase. An empty condition always passes.
type ConditionEngine interface {
	Compile(expr string) error
	Evaluate(expr string, f models.Facts) (bool, error)
}

// CELEngine evaluates conditions written in CEL, e.g.
//
//	amount >= 500000.0 && brand == "ROLEX" && "strap" in items
//
// Available variables: amount (double), brand, collection, memberTier,
// weekday (string), collectionYear, hour, minute (int), items (list of string).
type CELEngine struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewCELEngine builds the CEL environment
func NewCELEngine() (*CELEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("amount", cel.DoubleType),
		cel.Variable("brand", cel.StringType),
		cel.Variable("collection", cel.StringType),
		cel.Variable("collectionYear", cel.IntType),
		cel.Variable("memberTier", cel.StringType),
		cel.Variable("weekday", cel.StringType),
		cel.Variable("hour", cel.IntType),
		cel.Variable("minute", cel.IntType),
		cel.Variable("items", cel.ListType(cel.StringType)),
	)
	if err != nil {
		return nil, err
	}
	return &CELEngine{env: env, programs: make(map[string]cel.Program)}, nil
}

// Compile type-checks expr and caches the program. It fails with a
// validation error when expr does not compile to a bool.
func (e *CELEngine) Compile(expr string) error {
	_, err := e.program(expr)
	return err
}

// Evaluate runs expr against the purchase facts.
func (e *CELEngine) Evaluate(expr string, f models.Facts) (bool, error) {
	if strings.TrimSpace(expr) == "" {
		return true, nil
	}
	prg, err := e.program(expr)
	if err != nil {
		return false, err
	}

	items, err := f.Purchase.ItemList()
	if err != nil {
		return false, err
	}
	year := int64(0)
	if f.Purchase.CollectionYear != nil {
		year = int64(*f.Purchase.CollectionYear)
	}

	out, _, err := prg.Eval(map[string]any{
		"amount":         f.Amount.InexactFloat64(),
		"brand":          f.Purchase.Brand,
		"collection":     f.Purchase.CollectionName,
		"collectionYear": year,
		"memberTier":     f.Purchase.MemberTier,
		"weekday":        strings.ToUpper(f.At.Weekday().String()),
		"hour":           int64(f.At.Hour()),
		"minute":         int64(f.At.Minute()),
		"items":          items,
	})
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Rule condition could not be evaluated").
			Mark(ierr.ErrValidation)
	}
	ok, isBool := out.Value().(bool)
	if !isBool {
		return false, ierr.NewError("condition did not return a bool").
			WithHint("Rule condition must evaluate to true or false").
			Mark(ierr.ErrValidation)
	}
	return ok, nil
}

func (e *CELEngine) program(expr string) (cel.Program, error) {
	e.mu.RLock()
	prg, ok := e.programs[expr]
	e.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, iss := e.env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, ierr.WithError(iss.Err()).
			WithHintf("Rule condition does not compile: %s", iss.Err().Error()).
			Mark(ierr.ErrValidation)
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, ierr.NewError("condition is not boolean").
			WithHint("Rule condition must evaluate to true or false").
			Mark(ierr.ErrValidation)
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Rule condition could not be prepared").
			Mark(ierr.ErrValidation)
	}

	e.mu.Lock()
	e.programs[expr] = prg
	e.mu.Unlock()
	return prg, nil
}
