// Package fiqlgorm turns parsed FIQL expressions into GORM where clauses.
//
//	expr, err := fiql.Parse(r.URL.Query().Get("filter"))
//	if err != nil {
//	    return err
//	}
//	var products []Product
//	err = db.Scopes(fiqlgorm.Scope(expr, fiqlgorm.WithSnakeCaseColumns())).Find(&products).Error
//
// The expression is rendered to SQL and evaluated by the database; nothing is
// evaluated in process.
package fiqlgorm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobeam/stringy"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nlstn/go-fiql"
)

var (
	// ErrUnsupportedComparison is returned for a comparison without a
	// built-in or registered rendering.
	ErrUnsupportedComparison = errors.New("fiqlgorm: unsupported comparison")

	// ErrUnknownSelector is returned by column mappers that reject a selector.
	ErrUnknownSelector = errors.New("fiqlgorm: unknown selector")

	// ErrEmptyExpression is returned for an expression without constraints.
	ErrEmptyExpression = errors.New("fiqlgorm: empty expression")
)

// ColumnMapper maps a selector to a column name.
type ColumnMapper func(selector string) (string, error)

// ValueMapper converts the argument of a constraint to the value bound in SQL.
type ValueMapper func(c *fiql.Constraint) (any, error)

// ComparisonFunc renders a constraint whose comparison is not built in. value
// is the output of the ValueMapper.
type ComparisonFunc func(column clause.Column, value any) (clause.Expression, error)

// Option configures how expressions are rendered.
type Option func(*builder)

// WithColumnMapper sets the selector to column mapping. By default the
// selector is used as the column name unchanged.
func WithColumnMapper(mapper ColumnMapper) Option {
	return func(b *builder) {
		b.columns = mapper
	}
}

// WithColumns only accepts the given selectors and maps each to its column.
// Any other selector fails with ErrUnknownSelector.
func WithColumns(columns map[string]string) Option {
	allowed := make(map[string]string, len(columns))
	for selector, column := range columns {
		allowed[selector] = column
	}
	return WithColumnMapper(func(selector string) (string, error) {
		column, ok := allowed[selector]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownSelector, selector)
		}
		return column, nil
	})
}

// WithSnakeCaseColumns maps selectors such as "lastName" to "last_name".
func WithSnakeCaseColumns() Option {
	return WithColumnMapper(SnakeCase)
}

// WithValueMapper sets the argument conversion. By default arguments are
// bound as strings.
func WithValueMapper(mapper ValueMapper) Option {
	return func(b *builder) {
		b.values = mapper
	}
}

// WithComparison registers the rendering of a comparison, e.g. "=in=".
// Registered comparisons take precedence over the built-in ones.
func WithComparison(comparison string, fn ComparisonFunc) Option {
	return func(b *builder) {
		if b.custom == nil {
			b.custom = make(map[string]ComparisonFunc)
		}
		b.custom[comparison] = fn
	}
}

// SnakeCase converts a selector to snake_case.
func SnakeCase(selector string) (string, error) {
	return stringy.New(selector).SnakeCase("?", "").ToLower(), nil
}

type builder struct {
	columns ColumnMapper
	values  ValueMapper
	custom  map[string]ComparisonFunc
}

func newBuilder(opts []Option) *builder {
	b := &builder{
		columns: func(selector string) (string, error) { return selector, nil },
		values:  func(c *fiql.Constraint) (any, error) { return c.Argument(), nil },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Clause renders expr as a GORM expression.
func Clause(expr *fiql.Expression, opts ...Option) (clause.Expression, error) {
	if expr == nil || !expr.HasConstraint() {
		return nil, ErrEmptyExpression
	}
	return newBuilder(opts).expression(expr)
}

// Scope returns a GORM scope adding expr as a where condition. A rendering
// error is added to the returned *gorm.DB.
func Scope(expr *fiql.Expression, opts ...Option) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		cond, err := Clause(expr, opts...)
		if err != nil {
			_ = db.AddError(err) //nolint:errcheck
			return db
		}
		return db.Clauses(clause.Where{Exprs: []clause.Expression{cond}})
	}
}

func (b *builder) expression(expr *fiql.Expression) (clause.Expression, error) {
	elements := expr.Elements()
	if len(elements) == 1 {
		return b.operand(elements[0])
	}

	exprs := make([]clause.Expression, 0, len(elements))
	for _, el := range elements {
		e, err := b.operand(el)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}

	if op, ok := expr.Operator(); ok && op == fiql.Or {
		return clause.Or(exprs...), nil
	}
	return clause.And(exprs...), nil
}

func (b *builder) operand(op fiql.Operand) (clause.Expression, error) {
	switch v := op.(type) {
	case *fiql.Constraint:
		return b.constraint(v)
	case *fiql.Expression:
		if !v.HasConstraint() {
			return nil, ErrEmptyExpression
		}
		return b.expression(v)
	default:
		return nil, fmt.Errorf("fiqlgorm: unexpected operand %T", op)
	}
}

func (b *builder) constraint(c *fiql.Constraint) (clause.Expression, error) {
	name, err := b.columns(c.Selector())
	if err != nil {
		return nil, err
	}
	column := clause.Column{Table: clause.CurrentTable, Name: name}

	if !c.HasComparison() {
		return clause.Neq{Column: column, Value: nil}, nil
	}

	value, err := b.values(c)
	if err != nil {
		return nil, fmt.Errorf("fiqlgorm: value of %q: %w", c.Selector(), err)
	}

	if fn, ok := b.custom[c.Comparison()]; ok {
		return fn(column, value)
	}

	pattern, wildcard := likePattern(value)
	switch c.Comparison() {
	case "==":
		if wildcard {
			return clause.Like{Column: column, Value: pattern}, nil
		}
		return clause.Eq{Column: column, Value: value}, nil
	case "!=":
		if wildcard {
			return clause.Not(clause.Like{Column: column, Value: pattern}), nil
		}
		return clause.Neq{Column: column, Value: value}, nil
	case "=gt=":
		return clause.Gt{Column: column, Value: value}, nil
	case "=ge=":
		return clause.Gte{Column: column, Value: value}, nil
	case "=lt=":
		return clause.Lt{Column: column, Value: value}, nil
	case "=le=":
		return clause.Lte{Column: column, Value: value}, nil
	case "=like=":
		if s, ok := value.(string); ok {
			return clause.Like{Column: column, Value: strings.ReplaceAll(s, "*", "%")}, nil
		}
		return clause.Like{Column: column, Value: value}, nil
	default:
		return nil, fmt.Errorf("%w: %q on %q", ErrUnsupportedComparison, c.Comparison(), c.Selector())
	}
}

// likePattern reports whether value is a string using "*" as a wildcard and
// returns it as a LIKE pattern.
func likePattern(value any) (string, bool) {
	s, ok := value.(string)
	if !ok || !strings.Contains(s, "*") {
		return "", false
	}
	return strings.ReplaceAll(s, "*", "%"), true
}
