package fiql

import (
	"net/url"

	"github.com/nlstn/go-fiql/internal/grammar"
)

// Element is anything that can be added to an Expression: a *Constraint, an
// *Expression or an Operator.
type Element interface {
	isElement()
}

// Operand is a child of an Expression: a *Constraint or an *Expression.
//
// The parent of an operand is always an Expression, even though a Constraint
// can itself start a fluent expression through And and Or.
type Operand interface {
	Element

	// Parent returns the Expression that contains this operand.
	Parent() (*Expression, error)

	// SetParent records the Expression that contains this operand.
	SetParent(parent *Expression) error

	// String returns the canonical FIQL form.
	String() string

	// ToValue returns the simplified value form.
	ToValue() Value

	clone(copies map[*Expression]*Expression) Operand
}

var comparisonMap = map[string]string{
	"==":   "==",
	"!=":   "!=",
	"=gt=": ">",
	"=ge=": ">=",
	"=lt=": "<",
	"=le=": "<=",
}

// CanonicalComparison maps the common FIQL comparisons to their symbolic form
// ("=gt=" becomes ">"). Other comparisons are returned unchanged.
func CanonicalComparison(comparison string) string {
	if canonical, ok := comparisonMap[comparison]; ok {
		return canonical
	}
	return comparison
}

// Constraint is the smallest logical unit of a FIQL expression: a selector,
// optionally compared against an argument. A constraint is immutable apart from
// its parent link.
type Constraint struct {
	selector   string
	comparison string
	argument   string
	parent     *Expression
}

var _ Operand = (*Constraint)(nil)

// NewConstraint creates a constraint. selector and argument are expected to be
// decoded already. An empty comparison or argument means the part is absent.
func NewConstraint(selector, comparison, argument string) (*Constraint, error) {
	if selector == "" {
		return nil, newObjectError("constraint selector must not be empty")
	}
	if comparison != "" && !grammar.IsComparison(comparison) {
		return nil, newObjectError("%q is not a valid FIQL comparison", comparison)
	}
	return &Constraint{
		selector:   selector,
		comparison: comparison,
		argument:   argument,
	}, nil
}

// MustConstraint is like NewConstraint but panics on error. It is intended for
// constraints built from constants.
func MustConstraint(selector, comparison, argument string) *Constraint {
	c, err := NewConstraint(selector, comparison, argument)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Constraint) isElement() {}

// Selector returns the decoded selector.
func (c *Constraint) Selector() string {
	return c.selector
}

// Comparison returns the raw FIQL comparison, e.g. "=gt=", or "" if absent.
func (c *Constraint) Comparison() string {
	return c.comparison
}

// CanonicalComparison returns the symbolic comparison, e.g. ">", falling back
// to the raw comparison for uncommon forms.
func (c *Constraint) CanonicalComparison() string {
	return CanonicalComparison(c.comparison)
}

// HasComparison reports whether the constraint compares against an argument.
func (c *Constraint) HasComparison() bool {
	return c.comparison != ""
}

// Argument returns the decoded argument, or "" if absent.
func (c *Constraint) Argument() string {
	return c.argument
}

// Parent returns the Expression containing the constraint.
func (c *Constraint) Parent() (*Expression, error) {
	if c.parent == nil {
		return nil, newObjectError("constraint %q has no parent expression", c.selector)
	}
	return c.parent, nil
}

// SetParent records the Expression containing the constraint. A constraint
// belongs to at most one parent.
func (c *Constraint) SetParent(parent *Expression) error {
	if parent == nil {
		return newObjectError("parent of constraint %q must be an expression, not nil", c.selector)
	}
	if c.parent != nil && c.parent != parent {
		return newObjectError("constraint %q already belongs to another expression", c.selector)
	}
	c.parent = parent
	return nil
}

// And returns a new Expression joining this constraint and elements with the
// AND operator.
func (c *Constraint) And(elements ...Element) (*Expression, error) {
	return NewExpression().And(append([]Element{c}, elements...)...)
}

// Or returns a new Expression joining this constraint and elements with the
// OR operator.
func (c *Constraint) Or(elements ...Element) (*Expression, error) {
	return NewExpression().Or(append([]Element{c}, elements...)...)
}

// ToValue returns the constraint as (selector, comparison, argument). The
// comparison is canonical where possible; absent parts are nil.
func (c *Constraint) ToValue() Value {
	v := ConstraintValue{Selector: c.selector}
	if c.comparison != "" {
		v.Comparison = stringPtr(c.CanonicalComparison())
	}
	if c.argument != "" {
		v.Argument = stringPtr(c.argument)
	}
	return v
}

// String returns the constraint in FIQL form with selector and argument
// escaped for use in a query string. A constraint without argument renders as
// its bare selector.
func (c *Constraint) String() string {
	if c.argument != "" {
		return url.QueryEscape(c.selector) + c.comparison + url.QueryEscape(c.argument)
	}
	return c.selector
}

func (c *Constraint) clone(map[*Expression]*Expression) Operand {
	return &Constraint{
		selector:   c.selector,
		comparison: c.comparison,
		argument:   c.argument,
	}
}
