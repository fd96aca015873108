package fiql

import (
	"strings"
)

// Expression is a FIQL expression: an ordered list of operands related by a
// single operator. Mixed precedence is expressed by nesting expressions, so
// the operator of an expression applies to all of its direct operands.
//
// An Expression is built incrementally. Operands and operators are added in
// the order they appear in the FIQL text and the tree is restructured as
// operators of different precedence arrive. Because restructuring can create
// a new top-level expression, callers must continue with the *Expression
// returned by AddElement, AddOperator, And and Or.
type Expression struct {
	elements []Operand
	operator Operator
	parent   *Expression

	// working is the fragment new operands are appended to: the expression
	// itself or a descendant created to honour operator precedence.
	working *Expression

	// fragment marks expressions created for precedence rather than for an
	// explicit parenthesised group.
	fragment bool
}

var _ Operand = (*Expression)(nil)

// NewExpression creates an empty expression.
func NewExpression() *Expression {
	e := &Expression{}
	e.working = e
	return e
}

func (e *Expression) isElement() {}

func (e *Expression) work() *Expression {
	if e.working == nil {
		e.working = e
	}
	return e.working
}

// Elements returns the direct operands of the expression.
func (e *Expression) Elements() []Operand {
	out := make([]Operand, len(e.elements))
	copy(out, e.elements)
	return out
}

// Len returns the number of direct operands.
func (e *Expression) Len() int {
	return len(e.elements)
}

// Operator returns the operator relating the operands. The second return
// value is false when no operator has been set.
func (e *Expression) Operator() (Operator, bool) {
	return e.operator, e.operator.IsValid()
}

// HasConstraint reports whether the expression holds at least one operand.
func (e *Expression) HasConstraint() bool {
	return len(e.elements) > 0
}

// Parent returns the Expression containing e.
func (e *Expression) Parent() (*Expression, error) {
	if e.parent == nil {
		return nil, newObjectError("expression has no parent expression")
	}
	return e.parent, nil
}

// SetParent records the Expression containing e. An expression belongs to at
// most one parent, and may not be placed below itself.
func (e *Expression) SetParent(parent *Expression) error {
	if parent == nil {
		return newObjectError("parent of expression must be an expression, not nil")
	}
	if e.parent != nil && e.parent != parent {
		return newObjectError("expression already belongs to another expression")
	}
	for p := parent; p != nil; p = p.parent {
		if p == e {
			return newObjectError("expression can not be nested inside itself")
		}
	}
	e.parent = parent
	return nil
}

// AddElement adds a Constraint, an Expression or an Operator. Operands are
// appended to the current working fragment; operators are handed to
// AddOperator.
func (e *Expression) AddElement(element Element) (*Expression, error) {
	switch el := element.(type) {
	case Operator:
		return e.AddOperator(el)
	case *Constraint:
		if el == nil {
			return nil, newObjectError("nil constraint is not a valid element")
		}
		if err := el.SetParent(e.work()); err != nil {
			return nil, err
		}
		e.working.elements = append(e.working.elements, el)
		return e, nil
	case *Expression:
		if el == nil {
			return nil, newObjectError("nil expression is not a valid element")
		}
		if err := el.SetParent(e.work()); err != nil {
			return nil, err
		}
		e.working.elements = append(e.working.elements, el)
		return e, nil
	default:
		return nil, newObjectError("%T is not a valid element type", element)
	}
}

// AddOperator sets or applies an operator to the working fragment.
//
//   - Without an operator yet, the fragment simply takes it.
//   - A tighter operator pulls the last operand of the fragment into a new
//     nested fragment, which becomes the working fragment.
//   - A looser operator belongs higher up: the working fragment moves to its
//     parent. At the top of an explicit group the group's operands are pushed
//     down one level; at the root a new top-level expression is created and
//     returned.
//   - An equal operator changes nothing.
func (e *Expression) AddOperator(op Operator) (*Expression, error) {
	if !op.IsValid() {
		return nil, newObjectError("%q is not a valid FIQL operator", op.symbol)
	}

	w := e.work()
	for {
		switch {
		case !w.operator.IsValid():
			w.operator = op
			return e, nil

		case op.Greater(w.operator):
			if len(w.elements) == 0 {
				return nil, newObjectError("operator %q has no preceding operand", op.symbol)
			}
			last := w.elements[len(w.elements)-1]
			w.elements = w.elements[:len(w.elements)-1]

			nested := &Expression{operator: op, fragment: true}
			nested.working = nested
			w.adopt(nested)
			nested.adopt(last)
			e.working = nested
			return e, nil

		case op.Less(w.operator):
			if w != e {
				w = w.parent
				e.working = w
				continue
			}
			if e.parent == nil {
				top := NewExpression()
				top.adopt(e)
				top.operator = op
				return top, nil
			}
			if e.fragment {
				return e.parent.AddOperator(op)
			}
			e.pushDown()
			e.operator = op
			return e, nil

		default:
			return e, nil
		}
	}
}

// pushDown moves the operands of e into a single nested fragment so that e
// can take a looser operator without losing its place in the tree.
func (e *Expression) pushDown() {
	nested := &Expression{operator: e.operator, fragment: true}
	nested.working = nested
	for _, child := range e.elements {
		nested.adopt(child)
	}
	e.elements = nil
	e.adopt(nested)
	e.working = e
}

// adopt appends child to e, moving it from wherever it was.
func (e *Expression) adopt(child Operand) {
	switch c := child.(type) {
	case *Constraint:
		c.parent = e
	case *Expression:
		c.parent = e
	}
	e.elements = append(e.elements, child)
}

// CreateNestedExpression appends a new empty expression to the working
// fragment and returns it. It is used for explicit parenthesised groups.
func (e *Expression) CreateNestedExpression() *Expression {
	sub := NewExpression()
	e.work().adopt(sub)
	return sub
}

// And applies the AND operator and then adds elements.
//
// Example usage:
//
//	expr, err := fiql.NewExpression().And(
//	    fiql.MustConstraint("name", "==", "bar"),
//	    fiql.MustConstraint("age", "=gt=", "21"),
//	)
func (e *Expression) And(elements ...Element) (*Expression, error) {
	return e.apply(And, elements)
}

// Or applies the OR operator and then adds elements.
func (e *Expression) Or(elements ...Element) (*Expression, error) {
	return e.apply(Or, elements)
}

func (e *Expression) apply(op Operator, elements []Element) (*Expression, error) {
	expr, err := e.AddOperator(op)
	if err != nil {
		return nil, err
	}
	for _, element := range elements {
		expr, err = expr.AddElement(element)
		if err != nil {
			return nil, err
		}
	}
	return expr, nil
}

// ToValue returns the simplified value form. An empty expression yields nil
// and a single operand yields that operand's value, so a bare constraint is
// never wrapped in a group.
func (e *Expression) ToValue() Value {
	switch len(e.elements) {
	case 0:
		return nil
	case 1:
		return e.elements[0].ToValue()
	}

	items := make([]Value, 0, len(e.elements))
	for _, child := range e.elements {
		items = append(items, child.ToValue())
	}
	return GroupValue{Operator: e.operator.orDefault().Name(), Items: items}
}

// String returns the canonical FIQL form. Parentheses are only emitted where
// leaving them out would change the meaning.
func (e *Expression) String() string {
	op := e.operator.orDefault()

	parts := make([]string, 0, len(e.elements))
	for _, child := range e.elements {
		parts = append(parts, child.String())
	}
	s := strings.Join(parts, op.symbol)

	if e.parent != nil && e.parent.operator.orDefault().Greater(op) {
		return "(" + s + ")"
	}
	return s
}

// Walk visits the operands below e depth first. Returning false from fn for
// an expression skips its operands.
func (e *Expression) Walk(fn func(Operand) bool) {
	for _, child := range e.elements {
		if !fn(child) {
			continue
		}
		if sub, ok := child.(*Expression); ok {
			sub.Walk(fn)
		}
	}
}

// Constraints returns every constraint below e in textual order.
func (e *Expression) Constraints() []*Constraint {
	var out []*Constraint
	e.Walk(func(op Operand) bool {
		if c, ok := op.(*Constraint); ok {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Depth returns the number of expression levels from e down to its deepest
// constraint. A flat expression has depth 1.
func (e *Expression) Depth() int {
	depth := 0
	for _, child := range e.elements {
		if sub, ok := child.(*Expression); ok {
			if d := sub.Depth(); d > depth {
				depth = d
			}
		}
	}
	return depth + 1
}

// Clone returns a deep copy of e without a parent. The copy keeps the working
// fragments of e, so adding to it restructures exactly like adding to e.
func (e *Expression) Clone() *Expression {
	copies := make(map[*Expression]*Expression)
	c, _ := e.clone(copies).(*Expression)
	for orig, cp := range copies {
		if w, ok := copies[orig.work()]; ok {
			cp.working = w
		}
	}
	return c
}

func (e *Expression) clone(copies map[*Expression]*Expression) Operand {
	c := &Expression{operator: e.operator, fragment: e.fragment}
	c.working = c
	copies[e] = c
	for _, child := range e.elements {
		c.adopt(child.clone(copies))
	}
	return c
}

// root returns the top-most expression above e.
func (e *Expression) root() *Expression {
	r := e
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// group returns the nearest expression at or above e that is not a
// precedence fragment.
func (e *Expression) group() *Expression {
	g := e
	for g.fragment && g.parent != nil {
		g = g.parent
	}
	return g
}
