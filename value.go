package fiql

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Value is the simplified form of a parsed expression: either a
// ConstraintValue or a GroupValue. A nil Value stands for an empty expression.
type Value interface {
	fmt.Stringer
	isValue()
}

// ConstraintValue is the value form of a constraint. Comparison and Argument
// are nil when the constraint is a bare selector.
type ConstraintValue struct {
	Selector   string
	Comparison *string
	Argument   *string
}

func (ConstraintValue) isValue() {}

// String renders the value as (selector, comparison, argument).
func (v ConstraintValue) String() string {
	return fmt.Sprintf("(%s, %s, %s)", v.Selector, optionalString(v.Comparison), optionalString(v.Argument))
}

// MarshalJSON renders the value as a three element array, using null for
// absent parts.
func (v ConstraintValue) MarshalJSON() ([]byte, error) {
	return json.Marshal([]*string{&v.Selector, v.Comparison, v.Argument})
}

// GroupValue is the value form of an expression with more than one element.
// Operator is "AND" or "OR".
type GroupValue struct {
	Operator string
	Items    []Value
}

func (GroupValue) isValue() {}

// String renders the value as [OPERATOR, item, ...].
func (v GroupValue) String() string {
	parts := make([]string, 0, len(v.Items)+1)
	parts = append(parts, v.Operator)
	for _, item := range v.Items {
		parts = append(parts, item.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// MarshalJSON renders the value as an array whose first element is the
// operator name.
func (v GroupValue) MarshalJSON() ([]byte, error) {
	items := make([]interface{}, 0, len(v.Items)+1)
	items = append(items, v.Operator)
	for _, item := range v.Items {
		items = append(items, item)
	}
	return json.Marshal(items)
}

func optionalString(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func stringPtr(s string) *string {
	return &s
}
