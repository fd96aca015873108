package fiql

import (
	"errors"

	"github.com/nlstn/go-fiql/internal/grammar"
)

// limits bound the work done for a single input. Zero means unlimited.
type limits struct {
	maxDepth  int
	maxLength int
}

type lastKind int

const (
	lastNone lastKind = iota
	lastOperand
	lastOperator
)

// parseState tracks the position of the driver in the tree being built.
type parseState struct {
	input  string
	limits limits

	cursor *Expression
	depth  int
	last   lastKind
}

// parseExpression turns a FIQL string into an expression tree. It returns the
// top-most expression or a format error; a partial tree is never returned.
func parseExpression(input string, lim limits) (*Expression, error) {
	if lim.maxLength > 0 && len(input) > lim.maxLength {
		return nil, newFormatError(input, lim.maxLength, "input of %d bytes exceeds the maximum of %d", len(input), lim.maxLength)
	}

	s := &parseState{
		input:  input,
		limits: lim,
		cursor: NewExpression(),
	}

	m := grammar.NewMatcher(input)
	for {
		match, ok := m.Next()
		if !ok {
			break
		}
		if err := s.preamble(match); err != nil {
			return nil, err
		}
		if match.HasConstraint() {
			if err := s.constraint(match); err != nil {
				return nil, err
			}
		}
	}

	return s.finish()
}

func (s *parseState) preamble(match grammar.Match) error {
	for i := 0; i < len(match.Preamble); i++ {
		offset := match.Offset + i
		switch ch := match.Preamble[i]; ch {
		case '(':
			if s.last == lastOperand {
				return newFormatError(s.input, offset, "%q can not follow a constraint or group without an operator", "(")
			}
			if s.limits.maxDepth > 0 && s.depth >= s.limits.maxDepth {
				return newFormatError(s.input, offset, "nesting exceeds the maximum depth of %d", s.limits.maxDepth)
			}
			s.cursor = s.cursor.CreateNestedExpression()
			s.depth++
			s.last = lastNone

		case ')':
			if s.depth == 0 {
				return newFormatError(s.input, offset, "unbalanced %q", ")")
			}
			switch s.last {
			case lastNone:
				return newFormatError(s.input, offset, "empty group")
			case lastOperator:
				return newFormatError(s.input, offset, "operator before %q has no right operand", ")")
			}
			parent, err := s.cursor.group().Parent()
			if err != nil {
				return newFormatError(s.input, offset, "group has no enclosing expression: %s", causeOf(err))
			}
			s.cursor = parent.group()
			s.depth--
			s.last = lastOperand

		default:
			symbol := string(ch)
			if s.last == lastOperator {
				return newFormatError(s.input, offset, "%q can not follow another operator", symbol)
			}
			if !s.cursor.HasConstraint() {
				return newFormatError(s.input, offset, "%q has no preceding constraint", symbol)
			}
			op, err := NewOperator(symbol)
			if err != nil {
				return newFormatError(s.input, offset, "unexpected character: %s", causeOf(err))
			}
			expr, err := s.cursor.AddOperator(op)
			if err != nil {
				return newFormatError(s.input, offset, "misplaced operator: %s", causeOf(err))
			}
			s.cursor = expr
			s.last = lastOperator
		}
	}
	return nil
}

func (s *parseState) constraint(match grammar.Match) error {
	offset := match.ConstraintOffset()
	if s.last == lastOperand {
		return newFormatError(s.input, offset, "constraint %q must be preceded by an operator", match.Selector)
	}
	c, err := NewConstraint(match.Selector, match.Comparison, match.Argument)
	if err != nil {
		return newFormatError(s.input, offset, "invalid constraint: %s", causeOf(err))
	}
	expr, err := s.cursor.AddElement(c)
	if err != nil {
		return newFormatError(s.input, offset, "invalid constraint: %s", causeOf(err))
	}
	s.cursor = expr
	s.last = lastOperand
	return nil
}

func (s *parseState) finish() (*Expression, error) {
	end := len(s.input)
	if s.last == lastOperator {
		return nil, newFormatError(s.input, end, "trailing operator has no right operand")
	}
	if s.depth != 0 {
		return nil, newFormatError(s.input, end, "%d unclosed %q", s.depth, "(")
	}
	root := s.cursor.root()
	if !root.HasConstraint() {
		return nil, newFormatError(s.input, end, "no constraint found")
	}
	return root, nil
}

// causeOf returns the message of a construction error so it can be reported
// as part of a format error without carrying the object error kind.
func causeOf(err error) string {
	var fiqlErr *Error
	if errors.As(err, &fiqlErr) {
		return fiqlErr.Message
	}
	return err.Error()
}
