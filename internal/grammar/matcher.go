package grammar

import (
	"iter"
	"net/url"
)

// Match is one step of a FIQL string split.
//
// Preamble is the raw text found before the constraint: operators and
// parentheses in a well formed string, but the matcher does not check that.
// Selector and Argument are percent/plus decoded. The final Match of a string
// may carry only a Preamble, in which case Selector is empty.
type Match struct {
	Preamble   string
	Selector   string
	Comparison string
	Argument   string

	// Offset is the byte offset of Preamble within the matched input.
	Offset int
}

// HasConstraint reports whether the match carries a constraint.
func (m Match) HasConstraint() bool {
	return m.Selector != ""
}

// ConstraintOffset returns the byte offset of the constraint within the input.
func (m Match) ConstraintOffset() int {
	return m.Offset + len(m.Preamble)
}

// Matcher walks a FIQL string from left to right. It is forward only; parsing
// the same string again requires a new Matcher.
type Matcher struct {
	rest   string
	offset int
}

// NewMatcher creates a matcher over input.
func NewMatcher(input string) *Matcher {
	return &Matcher{rest: input}
}

// Next returns the next match. The second return value is false once the input
// is exhausted.
func (m *Matcher) Next() (Match, bool) {
	if m.rest == "" {
		return Match{}, false
	}

	loc := constraintRegexp.FindStringSubmatchIndex(m.rest)
	if loc == nil {
		match := Match{Preamble: m.rest, Offset: m.offset}
		m.offset += len(m.rest)
		m.rest = ""
		return match, true
	}

	match := Match{
		Preamble: m.rest[:loc[0]],
		Selector: unescape(m.rest[loc[2]:loc[3]]),
		Offset:   m.offset,
	}
	if loc[4] >= 0 {
		match.Comparison = m.rest[loc[4]:loc[5]]
		match.Argument = unescape(m.rest[loc[6]:loc[7]])
	}

	m.offset += loc[1]
	m.rest = m.rest[loc[1]:]
	return match, true
}

// Seq returns the matches of input as a sequence.
func Seq(input string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		m := NewMatcher(input)
		for {
			match, ok := m.Next()
			if !ok || !yield(match) {
				return
			}
		}
	}
}

// All returns every match of input.
func All(input string) []Match {
	var matches []Match
	for match := range Seq(input) {
		matches = append(matches, match)
	}
	return matches
}

// unescape decodes the way query strings are decoded. The grammar only lets
// well formed escapes through, so a failure leaves the text untouched.
func unescape(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}
