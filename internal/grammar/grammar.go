// Package grammar holds the FIQL syntax rules and the matcher that splits a FIQL
// string into constraints and the operator/parenthesis text between them.
//
// The rules follow draft-nottingham-atompub-fiql-00 section 3.2 with two
// relaxations: a comparison may contain no letters at all, which makes "==" valid,
// and an argument may contain ":" so RFC 3339 timestamps need no escaping.
package grammar

import "regexp"

// Building blocks of the FIQL grammar. Every group is non-capturing so the
// patterns can be embedded in each other freely.
const (
	// PctEncodingPattern matches one percent-encoded octet (RFC 3986 section 2.1).
	PctEncodingPattern = `%[A-Fa-f0-9]{2}`

	// UnreservedPattern matches one unreserved character (RFC 3986 section 2.3).
	UnreservedPattern = `[A-Za-z0-9\-._~]`

	// FiqlDelimPattern matches one FIQL delimiter.
	FiqlDelimPattern = `[!$'*+]`

	// ComparisonPattern matches a comparison such as "==", "!=" or "=gt=".
	ComparisonPattern = `(?:=[A-Za-z]*|` + FiqlDelimPattern + `)=`

	// SelectorPattern matches the part of an entry a constraint applies to.
	SelectorPattern = `(?:` + UnreservedPattern + `|` + PctEncodingPattern + `)+`

	// ArgCharPattern matches one character allowed in an argument.
	ArgCharPattern = `(?:` + UnreservedPattern + `|` + PctEncodingPattern + `|` +
		FiqlDelimPattern + `|=|:)`

	// ArgumentPattern matches the value a comparison is made against.
	ArgumentPattern = ArgCharPattern + `+`

	// ConstraintPattern matches a selector optionally followed by a comparison and
	// an argument. Submatch 1 is the selector, 2 the comparison, 3 the argument.
	ConstraintPattern = `(` + SelectorPattern + `)(?:(` + ComparisonPattern + `)(` + ArgumentPattern + `))?`
)

var (
	constraintRegexp = regexp.MustCompile(ConstraintPattern)
	comparisonRegexp = regexp.MustCompile(`^` + ComparisonPattern + `$`)
)

// IsComparison reports whether s is, in its entirety, a valid FIQL comparison.
func IsComparison(s string) bool {
	return comparisonRegexp.MatchString(s)
}
