package grammar

import (
	"regexp"
	"testing"
)

func anchored(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`^(?:` + pattern + `)$`)
}

func TestPatterns(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		valid   []string
		invalid []string
	}{
		{
			name:    "pct encoding",
			pattern: PctEncodingPattern,
			valid:   []string{"%5E", "%AF", "%02", "%C4", "%ad", "%2b", "%f1"},
			invalid: []string{"###", "%A", "%G1", "%AAA"},
		},
		{
			name:    "unreserved",
			pattern: UnreservedPattern + `+`,
			valid:   []string{"POIUYTREWQASDFGHJKLMNBVCXZ", "qwertyuioplkjhgfdsazxcvbnm", "1234567890._-~"},
			invalid: []string{":", "/", "?", "#", "[", "]", "@", "!", "$", "&", "'", "(", ")", "*", ",", ";", "="},
		},
		{
			name:    "fiql delimiter",
			pattern: FiqlDelimPattern + `+`,
			valid:   []string{"!$'*+"},
			invalid: []string{"="},
		},
		{
			name:    "comparison",
			pattern: ComparisonPattern,
			valid:   []string{"=gt=", "=ge=", "=lt=", "=le=", "!=", "$=", "'=", "*=", "+=", "=="},
			invalid: []string{"=", "=gt", "=01="},
		},
		{
			name:    "selector",
			pattern: SelectorPattern,
			valid:   []string{"ABC%3Edef_34%04"},
			invalid: []string{"#", "!", "=", ""},
		},
		{
			name:    "argument",
			pattern: ArgumentPattern,
			valid:   []string{"ABC%3Edef_34~.-%04!$'*+:=", "2015-08-27T10:30:00Z"},
			invalid: []string{"?", "&", ",", ";", ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := anchored(tt.pattern)
			for _, s := range tt.valid {
				if !re.MatchString(s) {
					t.Errorf("expected %q to match", s)
				}
			}
			for _, s := range tt.invalid {
				if re.MatchString(s) {
					t.Errorf("expected %q not to match", s)
				}
			}
		})
	}
}

func TestIsComparison(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"==", true},
		{"!=", true},
		{"=gt=", true},
		{"=custom=", true},
		{"=gt", false},
		{"gt=", false},
		{"==bar", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsComparison(tt.input); got != tt.want {
			t.Errorf("IsComparison(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestConstraintPattern(t *testing.T) {
	tests := []struct {
		input      string
		selector   string
		comparison string
		argument   string
		rest       string
	}{
		{"foo==bar", "foo", "==", "bar", ""},
		{"foo=gt=bar", "foo", "=gt=", "bar", ""},
		{"foo=le=bar", "foo", "=le=", "bar", ""},
		{"foo!=bar", "foo", "!=", "bar", ""},
		{"foo=bar", "foo", "", "", "=bar"},
		{"foo==", "foo", "", "", "=="},
		{"foo=", "foo", "", "", "="},
		{"foo", "foo", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			loc := constraintRegexp.FindStringSubmatchIndex(tt.input)
			if loc == nil {
				t.Fatalf("expected a match for %q", tt.input)
			}
			if loc[0] != 0 {
				t.Errorf("match starts at %d, want 0", loc[0])
			}
			if got := tt.input[loc[2]:loc[3]]; got != tt.selector {
				t.Errorf("selector = %q, want %q", got, tt.selector)
			}
			var comparison, argument string
			if loc[4] >= 0 {
				comparison = tt.input[loc[4]:loc[5]]
				argument = tt.input[loc[6]:loc[7]]
			}
			if comparison != tt.comparison {
				t.Errorf("comparison = %q, want %q", comparison, tt.comparison)
			}
			if argument != tt.argument {
				t.Errorf("argument = %q, want %q", argument, tt.argument)
			}
			if got := tt.input[loc[1]:]; got != tt.rest {
				t.Errorf("rest = %q, want %q", got, tt.rest)
			}
		})
	}
}
