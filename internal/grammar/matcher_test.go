package grammar

import (
	"reflect"
	"testing"
)

func TestAll(t *testing.T) {
	got := All("a==23;(b=gt=4,(c=ge=5;c=lt=15))")
	want := []Match{
		{Preamble: "", Selector: "a", Comparison: "==", Argument: "23", Offset: 0},
		{Preamble: ";(", Selector: "b", Comparison: "=gt=", Argument: "4", Offset: 5},
		{Preamble: ",(", Selector: "c", Comparison: "=ge=", Argument: "5", Offset: 13},
		{Preamble: ";", Selector: "c", Comparison: "=lt=", Argument: "15", Offset: 21},
		{Preamble: "))", Offset: 29},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("All() =\n%#v\nwant\n%#v", got, want)
	}
}

func TestMatcher_Decoding(t *testing.T) {
	matches := All("foo%24==bar%23+more")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	m := matches[0]
	if m.Selector != "foo$" {
		t.Errorf("selector = %q, want %q", m.Selector, "foo$")
	}
	if m.Comparison != "==" {
		t.Errorf("comparison = %q, want %q", m.Comparison, "==")
	}
	if m.Argument != "bar# more" {
		t.Errorf("argument = %q, want %q", m.Argument, "bar# more")
	}
}

func TestMatcher_Timestamp(t *testing.T) {
	matches := All("dob=gt=2015-08-27T10:30:00Z")
	if len(matches) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matches))
	}
	if matches[0].Argument != "2015-08-27T10:30:00Z" {
		t.Errorf("argument = %q", matches[0].Argument)
	}
}

func TestMatcher_TrailingText(t *testing.T) {
	tests := []struct {
		input string
		want  []Match
	}{
		{
			input: "foo=bar",
			want: []Match{
				{Selector: "foo"},
				{Preamble: "=", Selector: "bar", Offset: 3},
			},
		},
		{
			input: "foo==",
			want: []Match{
				{Selector: "foo"},
				{Preamble: "==", Offset: 3},
			},
		},
		{
			input: ";;",
			want:  []Match{{Preamble: ";;"}},
		},
		{
			input: "foo",
			want:  []Match{{Selector: "foo"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := All(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("All(%q) =\n%#v\nwant\n%#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMatcher_Exhaustion(t *testing.T) {
	m := NewMatcher("a;b")

	var count int
	for {
		match, ok := m.Next()
		if !ok {
			break
		}
		if !match.HasConstraint() {
			t.Errorf("unexpected preamble-only match %#v", match)
		}
		count++
	}
	if count != 2 {
		t.Errorf("expected 2 matches, got %d", count)
	}
	if _, ok := m.Next(); ok {
		t.Error("exhausted matcher should stay exhausted")
	}
}

func TestMatcher_Empty(t *testing.T) {
	if got := All(""); len(got) != 0 {
		t.Errorf("expected no matches for empty input, got %#v", got)
	}
}

func TestSeq_StopEarly(t *testing.T) {
	var seen []string
	for m := range Seq("a;b;c") {
		seen = append(seen, m.Selector)
		if len(seen) == 2 {
			break
		}
	}
	if !reflect.DeepEqual(seen, []string{"a", "b"}) {
		t.Errorf("seen = %v", seen)
	}
}

func TestMatch_ConstraintOffset(t *testing.T) {
	matches := All("a;(b==1)")
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	if got := matches[1].ConstraintOffset(); got != 3 {
		t.Errorf("ConstraintOffset() = %d, want 3", got)
	}
}
