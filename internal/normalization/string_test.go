package normalization

import "testing"

func TestParseInputString_LowercasesAndTrims(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Ada@Example.COM ", "ada@example.com"},
		{"", ""},
		{"\tPlain\n", "plain"},
	}
	for _, c := range cases {
		if got := ParseInputString(c.in); got != c.want {
			t.Fatalf("ParseInputString(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTrimInputString_CollapsesWhitespaceKeepsCasing(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Intro   to  Algebra ", "Intro to Algebra"},
		{"one\ntwo\t three", "one two three"},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := TrimInputString(c.in); got != c.want {
			t.Fatalf("TrimInputString(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
