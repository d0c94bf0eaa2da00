package inline

import (
	"reflect"
	"testing"

	"github.com/andybalholm/cascadia"
)

// ---------------------------------------------------------------------------
// TestSplitSelectors - Top-level commas only
// ---------------------------------------------------------------------------

func TestSplitSelectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single", "p", []string{"p"}},
		{"list", "h1, h2 ,h3", []string{"h1", "h2", "h3"}},
		{"comma inside is", ":is(.a, .b) > p, em", []string{":is(.a, .b) > p", "em"}},
		{"comma inside not", "p:not(.x, .y)", []string{"p:not(.x, .y)"}},
		{"comma inside attribute", `[data-x="a,b"], p`, []string{`[data-x="a,b"]`, "p"}},
		{"escaped quote in string", `[title='x\', y'], p`, []string{`[title='x\', y']`, "p"}},
		{"escaped comma", `.a\,b, p`, []string{`.a\,b`, "p"}},
		{"empty parts dropped", "a,,b,", []string{"a", "b"}},
		{"empty", "  ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := splitSelectors(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitSelectors(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClosingParen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		open int
		want int
	}{
		{"(a)", 0, 2},
		{"x(a(b)c)d", 1, 7},
		{`(")")`, 0, 4},
		{"(a", 0, -1},
	}

	for _, tt := range tests {
		if got := closingParen(tt.in, tt.open); got != tt.want {
			t.Errorf("closingParen(%q, %d) = %d, want %d", tt.in, tt.open, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRewriteMatchesAny - :is() and :where()
// ---------------------------------------------------------------------------

func TestRewriteMatchesAny(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        string
		want      string
		wantWhere []string
	}{
		{"no pseudo", "main p", "main p", nil},
		{"is list", ":is(.a, .b) > p", ":not(:not(.a, .b)) > p", nil},
		{"where list", ":where(.a) p", ":not(:not(.a)) p", []string{".a"}},
		{"uppercase", ":IS(h1, h2)", ":not(:not(h1, h2))", nil},
		{"nested", ":is(.a :where(.b)) p", ":not(:not(.a :not(:not(.b)))) p", nil},
		{"where below top level not recorded", "p:not(:where(.x))", "p:not(:not(:not(.x)))", nil},
		{"inside string untouched", `[title=":is(x)"] p`, `[title=":is(x)"] p`, nil},
		{"unclosed left alone", ":is(.a", ":is(.a", nil},
		{"other functions untouched", "li:nth-child(2n+1)", "li:nth-child(2n+1)", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, where := rewriteMatchesAny(tt.in)
			if got != tt.want {
				t.Errorf("rewriteMatchesAny(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if !reflect.DeepEqual(where, tt.wantWhere) {
				t.Errorf("where = %q, want %q", where, tt.wantWhere)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestCompileSelector - Specificity of :is() and :where()
// ---------------------------------------------------------------------------

func TestCompileSelector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		selector string
		want     cascadia.Specificity
	}{
		{"p", cascadia.Specificity{0, 0, 1}},
		{":is(#id, .a) p", cascadia.Specificity{1, 0, 1}},
		{":where(#id, .a) p", cascadia.Specificity{0, 0, 1}},
		{"p:where(.x)", cascadia.Specificity{0, 0, 1}},
		{".note:before", cascadia.Specificity{0, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			t.Parallel()

			_, spec, err := compileSelector(tt.selector)
			if err != nil {
				t.Fatalf("compileSelector(%q) error: %v", tt.selector, err)
			}
			if spec != tt.want {
				t.Errorf("specificity = %v, want %v", spec, tt.want)
			}
		})
	}

	if _, _, err := compileSelector("p[["); err == nil {
		t.Error("invalid selector should fail to compile")
	}
}
