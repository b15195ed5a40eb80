package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	n := New()
	require.NotNil(t, n)
	assert.Equal(t, "a b", n.Normalise(" a\t b "))
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "only whitespace", in: " \t\n\r\n ", want: ""},
		{name: "single word", in: "Tesla", want: "Tesla"},
		{name: "mixed runs", in: "Tesla \t\n  reported\n\n\nearnings", want: "Tesla reported earnings"},
		{name: "leading and trailing", in: "\n\n  shares rose  \t", want: "shares rose"},
		{name: "non-breaking space", in: "Q3  revenue", want: "Q3 revenue"},
		{name: "paragraph join", in: "First paragraph.\nSecond paragraph.", want: "First paragraph. Second paragraph."},
		{name: "unicode text kept", in: " Zürich  café ", want: "Zürich café"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalise(tt.in))
		})
	}
}

func TestNormalise_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"a\n\n\nb",
		"\t lines \n with \r\n breaks   and   spaces ",
		strings.Repeat("word \n", 500),
	}

	for _, in := range inputs {
		once := Normalise(in)
		assert.Equal(t, once, Normalise(once), "normalise should be idempotent for %q", in)
	}
}
