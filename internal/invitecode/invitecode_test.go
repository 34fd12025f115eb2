package invitecode_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/linkbox-backend/internal/invitecode"
)

func TestAlphabet(t *testing.T) {
	t.Parallel()

	assert.Len(t, invitecode.Alphabet, 32)
	for _, ambiguous := range "0O1I" {
		assert.NotContains(t, invitecode.Alphabet, string(ambiguous))
	}
}

func TestNewGenerator(t *testing.T) {
	t.Parallel()

	g, err := invitecode.NewGenerator(" lb ")
	require.NoError(t, err)
	assert.Equal(t, "LB", g.Prefix())

	for _, bad := range []string{"", "L-B", "TOOLONGPREFIX"} {
		_, err := invitecode.NewGenerator(bad)
		assert.ErrorIs(t, err, invitecode.ErrInvalidPrefix, bad)
	}
}

func TestGenerator_Generate(t *testing.T) {
	t.Parallel()

	g := invitecode.MustGenerator("LB")
	for range 500 {
		code, err := g.Generate()
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(code, "LB-"), code)
		require.Len(t, code, len("LB-")+invitecode.Length)
		for _, r := range code[3:] {
			require.Contains(t, invitecode.Alphabet, string(r))
		}
		require.True(t, g.Valid(code), code)
	}
}

func TestGenerator_Batch(t *testing.T) {
	t.Parallel()

	g := invitecode.MustGenerator("LB")
	codes, err := g.Batch(5)
	require.NoError(t, err)
	assert.Len(t, codes, 5)

	empty, err := g.Batch(0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGenerator_Valid(t *testing.T) {
	t.Parallel()

	g := invitecode.MustGenerator("LB")
	tests := []struct {
		name string
		code string
		want bool
	}{
		{"canonical", "LB-AB23CD", true},
		{"lowercase normalized", "lb-ab23cd", true},
		{"surrounding spaces", "  LB-XYZ789 ", true},
		{"too short", "LB-abc", false},
		{"too long", "LB-AB23CDE", false},
		{"ambiguous letter O", "LB-OOOOOO", false},
		{"ambiguous digit 0", "LB-AB23C0", false},
		{"ambiguous digit 1", "LB-AB23C1", false},
		{"ambiguous letter I", "LB-AB23CI", false},
		{"wrong prefix", "XX-AB23CD", false},
		{"missing dash", "LBAB23CD", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, g.Valid(tt.code))
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "LB-AB23CD", invitecode.Normalize(" lb-ab23cd\n"))
}

func TestWellFormed(t *testing.T) {
	t.Parallel()

	assert.True(t, invitecode.WellFormed("LB-AB23CD"))
	assert.True(t, invitecode.WellFormed("PROMO-XYZ789"))
	assert.False(t, invitecode.WellFormed("lb-ab23cd"))
	assert.False(t, invitecode.WellFormed("LB-OOOOOO"))
}
