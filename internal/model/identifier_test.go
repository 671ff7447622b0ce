package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ipx486", "IPX-486"},
		{"IPX-486", "IPX-486"},
		{"ipx-486", "IPX-486"},
		{"abp1", "ABP-001"},
		{"abp-12", "ABP-012"},
		{"start422", "START-422"},
		{"start-00422", "START-00422"},
		{"  ipx486  ", "IPX-486"},
		{"ＩＰＸ-４８６", "IPX-486"}, // full-width input
		{"not a code", "NOT A CODE"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeID(tt.in), "NormalizeID(%q)", tt.in)
	}
}

func TestNormalizeID_Idempotent(t *testing.T) {
	for _, in := range []string{"ipx486", "IPX-486", "start422", "junk"} {
		once := NormalizeID(in)
		assert.Equal(t, once, NormalizeID(once), "normalizing %q twice", in)
	}
}

func TestContentIDVariants(t *testing.T) {
	got := ContentIDVariants("IPX-486")
	want := []string{"ipx00486", "1ipx486", "ipx486", "1ipx00486", "h_ipx00486"}
	assert.Equal(t, want, got)
}

func TestContentIDVariants_DigitPrefixForm(t *testing.T) {
	got := ContentIDVariants("start422")
	require.Len(t, got, 5)
	assert.Equal(t, "start00422", got[0])
	assert.Contains(t, got, "1start422")
}

func TestContentIDVariants_Unparseable(t *testing.T) {
	got := ContentIDVariants("12345")
	assert.Equal(t, []string{"12345"}, got)
}

func TestContentIDToID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ipx00486", "IPX-486"},
		{"ipx486", "IPX-486"},
		{"abp00001", "ABP-001"},
		{"start00422", "START-422"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ContentIDToID(tt.in), "ContentIDToID(%q)", tt.in)
	}
}

func TestContentIDRoundTrip(t *testing.T) {
	for _, id := range []string{"IPX-486", "ABP-001", "START-422"} {
		variants := ContentIDVariants(id)
		require.NotEmpty(t, variants)
		assert.Equal(t, id, ContentIDToID(variants[0]))
	}
}
