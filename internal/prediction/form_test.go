package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMusique(t *testing.T) {
	tests := []struct {
		name     string
		musique  string
		year     int
		expected map[int][]string
	}{
		{
			name:     "single year no marker",
			musique:  "1p2p3p",
			year:     2025,
			expected: map[int][]string{2025: {"1p", "2p", "3p"}},
		},
		{
			name:    "year marker splits buckets",
			musique: "1p2p(24)3p4p",
			year:    2025,
			expected: map[int][]string{
				2025: {"1p", "2p"},
				2024: {"3p", "4p"},
			},
		},
		{
			name:    "multiple markers",
			musique: "5a(24)1a2a(23)9a",
			year:    2025,
			expected: map[int][]string{
				2025: {"5a"},
				2024: {"1a", "2a"},
				2023: {"9a"},
			},
		},
		{
			name:     "non-finish markers kept",
			musique:  "Da1pTa2p",
			year:     2025,
			expected: map[int][]string{2025: {"Da", "1p", "Ta", "2p"}},
		},
		{
			name:     "empty string",
			musique:  "",
			year:     2025,
			expected: map[int][]string{},
		},
		{
			name:     "whitespace only",
			musique:  "   ",
			year:     2025,
			expected: map[int][]string{},
		},
		{
			name:     "two digit ranks",
			musique:  "10p12a",
			year:     2025,
			expected: map[int][]string{2025: {"10p", "12a"}},
		},
		{
			name:     "garbage fragments skipped",
			musique:  "1p??2p--",
			year:     2025,
			expected: map[int][]string{2025: {"1p", "2p"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeMusique(tt.musique, tt.year)
			require.Equal(t, len(tt.expected), len(got))
			for year, tokens := range tt.expected {
				assert.Equal(t, tokens, got[year], "year %d", year)
			}
		})
	}
}

func TestTokenRank(t *testing.T) {
	assert.Equal(t, 1, tokenRank("1p"))
	assert.Equal(t, 10, tokenRank("10a"))
	assert.Equal(t, 0, tokenRank("Da"))
	assert.Equal(t, 0, tokenRank("Tab"))
}

func TestIsNonFinish(t *testing.T) {
	assert.True(t, isNonFinish("Da"))
	assert.True(t, isNonFinish("Ta"))
	assert.True(t, isNonFinish("Tab"))
	assert.False(t, isNonFinish("1p"))
	assert.False(t, isNonFinish("0p"))
}
