package internal

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordTokenizeSentences(t *testing.T) {
	tok := NewTokenizer(nil)

	got, err := tok.wordTokenize("Money supply rises. Rates are stable.")
	require.NoError(t, err)
	assert.Equal(t, []string{"Money", "supply", "rises", ".", "Rates", "are", "stable", "."}, got)
}

func TestWordTokenizeTreebankRules(t *testing.T) {
	tok := NewTokenizer(nil)

	tests := []struct {
		name    string
		in      string
		want    []string
		without []string
	}{
		{"brackets", "output (crude) rose", []string{"output", "(", "crude", ")", "rose"}, nil},
		{"clitics", "the bank's view, don't worry", []string{"bank", "'s", "do", "n't"}, []string{"bank's", "don't"}},
		{"commas", "oil, gas and coal", []string{"oil", ",", "gas"}, []string{"oil,"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tok.wordTokenize(tt.in)
			require.NoError(t, err)
			assert.Subset(t, got, tt.want)
			for _, w := range tt.without {
				assert.NotContains(t, got, w)
			}
		})
	}
}

func TestTokenizeFiltersTokens(t *testing.T) {
	tok := NewTokenizer([]string{"The", "as"})

	got, err := tok.Tokenize("The Money supply rises, as rates fall in 1987.")
	require.NoError(t, err)
	assert.Equal(t, []string{"money", "supply", "rises", "rates", "fall", "in", "1987"}, got)
}

func TestTokenizeDropsClitics(t *testing.T) {
	tok := NewTokenizer(nil)

	got, err := tok.Tokenize("The bank's rates don't move.")
	require.NoError(t, err)
	assert.Equal(t, []string{"the", "bank", "rates", "do", "move"}, got)
}

func TestTokenizeInvariants(t *testing.T) {
	tok := NewTokenizer(testStopwords)

	for _, d := range testDocuments(8) {
		got, err := tok.Tokenize(d.Text)
		require.NoError(t, err)
		require.NotEmpty(t, got)

		for _, w := range got {
			assert.NotEmpty(t, w)
			assert.Equal(t, strings.ToLower(w), w)
			assert.False(t, tok.isStopword(w), "stopword %q kept", w)
			for _, r := range w {
				assert.True(t, unicode.IsLetter(r) || unicode.IsNumber(r), "non-alphanumeric %q", w)
			}
		}
	}
}

func TestTokenizeKeepsOrderAndDuplicates(t *testing.T) {
	tok := NewTokenizer(nil)

	got, err := tok.Tokenize("bank rates bank")
	require.NoError(t, err)
	assert.Equal(t, []string{"bank", "rates", "bank"}, got)
}

func TestTokenizeUnicodeLetters(t *testing.T) {
	tok := NewTokenizer(nil)

	got, err := tok.Tokenize("Café Zürich")
	require.NoError(t, err)
	assert.Equal(t, []string{"café", "zürich"}, got)
}

func TestTokenizeEmpty(t *testing.T) {
	tok := NewTokenizer(nil)

	got, err := tok.Tokenize("   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTokenizeMalformedText(t *testing.T) {
	tok := NewTokenizer(nil)

	_, err := tok.Tokenize("bad \xff\xfe bytes")
	assert.ErrorIs(t, err, errMalformedText)
}

func TestStopwordsCaseInsensitive(t *testing.T) {
	tok := NewTokenizer([]string{"The"})
	assert.True(t, tok.isStopword("the"))
	assert.True(t, tok.isStopword("THE"))
	assert.False(t, tok.isStopword("bank"))

	got, err := tok.Tokenize("THE bank")
	require.NoError(t, err)
	assert.Equal(t, []string{"bank"}, got)
}
