package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTermsRanksRepeatedNouns(t *testing.T) {
	ke := NewKeywordExtractor()

	terms, err := ke.ExtractTerms([]string{
		"Explain photosynthesis in plants.",
		"Describe the stages of photosynthesis.",
		"How does photosynthesis produce oxygen?",
	}, 5)
	require.NoError(t, err)
	require.NotEmpty(t, terms)

	assert.Contains(t, terms, "photosynthesis")
}

func TestExtractTermsSkipsStopWordsAndShortWords(t *testing.T) {
	ke := NewKeywordExtractor()

	terms, err := ke.ExtractTerms([]string{
		"Explain what the protocol does and why it is used.",
	}, 10)
	require.NoError(t, err)

	for _, word := range terms {
		assert.GreaterOrEqual(t, len(word), 3, "short word %q should be skipped", word)
		assert.NotContains(t, []string{"explain", "what", "the", "and", "why"}, word)
	}
}

func TestExtractTermsSkipsNonAlphabetic(t *testing.T) {
	ke := NewKeywordExtractor()

	terms, err := ke.ExtractTerms([]string{
		"Question 42: compare ipv4 addressing with classless routing.",
	}, 10)
	require.NoError(t, err)

	assert.NotContains(t, terms, "42")
	assert.NotContains(t, terms, "ipv4")
}

func TestExtractTermsRespectsTopN(t *testing.T) {
	ke := NewKeywordExtractor()

	terms, err := ke.ExtractTerms([]string{
		"Normalization reduces redundancy in relational databases through functional dependencies.",
	}, 2)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(terms), 2)
}

func TestExtractTermsEmptyInput(t *testing.T) {
	ke := NewKeywordExtractor()

	terms, err := ke.ExtractTerms(nil, 5)
	require.NoError(t, err)
	assert.Empty(t, terms)
}
