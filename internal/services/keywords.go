package services

import (
	"sort"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
)

// KeywordExtractor pulls the most salient terms out of question text.
// Used to annotate priority topics in PYQ study recommendations.
type KeywordExtractor struct {
	stopWords map[string]bool
	minLength int
}

// NewKeywordExtractor creates a keyword extractor with a default stop list
func NewKeywordExtractor() *KeywordExtractor {
	stopWords := map[string]bool{
		"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
		"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
		"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
		"be": true, "been": true, "have": true, "has": true, "had": true, "do": true,
		"does": true, "did": true, "will": true, "would": true, "could": true, "should": true,
		"this": true, "that": true, "these": true, "those": true, "what": true, "which": true,
		"how": true, "why": true, "when": true, "define": true, "explain": true,
		"describe": true, "discuss": true, "write": true, "state": true, "list": true,
	}

	return &KeywordExtractor{
		stopWords: stopWords,
		minLength: 3,
	}
}

type scoredTerm struct {
	word      string
	frequency int
	score     float64
}

// ExtractTerms returns up to topN key terms across the given texts,
// ordered by importance (POS-weighted frequency).
func (ke *KeywordExtractor) ExtractTerms(texts []string, topN int) ([]string, error) {
	doc, err := prose.NewDocument(strings.Join(texts, " "))
	if err != nil {
		return nil, err
	}

	terms := make(map[string]*scoredTerm)
	for _, tok := range doc.Tokens() {
		word := strings.ToLower(tok.Text)
		if ke.shouldSkipWord(word, tok.Tag) {
			continue
		}

		score := ke.tagScore(tok.Tag)
		if existing, ok := terms[word]; ok {
			existing.frequency++
			existing.score += score
		} else {
			terms[word] = &scoredTerm{word: word, frequency: 1, score: score}
		}
	}

	ranked := make([]*scoredTerm, 0, len(terms))
	for _, t := range terms {
		ranked = append(ranked, t)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].word < ranked[j].word
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	out := make([]string, len(ranked))
	for i, t := range ranked {
		out[i] = t.word
	}
	return out, nil
}

func (ke *KeywordExtractor) shouldSkipWord(word, tag string) bool {
	if len(word) < ke.minLength {
		return true
	}
	if ke.stopWords[word] {
		return true
	}
	for _, r := range word {
		if !unicode.IsLetter(r) && r != '-' {
			return true
		}
	}
	// Only nouns, adjectives and verbs carry topical signal
	switch {
	case strings.HasPrefix(tag, "NN"), strings.HasPrefix(tag, "JJ"), strings.HasPrefix(tag, "VB"):
		return false
	}
	return true
}

func (ke *KeywordExtractor) tagScore(tag string) float64 {
	switch {
	case strings.HasPrefix(tag, "NNP"):
		return 3.0
	case strings.HasPrefix(tag, "NN"):
		return 2.0
	case strings.HasPrefix(tag, "JJ"):
		return 1.5
	case strings.HasPrefix(tag, "VB"):
		return 1.0
	}
	return 0.5
}
