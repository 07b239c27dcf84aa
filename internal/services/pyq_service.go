package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"studybuddy/internal/models"
)

var (
	pageMarkerRe    = regexp.MustCompile(`---\s*Page\s+\d+\s*---`)
	codeFenceRe     = regexp.MustCompile("```json\\s*|\\s*```")
	questionMarkRe  = regexp.MustCompile(`^Q\.?\s*\d+[\.:\)]\s*`)
	numberMarkRe    = regexp.MustCompile(`^\d+[\.:\)]\s*`)
)

// How much paper text goes to the LLM and how results are shaped
const (
	extractPrefixLen   = 3000
	topicSearchK       = 2
	topicPreviewLen    = 200
	primaryTopicLen    = 50
	mockContextLen     = 300
	topicKeyTermCount  = 5
	unknownTopic       = "Unknown"
)

// PYQService analyzes previous-year question papers: it extracts discrete
// questions via the LLM, maps them onto syllabus topics by similarity
// search, tallies topic frequency and produces study recommendations.
// Extracted papers are kept in memory so a later analyze call can reuse
// them (lost on restart, like sessions).
type PYQService struct {
	retriever ChunkRetriever
	llm       LLMClient
	keywords  *KeywordExtractor
	logger    *log.Logger

	mu     sync.RWMutex
	papers map[string][]models.Question
}

// NewPYQService creates the PYQ analyzer
func NewPYQService(retriever ChunkRetriever, llm LLMClient, keywords *KeywordExtractor, logger *log.Logger) *PYQService {
	return &PYQService{
		retriever: retriever,
		llm:       llm,
		keywords:  keywords,
		logger:    logger,
		papers:    make(map[string][]models.Question),
	}
}

type extractedQuestion struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// ExtractQuestions asks the LLM to pull discrete questions out of raw
// paper text. Parsing is deliberately lossy: any failure logs a warning
// and yields an empty list rather than an error.
func (s *PYQService) ExtractQuestions(ctx context.Context, text string) []models.Question {
	if s.llm == nil {
		s.logger.Printf("Warning: LLM unavailable, skipping question extraction")
		return []models.Question{}
	}

	cleaned := pageMarkerRe.ReplaceAllString(text, "")
	if len(cleaned) > extractPrefixLen {
		cleaned = cleaned[:extractPrefixLen]
	}

	prompt := fmt.Sprintf(`Extract all individual questions from this exam paper. Return ONLY a JSON array of questions.

EXAM PAPER TEXT:
%s

Format:
[
  {"number": 1, "text": "Define Machine Learning and explain its types."},
  {"number": 2, "text": "What is the difference between overfitting and underfitting?"},
  ...
]

Return ONLY the JSON array, nothing else.`, cleaned)

	response, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		s.logger.Printf("Warning: LLM question extraction failed: %v", err)
		return []models.Question{}
	}

	// Models often wrap JSON in markdown code fences
	response = codeFenceRe.ReplaceAllString(strings.TrimSpace(response), "")

	var extracted []extractedQuestion
	if err := json.Unmarshal([]byte(response), &extracted); err != nil {
		s.logger.Printf("Warning: could not parse extracted questions: %v", err)
		return []models.Question{}
	}

	questions := make([]models.Question, 0, len(extracted))
	for i, q := range extracted {
		if q.Text == "" {
			continue
		}
		number := q.Number
		if number == 0 {
			number = i + 1
		}
		questions = append(questions, models.Question{
			QuestionNumber: number,
			Text:           q.Text,
			WordCount:      len(strings.Fields(q.Text)),
		})
	}
	return questions
}

// StorePaper remembers a paper's extracted questions for later analysis
func (s *PYQService) StorePaper(fileID string, questions []models.Question) {
	s.mu.Lock()
	s.papers[fileID] = questions
	s.mu.Unlock()
}

// Paper returns a previously stored paper's questions
func (s *PYQService) Paper(fileID string) ([]models.Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	questions, ok := s.papers[fileID]
	return questions, ok
}

// MapToTopics attaches syllabus matches to each question via similarity
// search against the syllabus document's partition.
func (s *PYQService) MapToTopics(ctx context.Context, questions []models.Question, syllabusFileID string) ([]models.Question, error) {
	mapped := make([]models.Question, 0, len(questions))

	for _, question := range questions {
		chunks, err := s.retriever.Search(ctx, syllabusFileID, question.Text, topicSearchK)
		if err != nil {
			if errors.Is(err, ErrDocumentNotIndexed) {
				return nil, err
			}
			return nil, fmt.Errorf("failed to map question to topics: %w", err)
		}

		topics := make([]models.TopicMatch, 0, len(chunks))
		for _, chunk := range chunks {
			topics = append(topics, models.TopicMatch{
				Content:    truncate(chunk.Content, topicPreviewLen),
				Similarity: chunk.Similarity,
			})
		}

		question.MappedTopics = topics
		if len(topics) > 0 {
			question.PrimaryTopic = truncate(topics[0].Content, primaryTopicLen)
		} else {
			question.PrimaryTopic = unknownTopic
		}
		mapped = append(mapped, question)
	}

	return mapped, nil
}

// AnalyzeTopicFrequency tallies primary topics. The returned slice orders
// topics by descending count, ties broken by first appearance.
func (s *PYQService) AnalyzeTopicFrequency(mapped []models.Question) (map[string]models.TopicStats, []string) {
	counts := make(map[string]int)
	var order []string

	for _, question := range mapped {
		topic := question.PrimaryTopic
		if topic == "" {
			topic = unknownTopic
		}
		if _, seen := counts[topic]; !seen {
			order = append(order, topic)
		}
		counts[topic]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	total := len(mapped)
	analysis := make(map[string]models.TopicStats, len(counts))
	for topic, count := range counts {
		percentage := math.Round(float64(count)/float64(total)*100*100) / 100
		priority := models.PriorityLow
		switch {
		case percentage > 20:
			priority = models.PriorityHigh
		case percentage > 10:
			priority = models.PriorityMedium
		}
		analysis[topic] = models.TopicStats{
			Count:      count,
			Percentage: percentage,
			Priority:   priority,
		}
	}

	return analysis, order
}

// GenerateRecommendations turns a frequency analysis into study advice:
// one line per HIGH topic, then one per MEDIUM, then an average question
// length line. An empty question set is an error, not a zero.
func (s *PYQService) GenerateRecommendations(analysis map[string]models.TopicStats, order []string, mapped []models.Question) (*models.StudyRecommendations, error) {
	if len(mapped) == 0 {
		return nil, ErrNoQuestions
	}

	var recommendations []string
	var priorityTopics []string

	for _, topic := range order {
		data := analysis[topic]
		if data.Priority == models.PriorityHigh {
			priorityTopics = append(priorityTopics, topic)
			recommendations = append(recommendations, fmt.Sprintf(
				"🔥 PRIORITY: Focus on '%s' - appears in %d questions (%s%%)",
				topic, data.Count, formatPercent(data.Percentage)))
		}
	}
	for _, topic := range order {
		data := analysis[topic]
		if data.Priority == models.PriorityMedium {
			recommendations = append(recommendations, fmt.Sprintf(
				"⚠️ Important: Review '%s' - %d questions (%s%%)",
				topic, data.Count, formatPercent(data.Percentage)))
		}
	}

	totalWords := 0
	for _, q := range mapped {
		totalWords += q.WordCount
	}
	avgWords := totalWords / len(mapped)
	recommendations = append(recommendations, fmt.Sprintf(
		"📝 Average question length: %d words - prepare accordingly", avgWords))

	result := &models.StudyRecommendations{
		Recommendations:        recommendations,
		PriorityTopics:         priorityTopics,
		TotalQuestionsAnalyzed: len(mapped),
		UniqueTopics:           len(analysis),
	}

	if len(priorityTopics) > 0 {
		result.TopicKeyTerms = s.keyTermsForTopics(priorityTopics, mapped)
	}

	return result, nil
}

// keyTermsForTopics extracts salient terms from the questions behind each
// priority topic. Extraction failures only cost the enrichment.
func (s *PYQService) keyTermsForTopics(topics []string, mapped []models.Question) map[string][]string {
	byTopic := make(map[string][]string)
	for _, question := range mapped {
		byTopic[question.PrimaryTopic] = append(byTopic[question.PrimaryTopic], question.Text)
	}

	keyTerms := make(map[string][]string, len(topics))
	for _, topic := range topics {
		texts := byTopic[topic]
		if len(texts) == 0 {
			continue
		}
		terms, err := s.keywords.ExtractTerms(texts, topicKeyTermCount)
		if err != nil {
			s.logger.Printf("Warning: keyword extraction failed for topic %q: %v", topic, err)
			continue
		}
		keyTerms[topic] = terms
	}
	return keyTerms
}

// Analyze runs the full pipeline for a stored paper against a syllabus
func (s *PYQService) Analyze(ctx context.Context, syllabusFileID, pyqFileID string) (*models.AnalyzePYQResponse, error) {
	questions, ok := s.Paper(pyqFileID)
	if !ok {
		return nil, ErrPYQNotFound
	}

	mapped, err := s.MapToTopics(ctx, questions, syllabusFileID)
	if err != nil {
		return nil, err
	}

	analysis, order := s.AnalyzeTopicFrequency(mapped)
	recs, err := s.GenerateRecommendations(analysis, order, mapped)
	if err != nil {
		return nil, err
	}

	return &models.AnalyzePYQResponse{
		Success:                true,
		Message:                "Analysis complete",
		TopicAnalysis:          analysis,
		Recommendations:        recs.Recommendations,
		PriorityTopics:         recs.PriorityTopics,
		TopicKeyTerms:          recs.TopicKeyTerms,
		TotalQuestionsAnalyzed: recs.TotalQuestionsAnalyzed,
		UniqueTopics:           recs.UniqueTopics,
	}, nil
}

// GenerateMockQuestions creates up to n practice questions about a topic,
// grounded in the syllabus content nearest to the topic.
func (s *PYQService) GenerateMockQuestions(ctx context.Context, syllabusFileID, topic string, n int) ([]models.Question, error) {
	chunks, err := s.retriever.Search(ctx, syllabusFileID, topic, topicSearchK)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, ErrUnknownTopic
	}
	if s.llm == nil {
		return nil, ErrMissingAPIKey
	}

	contextParts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		contextParts = append(contextParts, truncate(chunk.Content, mockContextLen))
	}

	prompt := fmt.Sprintf(`You are an exam question generator. Based on the syllabus content below, generate %d exam-style questions about "%s".

SYLLABUS CONTENT:
%s

Generate questions that:
1. Test understanding of key concepts
2. Are clear and unambiguous
3. Match typical exam difficulty
4. Cover different aspects of the topic

Format each question as:
Q1: [Question text]
Q2: [Question text]
...

GENERATE %d QUESTIONS:`, n, topic, strings.Join(contextParts, "\n"), n)

	response, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	questions := make([]models.Question, 0, n)
	for i, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		lineNo := i + 1
		if line == "" || (!strings.HasPrefix(line, "Q") && !strings.HasPrefix(line, strconv.Itoa(lineNo))) {
			continue
		}

		text := questionMarkRe.ReplaceAllString(line, "")
		text = numberMarkRe.ReplaceAllString(text, "")
		if text == "" {
			continue
		}

		questions = append(questions, models.Question{
			QuestionNumber: len(questions) + 1,
			Text:           text,
			Topic:          topic,
			Difficulty:     "medium",
		})
		if len(questions) == n {
			break
		}
	}

	return questions, nil
}

func truncate(text string, n int) string {
	if len(text) > n {
		return text[:n]
	}
	return text
}

// formatPercent renders a rounded percentage with at least one decimal
// place, so whole numbers read "30.0" rather than "30".
func formatPercent(p float64) string {
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
