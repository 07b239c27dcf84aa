package services

import (
	"context"
	"log"
	"os"
	"strings"
	"testing"

	"studybuddy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTestPYQService(t *testing.T) (*PYQService, *MockChunkRetriever, *MockLLMClient) {
	mockRetriever := new(MockChunkRetriever)
	mockLLM := new(MockLLMClient)

	logger := log.New(os.Stdout, "[TEST] ", log.LstdFlags)
	service := NewPYQService(mockRetriever, mockLLM, NewKeywordExtractor(), logger)

	return service, mockRetriever, mockLLM
}

func mappedQuestion(text, topic string) models.Question {
	return models.Question{
		Text:         text,
		WordCount:    len(strings.Fields(text)),
		PrimaryTopic: topic,
	}
}

// ============================================================================
// Question extraction
// ============================================================================

func TestExtractQuestions(t *testing.T) {
	service, _, mockLLM := setupTestPYQService(t)

	mockLLM.On("Complete", mock.Anything, mock.Anything).
		Return(`[{"number": 1, "text": "Define Machine Learning."}, {"number": 2, "text": "Explain overfitting."}]`, nil)

	questions := service.ExtractQuestions(context.Background(), "Q1. Define Machine Learning. Q2. Explain overfitting.")

	require.Len(t, questions, 2)
	assert.Equal(t, 1, questions[0].QuestionNumber)
	assert.Equal(t, "Define Machine Learning.", questions[0].Text)
	assert.Equal(t, 3, questions[0].WordCount)
	assert.Equal(t, 2, questions[1].QuestionNumber)
}

func TestExtractQuestionsStripsCodeFences(t *testing.T) {
	service, _, mockLLM := setupTestPYQService(t)

	mockLLM.On("Complete", mock.Anything, mock.Anything).
		Return("```json\n[{\"number\": 1, \"text\": \"What is a perceptron?\"}]\n```", nil)

	questions := service.ExtractQuestions(context.Background(), "paper text")

	require.Len(t, questions, 1)
	assert.Equal(t, "What is a perceptron?", questions[0].Text)
}

func TestExtractQuestionsDropsEmptyText(t *testing.T) {
	service, _, mockLLM := setupTestPYQService(t)

	mockLLM.On("Complete", mock.Anything, mock.Anything).
		Return(`[{"number": 1, "text": ""}, {"number": 2, "text": "Describe CNNs."}]`, nil)

	questions := service.ExtractQuestions(context.Background(), "paper text")

	require.Len(t, questions, 1)
	assert.Equal(t, "Describe CNNs.", questions[0].Text)
}

func TestExtractQuestionsLossyOnBadJSON(t *testing.T) {
	service, _, mockLLM := setupTestPYQService(t)

	mockLLM.On("Complete", mock.Anything, mock.Anything).
		Return("Sorry, I can't produce JSON today.", nil)

	questions := service.ExtractQuestions(context.Background(), "paper text")
	assert.Empty(t, questions)
}

func TestExtractQuestionsLossyOnLLMError(t *testing.T) {
	service, _, mockLLM := setupTestPYQService(t)

	mockLLM.On("Complete", mock.Anything, mock.Anything).
		Return("", assert.AnError)

	questions := service.ExtractQuestions(context.Background(), "paper text")
	assert.Empty(t, questions)
}

func TestExtractQuestionsTrimsLongPapersAndPageMarkers(t *testing.T) {
	service, _, mockLLM := setupTestPYQService(t)

	var prompt string
	mockLLM.On("Complete", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { prompt = args.String(1) }).
		Return("[]", nil)

	text := "intro\n\n--- Page 1 ---\n\n" + strings.Repeat("q ", 3000)
	service.ExtractQuestions(context.Background(), text)

	assert.NotContains(t, prompt, "--- Page 1 ---")
	assert.Less(t, len(prompt), 3600)
}

// ============================================================================
// Paper store
// ============================================================================

func TestStoreAndLookupPaper(t *testing.T) {
	service, _, _ := setupTestPYQService(t)

	_, ok := service.Paper("unknown")
	assert.False(t, ok)

	stored := []models.Question{{QuestionNumber: 1, Text: "Define entropy."}}
	service.StorePaper("exam_2024", stored)

	questions, ok := service.Paper("exam_2024")
	require.True(t, ok)
	assert.Equal(t, stored, questions)
}

// ============================================================================
// Topic mapping and frequency
// ============================================================================

func TestMapToTopics(t *testing.T) {
	service, mockRetriever, _ := setupTestPYQService(t)

	longTopic := strings.Repeat("Supervised learning and its applications. ", 10)
	mockRetriever.On("Search", mock.Anything, "syllabus", "Define supervised learning.", 2).
		Return([]models.RetrievedChunk{
			{Content: longTopic, ChunkIndex: 0, Similarity: 0.88},
			{Content: "Second best match", ChunkIndex: 4, Similarity: 0.61},
		}, nil)

	mapped, err := service.MapToTopics(context.Background(),
		[]models.Question{{QuestionNumber: 1, Text: "Define supervised learning.", WordCount: 3}}, "syllabus")
	require.NoError(t, err)
	require.Len(t, mapped, 1)

	require.Len(t, mapped[0].MappedTopics, 2)
	assert.Len(t, mapped[0].MappedTopics[0].Content, 200)
	assert.Equal(t, 0.88, mapped[0].MappedTopics[0].Similarity)
	assert.Equal(t, longTopic[:50], mapped[0].PrimaryTopic)
}

func TestMapToTopicsUnknownOnNoMatches(t *testing.T) {
	service, mockRetriever, _ := setupTestPYQService(t)

	mockRetriever.On("Search", mock.Anything, "syllabus", mock.Anything, 2).
		Return([]models.RetrievedChunk{}, nil)

	mapped, err := service.MapToTopics(context.Background(),
		[]models.Question{{QuestionNumber: 1, Text: "Something off-syllabus?"}}, "syllabus")
	require.NoError(t, err)
	assert.Equal(t, "Unknown", mapped[0].PrimaryTopic)
}

func TestMapToTopicsMissingSyllabus(t *testing.T) {
	service, mockRetriever, _ := setupTestPYQService(t)

	mockRetriever.On("Search", mock.Anything, "missing", mock.Anything, 2).
		Return(nil, ErrDocumentNotIndexed)

	_, err := service.MapToTopics(context.Background(),
		[]models.Question{{QuestionNumber: 1, Text: "Anything"}}, "missing")
	assert.ErrorIs(t, err, ErrDocumentNotIndexed)
}

func TestAnalyzeTopicFrequency(t *testing.T) {
	service, _, _ := setupTestPYQService(t)

	mapped := []models.Question{
		mappedQuestion("q1", "Neural Networks"),
		mappedQuestion("q2", "Neural Networks"),
		mappedQuestion("q3", "Neural Networks"),
		mappedQuestion("q4", "Decision Trees"),
		mappedQuestion("q5", "Decision Trees"),
		mappedQuestion("q6", "Clustering"),
		mappedQuestion("q7", "Regression"),
		mappedQuestion("q8", "SVMs"),
		mappedQuestion("q9", "Bayes"),
		mappedQuestion("q10", "PCA"),
	}

	analysis, order := service.AnalyzeTopicFrequency(mapped)

	assert.Equal(t, 3, analysis["Neural Networks"].Count)
	assert.Equal(t, 30.0, analysis["Neural Networks"].Percentage)
	assert.Equal(t, models.PriorityHigh, analysis["Neural Networks"].Priority)

	assert.Equal(t, 20.0, analysis["Decision Trees"].Percentage)
	assert.Equal(t, models.PriorityMedium, analysis["Decision Trees"].Priority)

	assert.Equal(t, 10.0, analysis["Clustering"].Percentage)
	assert.Equal(t, models.PriorityLow, analysis["Clustering"].Priority)

	// Descending count, first-seen tiebreak
	assert.Equal(t, []string{"Neural Networks", "Decision Trees", "Clustering", "Regression", "SVMs", "Bayes", "PCA"}, order)
}

func TestAnalyzeTopicFrequencySingleTopic(t *testing.T) {
	service, _, _ := setupTestPYQService(t)

	mapped := []models.Question{
		mappedQuestion("q1", "Graphs"),
		mappedQuestion("q2", "Graphs"),
		mappedQuestion("q3", "Graphs"),
		mappedQuestion("q4", "Graphs"),
	}

	analysis, order := service.AnalyzeTopicFrequency(mapped)

	require.Len(t, analysis, 1)
	assert.Equal(t, 4, analysis["Graphs"].Count)
	assert.Equal(t, 100.0, analysis["Graphs"].Percentage)
	assert.Equal(t, models.PriorityHigh, analysis["Graphs"].Priority)
	assert.Equal(t, []string{"Graphs"}, order)
}

// ============================================================================
// Recommendations
// ============================================================================

func TestGenerateRecommendations(t *testing.T) {
	service, _, _ := setupTestPYQService(t)

	mapped := []models.Question{
		mappedQuestion("Explain how neural networks learn from training data", "Neural Networks"),
		mappedQuestion("Describe the architecture of a neural network", "Neural Networks"),
		mappedQuestion("Compare decision trees and random forests", "Decision Trees"),
		mappedQuestion("What is k-means clustering", "Clustering"),
		mappedQuestion("Define linear regression", "Regression"),
		mappedQuestion("Explain support vector machines", "SVMs"),
	}
	analysis, order := service.AnalyzeTopicFrequency(mapped)

	recs, err := service.GenerateRecommendations(analysis, order, mapped)
	require.NoError(t, err)

	assert.Equal(t, 6, recs.TotalQuestionsAnalyzed)
	assert.Equal(t, 5, recs.UniqueTopics)
	assert.Equal(t, []string{"Neural Networks"}, recs.PriorityTopics)

	require.NotEmpty(t, recs.Recommendations)
	assert.Contains(t, recs.Recommendations[0], "PRIORITY: Focus on 'Neural Networks'")
	assert.Contains(t, recs.Recommendations[0], "2 questions (33.33%)")

	last := recs.Recommendations[len(recs.Recommendations)-1]
	assert.Contains(t, last, "Average question length:")

	// Key terms are extracted for priority topics only
	assert.Contains(t, recs.TopicKeyTerms, "Neural Networks")
	assert.NotContains(t, recs.TopicKeyTerms, "Clustering")
}

func TestGenerateRecommendationsOrdersPriorities(t *testing.T) {
	service, _, _ := setupTestPYQService(t)

	mapped := make([]models.Question, 0, 20)
	for i := 0; i < 10; i++ {
		mapped = append(mapped, mappedQuestion("high frequency question", "Hot Topic"))
	}
	for i := 0; i < 3; i++ {
		mapped = append(mapped, mappedQuestion("medium frequency question", "Warm Topic"))
	}
	for i := 0; i < 7; i++ {
		mapped = append(mapped, mappedQuestion("low frequency question", "Cold Topic "+string(rune('A'+i))))
	}
	analysis, order := service.AnalyzeTopicFrequency(mapped)

	recs, err := service.GenerateRecommendations(analysis, order, mapped)
	require.NoError(t, err)

	assert.Contains(t, recs.Recommendations[0], "Hot Topic")
	// Whole-number percentages keep a trailing .0
	assert.Contains(t, recs.Recommendations[0], "(50.0%)")
	assert.Contains(t, recs.Recommendations[1], "Important: Review 'Warm Topic'")
	assert.Contains(t, recs.Recommendations[1], "(15.0%)")
	// Low-priority topics get no line of their own
	for _, rec := range recs.Recommendations {
		assert.NotContains(t, rec, "Cold Topic")
	}
}

func TestGenerateRecommendationsNoQuestions(t *testing.T) {
	service, _, _ := setupTestPYQService(t)

	_, err := service.GenerateRecommendations(map[string]models.TopicStats{}, nil, nil)
	assert.ErrorIs(t, err, ErrNoQuestions)
}

// ============================================================================
// Full analysis pipeline
// ============================================================================

func TestAnalyzeUnknownPaper(t *testing.T) {
	service, _, _ := setupTestPYQService(t)

	_, err := service.Analyze(context.Background(), "syllabus", "never_uploaded")
	assert.ErrorIs(t, err, ErrPYQNotFound)
}

func TestAnalyzeFullPipeline(t *testing.T) {
	service, mockRetriever, _ := setupTestPYQService(t)

	service.StorePaper("exam_2024", []models.Question{
		{QuestionNumber: 1, Text: "Explain gradient descent optimization", WordCount: 4},
		{QuestionNumber: 2, Text: "Derive the gradient descent update rule", WordCount: 6},
	})

	mockRetriever.On("Search", mock.Anything, "syllabus", mock.Anything, 2).
		Return([]models.RetrievedChunk{
			{Content: "Optimization methods", ChunkIndex: 2, Similarity: 0.8},
		}, nil)

	resp, err := service.Analyze(context.Background(), "syllabus", "exam_2024")
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.TotalQuestionsAnalyzed)
	assert.Equal(t, 1, resp.UniqueTopics)
	require.Contains(t, resp.TopicAnalysis, "Optimization methods")
	assert.Equal(t, models.PriorityHigh, resp.TopicAnalysis["Optimization methods"].Priority)
	assert.Equal(t, []string{"Optimization methods"}, resp.PriorityTopics)
}

// ============================================================================
// Mock question generation
// ============================================================================

func TestGenerateMockQuestions(t *testing.T) {
	service, mockRetriever, mockLLM := setupTestPYQService(t)

	mockRetriever.On("Search", mock.Anything, "syllabus", "neural networks", 2).
		Return([]models.RetrievedChunk{
			{Content: "Neural network fundamentals", ChunkIndex: 0, Similarity: 0.9},
		}, nil)
	mockLLM.On("Complete", mock.Anything, mock.Anything).
		Return("Q1: What is a perceptron?\nQ2: Explain backpropagation.\nQ3: Compare CNNs and RNNs.", nil)

	questions, err := service.GenerateMockQuestions(context.Background(), "syllabus", "neural networks", 3)
	require.NoError(t, err)
	require.Len(t, questions, 3)

	assert.Equal(t, 1, questions[0].QuestionNumber)
	assert.Equal(t, "What is a perceptron?", questions[0].Text)
	assert.Equal(t, "neural networks", questions[0].Topic)
	assert.Equal(t, "medium", questions[0].Difficulty)
	assert.Equal(t, "Explain backpropagation.", questions[1].Text)
}

func TestGenerateMockQuestionsCapsAtRequested(t *testing.T) {
	service, mockRetriever, mockLLM := setupTestPYQService(t)

	mockRetriever.On("Search", mock.Anything, "syllabus", mock.Anything, 2).
		Return([]models.RetrievedChunk{{Content: "content", Similarity: 0.9}}, nil)
	mockLLM.On("Complete", mock.Anything, mock.Anything).
		Return("Q1: one?\nQ2: two?\nQ3: three?\nQ4: four?", nil)

	questions, err := service.GenerateMockQuestions(context.Background(), "syllabus", "topic", 2)
	require.NoError(t, err)
	assert.Len(t, questions, 2)
}

func TestGenerateMockQuestionsUnknownTopic(t *testing.T) {
	service, mockRetriever, mockLLM := setupTestPYQService(t)

	mockRetriever.On("Search", mock.Anything, "syllabus", "quantum basket weaving", 2).
		Return([]models.RetrievedChunk{}, nil)

	_, err := service.GenerateMockQuestions(context.Background(), "syllabus", "quantum basket weaving", 5)
	assert.ErrorIs(t, err, ErrUnknownTopic)
	mockLLM.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestGenerateMockQuestionsMissingSyllabus(t *testing.T) {
	service, mockRetriever, _ := setupTestPYQService(t)

	mockRetriever.On("Search", mock.Anything, "missing", mock.Anything, 2).
		Return(nil, ErrDocumentNotIndexed)

	_, err := service.GenerateMockQuestions(context.Background(), "missing", "topic", 5)
	assert.ErrorIs(t, err, ErrDocumentNotIndexed)
}

func TestGenerateMockQuestionsSkipsChatter(t *testing.T) {
	service, mockRetriever, mockLLM := setupTestPYQService(t)

	mockRetriever.On("Search", mock.Anything, "syllabus", mock.Anything, 2).
		Return([]models.RetrievedChunk{{Content: "content", Similarity: 0.9}}, nil)
	mockLLM.On("Complete", mock.Anything, mock.Anything).
		Return("Here are your questions:\n\nQ1: What is entropy?\n\nGood luck!", nil)

	questions, err := service.GenerateMockQuestions(context.Background(), "syllabus", "topic", 5)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "What is entropy?", questions[0].Text)
}
