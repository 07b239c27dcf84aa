package models

// Question is a single exam question extracted from a PYQ paper or
// generated from syllabus content.
type Question struct {
	QuestionNumber int          `json:"question_number"`
	Text           string       `json:"text"`
	WordCount      int          `json:"word_count,omitempty"`
	MappedTopics   []TopicMatch `json:"mapped_topics,omitempty"`
	PrimaryTopic   string       `json:"primary_topic,omitempty"`
	Topic          string       `json:"topic,omitempty"`      // Set on generated mock questions
	Difficulty     string       `json:"difficulty,omitempty"` // Set on generated mock questions
}

// TopicMatch is a syllabus chunk matched to a question by similarity search
type TopicMatch struct {
	Content    string  `json:"content"`    // First 200 chars of the matched chunk
	Similarity float64 `json:"similarity"` // Similarity score from the vector store
}

// TopicStats describes how often a topic shows up across a question paper
type TopicStats struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"` // count/total*100, rounded to 2 decimals
	Priority   string  `json:"priority"`   // HIGH (>20%), MEDIUM (>10%), LOW
}

// Topic priorities
const (
	PriorityHigh   = "HIGH"
	PriorityMedium = "MEDIUM"
	PriorityLow    = "LOW"
)

// StudyRecommendations is the output of the PYQ recommendation step
type StudyRecommendations struct {
	Recommendations         []string            `json:"recommendations"`
	PriorityTopics          []string            `json:"priority_topics"`
	TopicKeyTerms           map[string][]string `json:"topic_key_terms,omitempty"`
	TotalQuestionsAnalyzed  int                 `json:"total_questions_analyzed"`
	UniqueTopics            int                 `json:"unique_topics"`
}

// AnalyzePYQRequest is the body of POST /api/v1/pyq/analyze
type AnalyzePYQRequest struct {
	SyllabusFileID string `json:"syllabus_file_id"`
	PYQFileID      string `json:"pyq_file_id"`
}

// AnalyzePYQResponse is the full frequency/recommendation payload
type AnalyzePYQResponse struct {
	Success                bool                  `json:"success"`
	Message                string                `json:"message"`
	TopicAnalysis          map[string]TopicStats `json:"topic_analysis"`
	Recommendations        []string              `json:"recommendations"`
	PriorityTopics         []string              `json:"priority_topics"`
	TopicKeyTerms          map[string][]string   `json:"topic_key_terms,omitempty"`
	TotalQuestionsAnalyzed int                   `json:"total_questions_analyzed"`
	UniqueTopics           int                   `json:"unique_topics"`
}

// GenerateMockRequest is the body of POST /api/v1/pyq/generate-mock
type GenerateMockRequest struct {
	SyllabusFileID string `json:"syllabus_file_id"`
	Topic          string `json:"topic"`
	NumQuestions   int    `json:"num_questions"` // 1-20, default 5
}

// GenerateMockResponse is the reply to a mock generation request
type GenerateMockResponse struct {
	Success            bool       `json:"success"`
	Topic              string     `json:"topic"`
	QuestionsGenerated int        `json:"questions_generated"`
	Questions          []Question `json:"questions"`
	UsageNote          string     `json:"usage_note"`
}

// PYQUploadResponse is the reply to POST /api/v1/pyq/upload
type PYQUploadResponse struct {
	Success          bool       `json:"success"`
	Message          string     `json:"message"`
	Filename         string     `json:"filename"`
	FileID           string     `json:"file_id"`
	NumPages         int        `json:"num_pages"`
	QuestionsFound   int        `json:"questions_found"`
	QuestionsPreview []Question `json:"questions_preview"`
}
