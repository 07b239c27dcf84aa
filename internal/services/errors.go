package services

import "errors"

// Error taxonomy shared across services. Handlers translate these into
// HTTP status codes: configuration and upstream failures become 500,
// validation failures 400, missing documents/topics/papers 404.
var (
	// ErrInvalidConfig signals a bad chunker configuration (overlap >= size)
	ErrInvalidConfig = errors.New("invalid configuration: chunk overlap must be smaller than chunk size")

	// ErrMissingAPIKey signals that a required provider key is not set.
	// Reported at client construction, not process startup.
	ErrMissingAPIKey = errors.New("GROQ_API_KEY is not set in environment variables")

	// ErrDocumentNotIndexed signals that no vectors exist for the requested
	// file_id; callers should upload the document first.
	ErrDocumentNotIndexed = errors.New("document not found, please upload the PDF first")

	// ErrUnknownTopic signals that a mock-generation topic matched nothing
	// in the syllabus.
	ErrUnknownTopic = errors.New("no syllabus content found for topic")

	// ErrPYQNotFound signals an analyze request for a PYQ paper that was
	// never uploaded (or was lost on restart).
	ErrPYQNotFound = errors.New("PYQ paper not found, please upload it first")

	// ErrNoQuestions signals a recommendation request over an empty
	// question set.
	ErrNoQuestions = errors.New("no questions to analyze")
)
