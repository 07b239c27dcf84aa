package models

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status        string `json:"status"`
	App           string `json:"app"`
	Version       string `json:"version"`
	DebugMode     bool   `json:"debug_mode"`
	VectorBackend string `json:"vector_backend"`
	LLMBreaker    string `json:"llm_breaker_state"`
}

// RootResponse is returned by GET /
type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
	Status  string `json:"status"`
}
