package models

import "time"

// Report is a finished research document. It lives only in memory for the
// request that produced it.
type Report struct {
	Topic       string       `json:"topic"`
	Markdown    string       `json:"markdown"`
	Filename    string       `json:"filename"`
	Provider    string       `json:"provider"`
	ModelID     string       `json:"model_id"`
	Tools       []ToolKind   `json:"tools"`
	Length      ReportLength `json:"length"`
	Citations   bool         `json:"citations"`
	Notices     []string     `json:"notices,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// ExampleTopics are offered when the topic field is empty.
var ExampleTopics = []string{
	"The impact of artificial intelligence on healthcare delivery",
	"Sustainable energy solutions for urban environments",
	"Climate change adaptation strategies in coastal cities",
	"The future of quantum computing in cybersecurity",
	"Blockchain technology applications beyond cryptocurrency",
	"Gene therapy advances in treating rare diseases",
}
