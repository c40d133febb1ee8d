package models

import (
	"time"
)

type SourceKind string

const (
	SourceUpload SourceKind = "upload"
	SourceURL    SourceKind = "url"
)

// DocumentSource is either an uploaded file or a remote URL, never both.
type DocumentSource struct {
	Kind     SourceKind
	Filename string
	Data     []byte
	URL      string
}

func NewUploadSource(filename string, data []byte) *DocumentSource {
	return &DocumentSource{Kind: SourceUpload, Filename: filename, Data: data}
}

func NewURLSource(url string) *DocumentSource {
	return &DocumentSource{Kind: SourceURL, URL: url}
}

// Label is a short human-readable name for the source.
func (s *DocumentSource) Label() string {
	if s.Kind == SourceURL {
		return s.URL
	}
	return s.Filename
}

// Extraction is the text of a PDF, page by page.
type Extraction struct {
	Pages []string `json:"pages"`
	Text  string   `json:"text"`
}

func (e *Extraction) PageCount() int {
	return len(e.Pages)
}

type AnalysisResult struct {
	RequestID string        `json:"request_id"`
	Source    string        `json:"source"`
	Model     string        `json:"model"`
	PageCount int           `json:"page_count"`
	Truncated bool          `json:"truncated"`
	Text      string        `json:"text"`
	Elapsed   time.Duration `json:"elapsed"`
}
