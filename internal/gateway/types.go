package gateway

import (
	"encoding/json"

	"edumentor/internal/model"
)

// UploadedDocument is one entry of an upload response.
type UploadedDocument struct {
	DocID     string `json:"doc_id"`
	Filename  string `json:"filename"`
	DocType   string `json:"doc_type"`
	PageCount int    `json:"page_count"`
}

// Kind normalizes the backend doc_type into the UI vocabulary.
func (d UploadedDocument) Kind() model.DocumentKind {
	return model.NormalizeDocType(d.DocType)
}

type UploadResult struct {
	Documents []UploadedDocument `json:"documents"`
}

type AskRequest struct {
	SessionID string
	Question  string
	DocID     string
	Mode      model.Mode
}

// AskHit is a matched document page returned alongside an answer.
type AskHit struct {
	DocID     string `json:"doc_id"`
	Filename  string `json:"filename"`
	DocType   string `json:"doc_type"`
	PageIndex int    `json:"page_index"`
	Snippet   string `json:"snippet"`
}

// AskSection is one structured answer section keyed by source page.
type AskSection struct {
	Filename  string   `json:"filename"`
	PageIndex int      `json:"page_index"`
	Bullets   []string `json:"bullets"`
}

// AskResult carries the /modes/ask response. The answer field is either a
// plain string or a structured list; both are accepted.
type AskResult struct {
	Answer   string
	Sections []AskSection
	Hits     []AskHit
}

func (r *AskResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		Answer json.RawMessage `json:"answer"`
		Hits   []AskHit        `json:"hits"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Hits = raw.Hits
	if len(raw.Answer) == 0 {
		return nil
	}

	var text string
	if err := json.Unmarshal(raw.Answer, &text); err == nil {
		r.Answer = text
		return nil
	}
	var sections []AskSection
	if err := json.Unmarshal(raw.Answer, &sections); err == nil {
		r.Sections = sections
		return nil
	}
	// Some revisions answer with a bare bullet list.
	var bullets []string
	if err := json.Unmarshal(raw.Answer, &bullets); err != nil {
		return err
	}
	if len(bullets) > 0 {
		r.Sections = []AskSection{{Bullets: bullets}}
	}
	return nil
}

// ModeExplanation is the per-document explanation a mode produced. Absent
// sections are nil and are omitted from rendering.
type ModeExplanation struct {
	Title             string   `json:"title"`
	Summary           string   `json:"summary"`
	LearningPoints    []string `json:"learning_points"`
	PracticeQuestions []string `json:"practice_questions"`
	KeyPoints         []string `json:"key_points"`
}

// VisionAnalysis is a per-image analysis keyed by page index.
type VisionAnalysis struct {
	PageIndex int    `json:"page_index"`
	Analysis  string `json:"analysis"`
}

// DocumentModeResult is one document's share of a process-mode response.
type DocumentModeResult struct {
	Filename        string           `json:"filename"`
	DocType         string           `json:"doc_type"`
	PageCount       int              `json:"page_count"`
	ModeExplanation *ModeExplanation `json:"mode_explanation"`
	VisionAnalyses  []VisionAnalysis `json:"vision_analyses"`
}

type ProcessModeResult struct {
	Mode      string               `json:"mode"`
	SessionID string               `json:"session_id"`
	Results   []DocumentModeResult `json:"results"`
}

// ChatModeSummary is one document's bullet summary.
type ChatModeSummary struct {
	DocID     string   `json:"doc_id"`
	Filename  string   `json:"filename"`
	Bullets   []string `json:"bullets"`
	PageCount int      `json:"page_count"`
}

type ChatModeResult struct {
	SessionID string            `json:"session_id"`
	Summaries []ChatModeSummary `json:"summaries"`
}
