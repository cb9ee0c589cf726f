package model

import (
	"strings"
	"time"
)

// DocumentKind is the closed UI vocabulary for uploaded artifacts. Backend
// type strings are normalized into it at the gateway boundary.
type DocumentKind string

const (
	KindPDF          DocumentKind = "pdf"
	KindPresentation DocumentKind = "presentation"
	KindWord         DocumentKind = "word"
	KindImage        DocumentKind = "image"
	KindOther        DocumentKind = "other"
)

// NormalizeDocType maps a backend doc_type string to a DocumentKind.
func NormalizeDocType(docType string) DocumentKind {
	switch strings.ToLower(strings.TrimSpace(docType)) {
	case "pdf":
		return KindPDF
	case "ppt", "pptx", "presentation":
		return KindPresentation
	case "doc", "docx", "word":
		return KindWord
	case "jpg", "jpeg", "png", "image":
		return KindImage
	default:
		return KindOther
	}
}

// Document is an uploaded artifact. ID is backend-issued and authoritative;
// every later mode/ask/vision call refers to documents by this id.
type Document struct {
	ID               string
	Name             string
	Kind             DocumentKind
	PageCount        int
	SizeLabel        string
	HasVisualContent bool
	// LocalPath points at the originally chosen file, when known.
	LocalPath string
}

// Mode is one of the fixed backend-driven analysis styles.
type Mode string

const (
	ModeStudent   Mode = "student"
	ModeTeacher   Mode = "teacher"
	ModeExam      Mode = "exam"
	ModeRevision  Mode = "revision"
	ModePractical Mode = "practical"
)

// Modes lists the selectable learning modes in display order.
var Modes = []Mode{ModeStudent, ModeTeacher, ModeExam, ModeRevision, ModePractical}

// ValidMode reports whether m names a known learning mode.
func ValidMode(m Mode) bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

// Label returns the human-readable mode name, e.g. "Student Mode".
func (m Mode) Label() string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:]) + " Mode"
}

// Description returns the one-line blurb shown next to the mode.
func (m Mode) Description() string {
	switch m {
	case ModeStudent:
		return "Learn concepts step by step"
	case ModeTeacher:
		return "Generate explanations & slides"
	case ModeExam:
		return "Practice with questions"
	case ModeRevision:
		return "Quick review & summaries"
	case ModePractical:
		return "Hands-on exercises"
	default:
		return ""
	}
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// SourceRef attributes a message to a document page.
type SourceRef struct {
	DocumentName string
	PageNumber   int
}

// Message is one chat entry. The list is append-only; insertion order is the
// only ordering guarantee.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
	SourceRef *SourceRef
	// ModeResult carries the structured payload a mode-processing call
	// produced, for renderers that want more than Content.
	ModeResult any
}

// VoicePhase is the Vision Tutor pipeline phase.
type VoicePhase int

const (
	VoiceIdle VoicePhase = iota
	VoiceListening
	VoiceProcessing
	VoiceSpeaking
)

func (p VoicePhase) String() string {
	switch p {
	case VoiceListening:
		return "listening"
	case VoiceProcessing:
		return "processing"
	case VoiceSpeaking:
		return "speaking"
	default:
		return "idle"
	}
}
