package modes

import (
	"fmt"
	"sort"
	"strings"

	"edumentor/internal/gateway"
	"edumentor/internal/model"
)

// FormatResult renders a process-mode response as one chat message. Per
// document: a heading, then summary, learning points, practice questions,
// key points, and per-page visual analyses, in that order. Absent sections
// are omitted entirely.
func FormatResult(mode model.Mode, result *gateway.ProcessModeResult) string {
	if result == nil || len(result.Results) == 0 {
		return mode.Label() + " produced no results."
	}

	var b strings.Builder
	for i, doc := range result.Results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		writeDocumentResult(&b, mode, doc)
	}
	return b.String()
}

func writeDocumentResult(b *strings.Builder, mode model.Mode, doc gateway.DocumentModeResult) {
	heading := doc.Filename
	if exp := doc.ModeExplanation; exp != nil && strings.TrimSpace(exp.Title) != "" {
		heading = exp.Title
	} else if heading == "" {
		heading = mode.Label()
	}
	b.WriteString("## " + heading)

	if exp := doc.ModeExplanation; exp != nil {
		if s := strings.TrimSpace(exp.Summary); s != "" {
			b.WriteString("\n\n" + s)
		}
		writeList(b, "Learning points", exp.LearningPoints)
		writeList(b, "Practice questions", exp.PracticeQuestions)
		writeList(b, "Key points", exp.KeyPoints)
	}

	if len(doc.VisionAnalyses) > 0 {
		analyses := append([]gateway.VisionAnalysis(nil), doc.VisionAnalyses...)
		sort.Slice(analyses, func(i, j int) bool {
			return analyses[i].PageIndex < analyses[j].PageIndex
		})
		b.WriteString("\n\nVisual analysis:")
		for _, a := range analyses {
			b.WriteString(fmt.Sprintf("\n- Page %d: %s", a.PageIndex+1, strings.TrimSpace(a.Analysis)))
		}
	}
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n\n" + title + ":")
	for i, item := range items {
		b.WriteString(fmt.Sprintf("\n%d. %s", i+1, strings.TrimSpace(item)))
	}
}
