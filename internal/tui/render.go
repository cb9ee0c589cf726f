package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"edumentor/internal/model"
	"edumentor/internal/tui/ui"
)

func (m studyModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(m.renderHelpBlock(m.width, m.height))
		b.WriteString("\n")
	}

	if m.state.ShowSelector {
		b.WriteString(m.renderSelector())
		b.WriteString("\n")
		b.WriteString(ui.Dim("space select · enter done · esc close"))
		return b.String()
	}

	switch {
	case m.state.VisionActive:
		b.WriteString(lipgloss.NewStyle().MaxWidth(maxInt(m.width-2, 20)).Render(m.renderVoiceStatus()))
		b.WriteString("\n")
		b.WriteString(ui.Dim("enter talk · esc leave vision · ctrl+k help"))
	case m.isLoading || m.state.Processing:
		b.WriteString(m.spinner.View() + " " + ui.Dim("working..."))
		b.WriteString("\n")
		b.WriteString(ui.Dim("ctrl+k help"))
	default:
		b.WriteString(ui.Prompt("you"))
		b.WriteString(m.textInput.View())
		b.WriteString("\n")
		b.WriteString(ui.Dim("ctrl+k help · ctrl+v vision"))
	}
	return b.String()
}

// transcript renders the banner, the chat history, and the vision exchange
// log as one scrollable body.
func (m studyModel) transcript() string {
	lines := append([]string(nil), m.banner...)

	msgs := m.state.Messages
	if m.hiddenMsgs < len(msgs) {
		msgs = msgs[m.hiddenMsgs:]
	} else {
		msgs = nil
	}
	for _, msg := range msgs {
		lines = append(lines, renderMessage(msg))
	}
	lines = append(lines, m.visionLog...)
	return strings.Join(lines, "\n\n")
}

func renderMessage(msg model.Message) string {
	var b strings.Builder
	switch msg.Role {
	case model.RoleUser:
		b.WriteString(ui.Prompt("you") + msg.Content)
	default:
		b.WriteString(ui.Brand.Render("tutor: ") + msg.Content)
	}
	if msg.SourceRef != nil {
		b.WriteString("\n" + ui.Dim("Source: ") + ui.Source(fmt.Sprintf("%s · page %d", msg.SourceRef.DocumentName, msg.SourceRef.PageNumber)))
	}
	return b.String()
}

func (m studyModel) renderVoiceStatus() string {
	switch m.voice.Phase {
	case model.VoiceListening:
		return ui.Red.Render(m.spinner.View() + " [ Listening... press enter to cancel ]")
	case model.VoiceProcessing:
		return ui.Yellow.Render(m.spinner.View() + " [ Thinking about the screen... ]")
	case model.VoiceSpeaking:
		return ui.Green.Render(m.spinner.View() + " [ Speaking... press enter to stop ]")
	default:
		return ui.Subtle.Render("[ Vision Tutor: press enter and ask about what's on screen ]")
	}
}

func (m studyModel) renderSelector() string {
	selected := map[string]bool{}
	for _, id := range m.state.SelectedDocIDs {
		selected[id] = true
	}

	var lines []string
	lines = append(lines, ui.Brand.Render("Choose documents for the Vision Tutor"))
	if len(m.state.Documents) == 0 {
		lines = append(lines, ui.Dim("  (no documents uploaded)"))
	}
	for i, doc := range m.state.Documents {
		marker := " "
		if i == m.selCursor {
			marker = ">"
		}
		box := "[ ]"
		if selected[doc.ID] {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %s %s %s", marker, box, doc.Name, ui.Dim(docDetail(doc)))
		if i == m.selCursor {
			line = ui.Bold.Render(line)
		}
		lines = append(lines, line)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ClrSubtle).
		Padding(0, 1).
		MaxWidth(maxInt(m.width-2, 24)).
		Render(strings.Join(lines, "\n"))
}

func docDetail(doc model.Document) string {
	parts := []string{string(doc.Kind)}
	if doc.PageCount > 1 {
		parts = append(parts, fmt.Sprintf("%d pages", doc.PageCount))
	}
	if doc.SizeLabel != "" {
		parts = append(parts, doc.SizeLabel)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (m studyModel) renderHelpBlock(width, height int) string {
	helpText := formatHelp()
	if width < 56 || height < 16 {
		helpText = "Help: /help, /quit, /clear, /docs, /upload, /remove, /use, /mode, /summaries. ctrl+v vision. ctrl+k closes this."
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ClrSubtle).
		Padding(0, 1).
		MaxWidth(maxInt(width-2, 1)).
		Render(helpText)
}

func formatHelp() string {
	var b strings.Builder
	b.WriteString(ui.Brand.Render("Commands:\n"))
	fmt.Fprintf(&b, "  %s  %s\n", ui.Keyword.Render("/help"), ui.Muted.Render("Show help"))
	fmt.Fprintf(&b, "  %s  %s\n", ui.Keyword.Render("/quit"), ui.Muted.Render("Exit"))
	fmt.Fprintf(&b, "  %s  %s\n", ui.Keyword.Render("/clear"), ui.Muted.Render("Clear the transcript"))
	fmt.Fprintf(&b, "  %s  %s\n", ui.Keyword.Render("/docs"), ui.Muted.Render("List uploaded documents"))
	fmt.Fprintf(&b, "  %s  %s\n", ui.Keyword.Render("/upload <file>..."), ui.Muted.Render("Upload study material"))
	fmt.Fprintf(&b, "  %s  %s\n", ui.Keyword.Render("/remove <doc_id>"), ui.Muted.Render("Remove a document"))
	fmt.Fprintf(&b, "  %s  %s\n", ui.Keyword.Render("/use <doc_id>"), ui.Muted.Render("Focus questions on one document"))
	fmt.Fprintf(&b, "  %s  %s\n", ui.Keyword.Render("/mode [name]"), ui.Muted.Render("Pick a learning mode"))
	fmt.Fprintf(&b, "  %s  %s\n", ui.Keyword.Render("/summaries [n]"), ui.Muted.Render("Bullet summaries of your documents"))
	fmt.Fprintf(&b, "  %s  %s\n", ui.Keyword.Render("/explain /example /notes /quiz"), ui.Muted.Render("Quick study actions"))
	b.WriteString(ui.Dim("  Any other text is asked as a question. ctrl+v toggles the Vision Tutor."))
	return b.String()
}
