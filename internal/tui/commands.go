package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"edumentor/internal/model"
	"edumentor/internal/tui/ui"
)

// processInputCmd runs one submitted line to completion off the UI loop.
// Chat output arrives through store updates; workDoneMsg carries only
// control flow and command-local output.
func (m *studyModel) processInputCmd(input string) tea.Cmd {
	a := m.app
	ctx := m.ctx
	return func() tea.Msg {
		if !strings.HasPrefix(input, "/") {
			a.AskQuestion(ctx, input)
			return workDoneMsg{}
		}

		fields := strings.Fields(input)
		cmd, args := fields[0], fields[1:]
		switch cmd {
		case "/quit", "/exit":
			return workDoneMsg{quit: true}
		case "/help":
			return workDoneMsg{output: formatHelp()}
		case "/clear":
			return workDoneMsg{clear: true}
		case "/docs":
			return workDoneMsg{output: renderDocList(a.Store.Snapshot().Documents, a.Store.Snapshot().ActiveDocument)}
		case "/upload":
			if len(args) == 0 {
				return workDoneMsg{err: fmt.Errorf("usage: /upload <file>...")}
			}
			added, err := a.Upload(ctx, args)
			if err != nil {
				return workDoneMsg{err: err}
			}
			names := make([]string, len(added))
			for i, d := range added {
				names[i] = d.Name
			}
			return workDoneMsg{output: ui.Green.Render("Uploaded: ") + strings.Join(names, ", ")}
		case "/remove":
			if len(args) != 1 {
				return workDoneMsg{err: fmt.Errorf("usage: /remove <doc_id>")}
			}
			if err := a.Remove(ctx, args[0]); err != nil {
				return workDoneMsg{err: err}
			}
			return workDoneMsg{output: ui.Dim("Removed " + args[0] + ".")}
		case "/use":
			if len(args) != 1 {
				return workDoneMsg{err: fmt.Errorf("usage: /use <doc_id>")}
			}
			doc := model.Document{ID: args[0]}
			if err := a.Store.SetActiveDocument(&doc); err != nil {
				return workDoneMsg{err: err}
			}
			return workDoneMsg{output: ui.Dim("Questions now focus on " + args[0] + ".")}
		case "/mode":
			if len(args) == 0 {
				return workDoneMsg{output: renderModeList(a.Store.Snapshot().ActiveMode)}
			}
			mode := model.Mode(strings.ToLower(args[0]))
			if err := a.SelectMode(ctx, mode); err != nil {
				return workDoneMsg{err: err}
			}
			return workDoneMsg{}
		case "/explain", "/example", "/notes", "/quiz":
			a.AskQuestion(ctx, quickActionQuestion(cmd, strings.Join(args, " ")))
			return workDoneMsg{}
		case "/summaries":
			maxItems := 0
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return workDoneMsg{err: fmt.Errorf("usage: /summaries [count]")}
				}
				maxItems = n
			}
			a.Summaries(ctx, maxItems)
			return workDoneMsg{}
		default:
			return workDoneMsg{err: fmt.Errorf("unknown command %s, try /help", cmd)}
		}
	}
}

// quickActionQuestion expands a shortcut into the full question it stands
// for, optionally narrowed to a topic the user typed after it.
func quickActionQuestion(cmd, topic string) string {
	var q string
	switch cmd {
	case "/explain":
		q = "Explain this again in simpler terms"
	case "/example":
		q = "Give me a concrete example"
	case "/notes":
		q = "Generate concise study notes"
	case "/quiz":
		q = "Create a short quiz to test my understanding"
	}
	if topic = strings.TrimSpace(topic); topic != "" {
		q += " about " + topic
	}
	return q + "."
}

func renderDocList(docs []model.Document, active *model.Document) string {
	if len(docs) == 0 {
		return ui.Dim("(no documents uploaded)")
	}
	var b strings.Builder
	for _, doc := range docs {
		marker := "  "
		if active != nil && active.ID == doc.ID {
			marker = ui.Brand.Render("* ")
		}
		fmt.Fprintf(&b, "%s%s %s %s\n", marker, ui.Source(doc.ID), doc.Name, ui.Dim(docDetail(doc)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderModeList(active model.Mode) string {
	var b strings.Builder
	b.WriteString(ui.Brand.Render("Learning modes:\n"))
	for _, mode := range model.Modes {
		marker := "  "
		if mode == active {
			marker = ui.Brand.Render("* ")
		}
		fmt.Fprintf(&b, "%s%s  %s\n", marker, ui.Keyword.Render(string(mode)), ui.Muted.Render(mode.Description()))
	}
	b.WriteString(ui.Dim("  /mode <name> starts one; picking it again turns it off."))
	return b.String()
}
