package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"seqtag/internal/adapters/tui/styles"
	"seqtag/internal/domain"
)

// screen assembles a full view: title, a subtitle line (plain text or the
// relation tabs), body lines, then the footer with status message and keys.
type screen struct {
	b strings.Builder
}

func newScreen(title, subtitle string) *screen {
	s := &screen{}
	s.b.WriteString(styles.Title.Render(title))
	s.b.WriteString("\n\n")
	if subtitle != "" {
		s.b.WriteString(subtitle)
		s.b.WriteString("\n\n")
	}
	return s
}

func (s *screen) line(text string) {
	s.b.WriteString(text)
	s.b.WriteString("\n")
}

func (s *screen) blank() {
	s.b.WriteString("\n")
}

func (s *screen) muted(text string) {
	s.line(styles.MutedText.Render(text))
}

// footer closes the screen and wraps it in the app style
func (s *screen) footer(message string, isErr bool, bindings ...key.Binding) string {
	s.blank()
	if message != "" {
		s.b.WriteString(renderMessage(message, isErr))
		s.b.WriteString("\n\n")
	}
	s.b.WriteString(renderHelpLine(bindings...))
	return styles.App.Render(s.b.String())
}

func renderMessage(message string, isError bool) string {
	if isError {
		return styles.ErrorMsg.Render(message)
	}
	return styles.Success.Render(message)
}

func renderHelpLine(bindings ...key.Binding) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		help := b.Help()
		parts[i] = styles.HelpKey.Render(help.Key) + " " + styles.HelpDesc.Render(help.Desc)
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}

// renderRecordRow draws "ID  Name  info". prefix sits between the cursor
// marker and the ID and is not highlighted with the row.
func renderRecordRow(r domain.Record, atCursor bool, prefix string) string {
	marker := "  "
	if atCursor {
		marker = "> "
	}
	line := r.ID
	if r.Name != "" && r.Name != r.ID {
		line += "  " + r.Name
	}
	if atCursor {
		line = styles.RowSelected.Render(line)
	}
	if r.Info != "" {
		line += "  " + styles.RowInfo.Render(r.Info)
	}
	return marker + prefix + line
}

// renderCandidateRow draws one editor row. Items whose last save failed
// carry a "!" in the gutter until the next commit.
func renderCandidateRow(r domain.Record, atCursor, checked, failed bool) string {
	check := styles.CheckOff
	if checked {
		check = styles.RowChecked.Render(styles.CheckOn)
	}
	gutter := "  "
	if failed {
		gutter = styles.RowFailed.Render("! ")
	}
	return gutter + renderRecordRow(r, atCursor, check)
}

func renderTabs(kinds []domain.RelationKind, active int) string {
	tabs := make([]string, len(kinds))
	for i, k := range kinds {
		if i == active {
			tabs[i] = styles.TabActive.Foreground(styles.TabColor(k.Title())).Render(k.Title())
		} else {
			tabs[i] = styles.TabInactive.Render(k.Title())
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderSelectionStatus is the status bar under the candidate list
func renderSelectionStatus(selected, total int, p *Paginator, hasAnchor bool) string {
	status := fmt.Sprintf("%d/%d selected", selected, total)
	if p.TotalPages() > 1 {
		status += fmt.Sprintf("  page %d/%d", p.CurrentPage(), p.TotalPages())
	}
	if hasAnchor {
		status += "  anchor set"
	}
	return styles.StatusBar.Render(status)
}

// renderChanges previews the unsaved plan. Without a valid snapshot the
// stored links are unknown, so no counts are shown.
func renderChanges(plan domain.Plan[string], snapshotValid bool) string {
	if !snapshotValid {
		return styles.ErrorMsg.Render("stored links unknown, r to re-read")
	}
	if plan.Empty() {
		return ""
	}
	return styles.Pending.Render(fmt.Sprintf("+%d -%d unsaved", plan.ToAdd.Len(), plan.ToRemove.Len()))
}

func renderProgress(spin string, done, total int) string {
	return spin + styles.Pending.Render(fmt.Sprintf(" saving %d/%d", done, total))
}
