package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
)

// markdownRenderers caches one glamour renderer per wrap width. Building a
// renderer parses a full style sheet, and the view re-renders on every
// spinner tick.
//
//nolint:gochecknoglobals // Process-wide renderer cache.
var markdownRenderers = struct {
	sync.Mutex
	byWidth map[int]*glamour.TermRenderer
}{byWidth: make(map[int]*glamour.TermRenderer)}

func markdownRenderer(width int) (*glamour.TermRenderer, error) {
	markdownRenderers.Lock()
	defer markdownRenderers.Unlock()

	if r, ok := markdownRenderers.byWidth[width]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	markdownRenderers.byWidth[width] = r
	return r, nil
}

// renderSummary renders the analysis summary at width. With markdown off, or
// if glamour fails, the text is word-wrapped as-is.
func renderSummary(summary string, width int, markdown bool) string {
	if width < minCardWidth {
		width = minCardWidth
	}
	if markdown {
		if r, err := markdownRenderer(width); err == nil {
			if out, err := r.Render(summary); err == nil {
				return strings.Trim(out, "\n")
			}
		}
	}
	return wordwrap.String(strings.TrimSpace(summary), width)
}
