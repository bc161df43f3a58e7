package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"chatwrap/internal/render"
	"chatwrap/internal/search"
	"chatwrap/internal/store"
)

// loadPreviewCmd returns a tea.Cmd that renders the conversation preview
// asynchronously.
func loadPreviewCmd(db *store.DB, r search.Result, query string, width int) tea.Cmd {
	return func() tea.Msg {
		content, hitLine, err := render.RenderConversation(db, r.UploadID, render.Options{
			HitSeq:  r.Seq,
			Context: -1,
			Width:   width,
			Query:   query,
		})
		return previewRenderedMsg{
			uploadID: r.UploadID,
			seq:      r.Seq,
			content:  content,
			hitLine:  hitLine,
			err:      err,
		}
	}
}
