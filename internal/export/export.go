// Package export renders a note into one of the downloadable formats. The
// API server and the offline client share it so an offline export is
// byte-identical with what the server would have produced.
package export

import (
	"strings"

	"github.com/bytedance/sonic"

	"github.com/haierkeys/offline-note-sync-service/internal/dto"
	"github.com/haierkeys/offline-note-sync-service/pkg/code"
	"github.com/haierkeys/offline-note-sync-service/pkg/htmlconv"
	"github.com/haierkeys/offline-note-sync-service/pkg/util"
)

const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Document is a rendered export ready to be written as an attachment.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Render converts the note into the requested format. Markdown injects the
// title as a level-one heading above the converted content; text strips all
// markup; json is the full note snapshot with tags.
func Render(note *dto.NoteDTO, format string) (*Document, error) {
	name := util.SanitizeFilename(note.Title)

	switch format {
	case FormatMarkdown:
		body := "# " + note.Title
		if content := htmlconv.ToMarkdown(note.Content); content != "" {
			body += "\n\n" + content
		}
		return &Document{
			Filename:    name + ".md",
			ContentType: "text/markdown; charset=utf-8",
			Body:        []byte(body),
		}, nil

	case FormatText:
		body := note.Title
		if content := htmlconv.ToText(note.Content); content != "" {
			body += "\n\n" + content
		}
		return &Document{
			Filename:    name + ".txt",
			ContentType: "text/plain; charset=utf-8",
			Body:        []byte(body),
		}, nil

	case FormatJSON:
		body, err := sonic.MarshalIndent(note, "", "  ")
		if err != nil {
			return nil, err
		}
		return &Document{
			Filename:    name + ".json",
			ContentType: "application/json; charset=utf-8",
			Body:        body,
		}, nil

	default:
		return nil, code.ErrorInvalidExportFormat.WithDetails(strings.TrimSpace(format))
	}
}
