package keep

import (
	"fmt"
	"strings"
	"time"

	keep "google.golang.org/api/keep/v1"
)

// Sharing roles accepted by ShareNote.
const (
	RoleReader = "READER"
	RoleWriter = "WRITER"
)

// UntitledNote is shown for notes without a title.
const UntitledNote = "Untitled Note"

// Note represents a Google Keep note
type Note struct {
	// Name is the resource name, "notes/<id>". It is the note's ID for all
	// other calls.
	Name       string
	Title      string
	Text       string
	Trashed    bool
	UpdateTime time.Time
}

// DisplayTitle returns the title or UntitledNote.
func (n Note) DisplayTitle() string {
	if n.Title == "" {
		return UntitledNote
	}
	return n.Title
}

// Permission is one grant on a note.
type Permission struct {
	Name  string
	Email string
	Role  string
}

// NoteName accepts a bare ID or a full resource name and returns the
// resource name.
func NoteName(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || strings.HasPrefix(id, "notes/") {
		return id
	}
	return "notes/" + id
}

// NormalizeRole upper-cases role, defaulting to RoleWriter, and rejects
// anything but READER and WRITER.
func NormalizeRole(role string) (string, error) {
	role = strings.ToUpper(strings.TrimSpace(role))
	switch role {
	case "":
		return RoleWriter, nil
	case RoleReader, RoleWriter:
		return role, nil
	default:
		return "", fmt.Errorf("invalid role %q: must be READER or WRITER", role)
	}
}

func toNote(n *keep.Note) Note {
	if n == nil {
		return Note{}
	}
	note := Note{
		Name:    n.Name,
		Title:   n.Title,
		Trashed: n.Trashed,
		Text:    bodyText(n.Body),
	}
	if n.UpdateTime != "" {
		if t, err := time.Parse(time.RFC3339, n.UpdateTime); err == nil {
			note.UpdateTime = t
		}
	}
	return note
}

// bodyText renders a text body as is and a list body as checkbox lines.
func bodyText(s *keep.Section) string {
	if s == nil {
		return ""
	}
	if s.Text != nil {
		return s.Text.Text
	}
	if s.List == nil {
		return ""
	}
	var b strings.Builder
	var walk func(items []*keep.ListItem, depth int)
	walk = func(items []*keep.ListItem, depth int) {
		for _, item := range items {
			box := "[ ]"
			if item.Checked {
				box = "[x]"
			}
			text := ""
			if item.Text != nil {
				text = item.Text.Text
			}
			fmt.Fprintf(&b, "%s- %s %s\n", strings.Repeat("  ", depth), box, text)
			walk(item.ChildListItems, depth+1)
		}
	}
	walk(s.List.ListItems, 0)
	return strings.TrimRight(b.String(), "\n")
}
