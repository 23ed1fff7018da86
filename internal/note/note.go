// Package note defines the boundary between the generation pipeline
// and whatever holds the actual flashcards. The pipeline only ever
// reads fields by name, writes fields by name and stores media blobs,
// so the interfaces here stay deliberately narrow.
package note

import "context"

// Note is a flashcard record as seen through the boundary: an ID, the
// note type name and named fields. Field content may contain HTML.
type Note struct {
	ID     int64
	Type   string
	Fields map[string]string
}

// Field returns the named field content and whether the note has the
// field at all. An existing but empty field yields ("", true).
func (n *Note) Field(name string) (string, bool) {
	v, ok := n.Fields[name]
	return v, ok
}

// Store reads and writes notes.
type Store interface {
	// NoteIDs enumerates the notes of the given note type.
	NoteIDs(ctx context.Context, noteType string) ([]int64, error)
	// Note loads a single note by ID.
	Note(ctx context.Context, id int64) (*Note, error)
	// UpdateFields writes the given fields back to the note. Fields
	// not named in the map are left untouched.
	UpdateFields(ctx context.Context, id int64, fields map[string]string) error
}

// MediaStore persists media payloads next to the notes.
type MediaStore interface {
	// AddMedia stores data under name and returns the name actually
	// used, which may differ when a collision had to be avoided.
	AddMedia(name string, data []byte) (string, error)
	// ReadMedia returns the content of a stored media file.
	ReadMedia(name string) ([]byte, error)
}
