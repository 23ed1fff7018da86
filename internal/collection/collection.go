// Package collection reads and writes notes in a real Anki profile:
// the collection.anki2 SQLite database plus the collection.media
// directory next to it. It implements the note.Store and
// note.MediaStore boundaries used by the generation pipeline.
//
// Anki stores note fields in a single flds column joined by the 0x1f
// separator and describes note types and decks as JSON blobs in the
// col table. Writes mark the note dirty for sync (usn = -1) and
// recompute the sort field and field checksum the way Anki expects.
package collection

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/mitsuba/kaisetsu/internal/fault"
	"codeberg.org/mitsuba/kaisetsu/internal/note"
)

// fieldSeparator joins note fields in the notes.flds column.
const fieldSeparator = "\x1f"

// Config selects the collection to open.
type Config struct {
	// Path points at the collection.anki2 database file.
	Path string

	// Deck optionally restricts NoteIDs to notes with at least one
	// card in the named deck.
	Deck string
}

// Collection is a live connection to an Anki collection. A single
// Collection is meant to be reused for a whole batch run.
type Collection struct {
	db       *sql.DB
	mediaDir string
	models   map[int64]*noteModel
	deckID   int64 // 0 means no deck filter
}

// noteModel is one entry of the col.models JSON: a note type with its
// field names in ordinal order.
type noteModel struct {
	id     int64
	name   string
	fields []string
	sortf  int
}

// Open connects to the collection database at cfg.Path. The media
// directory is resolved as collection.media next to the database,
// matching the Anki profile layout.
func Open(cfg Config) (*Collection, error) {
	// The sqlite3 driver would happily create an empty database at a
	// mistyped path, so check existence up front.
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, &fault.ConfigurationError{
			Setting: "collection",
			Message: fmt.Sprintf("collection not found at %s", cfg.Path),
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection database: %w", err)
	}

	c := &Collection{
		db:       db,
		mediaDir: filepath.Join(filepath.Dir(cfg.Path), "collection.media"),
	}

	if err := c.loadModels(); err != nil {
		db.Close()
		return nil, err
	}

	if cfg.Deck != "" {
		if err := c.resolveDeck(cfg.Deck); err != nil {
			db.Close()
			return nil, err
		}
	}

	return c, nil
}

// Close releases the database connection.
func (c *Collection) Close() error {
	return c.db.Close()
}

// MediaDir returns the collection.media directory path.
func (c *Collection) MediaDir() string {
	return c.mediaDir
}

// loadModels parses the col.models JSON into noteModel entries.
func (c *Collection) loadModels() error {
	var modelsJSON string
	if err := c.db.QueryRow(`SELECT models FROM col`).Scan(&modelsJSON); err != nil {
		return fmt.Errorf("failed to read note types from collection: %w", err)
	}

	var raw map[string]struct {
		Name  string `json:"name"`
		Sortf int    `json:"sortf"`
		Flds  []struct {
			Name string `json:"name"`
			Ord  int    `json:"ord"`
		} `json:"flds"`
	}
	if err := json.Unmarshal([]byte(modelsJSON), &raw); err != nil {
		return fmt.Errorf("failed to parse note types: %w", err)
	}

	c.models = make(map[int64]*noteModel, len(raw))
	for idStr, m := range raw {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return fmt.Errorf("failed to parse note type ID %q: %w", idStr, err)
		}

		fields := make([]string, len(m.Flds))
		for _, f := range m.Flds {
			if f.Ord < 0 || f.Ord >= len(fields) {
				return fmt.Errorf("note type %q field %q has ordinal %d out of range", m.Name, f.Name, f.Ord)
			}
			fields[f.Ord] = f.Name
		}

		c.models[id] = &noteModel{id: id, name: m.Name, fields: fields, sortf: m.Sortf}
	}

	return nil
}

// resolveDeck looks up the deck ID for the given deck name in the
// col.decks JSON.
func (c *Collection) resolveDeck(name string) error {
	var decksJSON string
	if err := c.db.QueryRow(`SELECT decks FROM col`).Scan(&decksJSON); err != nil {
		return fmt.Errorf("failed to read decks from collection: %w", err)
	}

	var raw map[string]struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(decksJSON), &raw); err != nil {
		return fmt.Errorf("failed to parse decks: %w", err)
	}

	names := make([]string, 0, len(raw))
	for idStr, d := range raw {
		if d.Name == name {
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				return fmt.Errorf("failed to parse deck ID %q: %w", idStr, err)
			}
			c.deckID = id
			return nil
		}
		names = append(names, d.Name)
	}

	sort.Strings(names)
	return &fault.ConfigurationError{
		Setting: "deck",
		Message: fmt.Sprintf("deck %q not found, collection has: %s", name, strings.Join(names, ", ")),
	}
}

// modelByName finds a note type by its display name.
func (c *Collection) modelByName(name string) (*noteModel, error) {
	names := make([]string, 0, len(c.models))
	for _, m := range c.models {
		if m.name == name {
			return m, nil
		}
		names = append(names, m.name)
	}

	sort.Strings(names)
	return nil, &fault.ConfigurationError{
		Setting: "note_type",
		Message: fmt.Sprintf("note type %q not found, collection has: %s", name, strings.Join(names, ", ")),
	}
}

// NoteIDs lists the notes of the given note type in ID order,
// optionally limited to the deck configured at Open time.
func (c *Collection) NoteIDs(ctx context.Context, noteType string) ([]int64, error) {
	model, err := c.modelByName(noteType)
	if err != nil {
		return nil, err
	}

	query := `SELECT id FROM notes WHERE mid = ? ORDER BY id`
	args := []interface{}{model.id}
	if c.deckID != 0 {
		query = `SELECT DISTINCT n.id FROM notes n JOIN cards c ON c.nid = n.id
			WHERE n.mid = ? AND c.did = ? ORDER BY n.id`
		args = append(args, c.deckID)
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan note ID: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Note loads a note and maps its fields by name using the note type
// definition from the collection.
func (c *Collection) Note(ctx context.Context, id int64) (*note.Note, error) {
	var mid int64
	var flds string
	err := c.db.QueryRowContext(ctx, `SELECT mid, flds FROM notes WHERE id = ?`, id).Scan(&mid, &flds)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read note %d: %w", id, err)
	}

	model, ok := c.models[mid]
	if !ok {
		return nil, fmt.Errorf("note %d references unknown note type %d", id, mid)
	}

	values := strings.Split(flds, fieldSeparator)
	fields := make(map[string]string, len(model.fields))
	for i, name := range model.fields {
		if i < len(values) {
			fields[name] = values[i]
		} else {
			fields[name] = ""
		}
	}

	return &note.Note{ID: id, Type: model.name, Fields: fields}, nil
}

// UpdateFields writes the given fields back to the note and marks it
// dirty for sync. The sort field and checksum are recomputed so Anki
// picks the change up.
func (c *Collection) UpdateFields(ctx context.Context, id int64, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}

	var mid int64
	var flds string
	err := c.db.QueryRowContext(ctx, `SELECT mid, flds FROM notes WHERE id = ?`, id).Scan(&mid, &flds)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("note %d not found", id)
	}
	if err != nil {
		return fmt.Errorf("failed to read note %d: %w", id, err)
	}

	model, ok := c.models[mid]
	if !ok {
		return fmt.Errorf("note %d references unknown note type %d", id, mid)
	}

	values := strings.Split(flds, fieldSeparator)
	if len(values) < len(model.fields) {
		padded := make([]string, len(model.fields))
		copy(padded, values)
		values = padded
	}

	for name, value := range fields {
		ord := -1
		for i, fieldName := range model.fields {
			if fieldName == name {
				ord = i
				break
			}
		}
		if ord == -1 {
			return fmt.Errorf("note type %q has no field %q", model.name, name)
		}
		values[ord] = value
	}

	sortValue := ""
	if model.sortf < len(values) {
		sortValue = stripHTML(values[model.sortf])
	}

	_, err = c.db.ExecContext(ctx,
		`UPDATE notes SET flds = ?, sfld = ?, csum = ?, mod = ?, usn = -1 WHERE id = ?`,
		strings.Join(values, fieldSeparator),
		sortValue,
		fieldChecksum(values[0]),
		time.Now().Unix(),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update note %d: %w", id, err)
	}

	return nil
}

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// stripHTML reduces field HTML to plain text the way Anki does when
// it derives the sort field.
func stripHTML(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}

// fieldChecksum is the integer value of the first 8 hex digits of the
// SHA1 of the stripped first field. Anki uses it for duplicate
// detection, so the computation has to match Anki's exactly.
func fieldChecksum(field string) int64 {
	sum := sha1.Sum([]byte(stripHTML(field)))
	v, _ := strconv.ParseInt(hex.EncodeToString(sum[:])[:8], 16, 64)
	return v
}
