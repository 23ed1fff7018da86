package note

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-memory Store and MediaStore. Tests use it to run the
// full pipeline without a collection file on disk.
type Memory struct {
	mu    sync.Mutex
	notes map[int64]*Note
	media map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{
		notes: make(map[int64]*Note),
		media: make(map[string][]byte),
	}
}

// Add seeds the store with a note, replacing any existing note with
// the same ID.
func (m *Memory) Add(n *Note) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes[n.ID] = cloneNote(n)
}

func (m *Memory) NoteIDs(ctx context.Context, noteType string) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []int64
	for id, n := range m.notes {
		if n.Type == noteType {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *Memory) Note(ctx context.Context, id int64) (*Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok {
		return nil, fmt.Errorf("note %d not found", id)
	}
	return cloneNote(n), nil
}

func (m *Memory) UpdateFields(ctx context.Context, id int64, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok {
		return fmt.Errorf("note %d not found", id)
	}
	for name, value := range fields {
		if _, exists := n.Fields[name]; !exists {
			return fmt.Errorf("note %d has no field %q", id, name)
		}
		n.Fields[name] = value
	}
	return nil
}

func (m *Memory) AddMedia(name string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := name
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		if _, taken := m.media[stored]; !taken {
			break
		}
		stored = fmt.Sprintf("%s_%d%s", base, i, ext)
	}
	m.media[stored] = append([]byte(nil), data...)
	return stored, nil
}

func (m *Memory) ReadMedia(name string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.media[name]
	if !ok {
		return nil, fmt.Errorf("media file %q not found", name)
	}
	return append([]byte(nil), data...), nil
}

// MediaNames lists the stored media files in sorted order.
func (m *Memory) MediaNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.media))
	for name := range m.media {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func cloneNote(n *Note) *Note {
	fields := make(map[string]string, len(n.Fields))
	for k, v := range n.Fields {
		fields[k] = v
	}
	return &Note{ID: n.ID, Type: n.Type, Fields: fields}
}
