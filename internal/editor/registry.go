package editor

import (
	"sync"

	"github.com/google/uuid"
)

// File is an image payload waiting to be uploaded.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size is the payload length in bytes.
func (f File) Size() int {
	return len(f.Data)
}

// PendingUpload pairs a staged file with its temp id.
type PendingUpload struct {
	TempID string
	File   File
}

// Registry holds staged image bytes keyed by temp id until save time.
// It is safe for concurrent use. Temp ids are never reused, even after
// their entry has been dropped.
type Registry struct {
	mu      sync.Mutex
	newID   func() string
	entries map[string]File
	order   []string
	issued  map[string]struct{}
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIDGenerator replaces the uuid-based temp id generator.
func WithIDGenerator(fn func() string) RegistryOption {
	return func(r *Registry) {
		r.newID = fn
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		newID:   uuid.NewString,
		entries: make(map[string]File),
		issued:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stage stores f under a fresh temp id and returns the id.
func (r *Registry) Stage(f File) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for range 8 {
		id := r.newID()
		if id == "" {
			continue
		}
		if _, used := r.issued[id]; used {
			continue
		}
		r.issued[id] = struct{}{}
		r.entries[id] = f
		r.order = append(r.order, id)
		return id
	}
	panic("editor: temp id generator keeps returning used ids")
}

// Get returns the file staged under tempID.
func (r *Registry) Get(tempID string) (File, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.entries[tempID]
	return f, ok
}

// Drop removes tempID. Dropping an absent id does nothing.
func (r *Registry) Drop(tempID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[tempID]; !ok {
		return
	}
	delete(r.entries, tempID)
	for i, id := range r.order {
		if id == tempID {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
}

// List returns every staged entry in staging order.
func (r *Registry) List() []PendingUpload {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PendingUpload, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, PendingUpload{TempID: id, File: r.entries[id]})
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
