package library

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dgallion1/rulebook/internal/doctree"
)

// DefaultID names the document loaded from the configured source.
const DefaultID = "default"

// Entry is a parsed document held by the library.
type Entry struct {
	ID        string
	Title     string
	Source    string
	Document  *doctree.Document
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EntrySummary is a JSON-safe description of an entry.
type EntrySummary struct {
	ID        string    `json:"doc_id"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Sections  int       `json:"sections"`
	Roots     []string  `json:"roots"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary describes the entry without exposing the document.
func (e *Entry) Summary() EntrySummary {
	roots := []string{}
	for _, r := range e.Document.Roots() {
		roots = append(roots, r.Idx)
	}
	return EntrySummary{
		ID:        e.ID,
		Title:     e.Title,
		Source:    e.Source,
		Sections:  e.Document.Len(),
		Roots:     roots,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// Store is a thread-safe in-memory document registry with TTL eviction.
// The default entry never expires.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry
	ttl     time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]*Entry),
		ttl:     ttl,
	}
}

// Put stores e, replacing any entry with the same ID. A replacement keeps
// the original CreatedAt.
func (s *Store) Put(e *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = e.UpdatedAt
		if old, ok := s.entries[e.ID]; ok {
			e.CreatedAt = old.CreatedAt
		}
	}
	s.entries[e.ID] = e
}

func (s *Store) Get(id string) *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[id]
}

// Delete removes an entry and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	delete(s.entries, id)
	return ok
}

// List returns all entries ordered by ID.
func (s *Store) List() []*Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Cleanup removes expired entries.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, e := range s.entries {
		if id == DefaultID {
			continue
		}
		if now.Sub(e.UpdatedAt) > s.ttl {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
