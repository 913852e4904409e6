package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"codeberg.org/snonux/kotoba/internal"
)

var (
	// ErrClipNotFound is returned for an unknown clip id
	ErrClipNotFound = errors.New("audio clip not found")

	// ErrClipExpired is returned for a clip past its expiry
	ErrClipExpired = errors.New("audio clip expired")
)

// Clip is a synthesised audio file served for a limited time
type Clip struct {
	ID        string
	Path      string
	Text      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store keeps synthesised clips on disk and forgets them after a TTL
type Store struct {
	dir  string
	ttl  time.Duration
	now  func() time.Time
	mu   sync.RWMutex
	clip map[string]*Clip
}

// NewStore creates a clip store rooted at dir
func NewStore(dir string, ttl time.Duration) (*Store, error) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}

	return &Store{
		dir:  dir,
		ttl:  ttl,
		now:  time.Now,
		clip: make(map[string]*Clip),
	}, nil
}

// Dir returns the directory clips are written to
func (s *Store) Dir() string {
	return s.dir
}

// Reserve allocates an id and a file path for a clip. The file is named
// after the id, so every reservation gets its own path. The clip is not
// served until Commit is called.
func (s *Store) Reserve(ext string) (id, path string) {
	id = uuid.NewString()
	path = filepath.Join(s.dir, internal.ClipFileName(id, ext))
	return id, path
}

// Commit makes a written clip available under id until the TTL passes
func (s *Store) Commit(id, path, text string) (*Clip, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to stat clip: %w", err)
	}

	now := s.now()
	c := &Clip{
		ID:        id,
		Path:      path,
		Text:      text,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.clip[id] = c
	s.mu.Unlock()

	return c, nil
}

// Get returns a copy of a live clip
func (s *Store) Get(id string) (*Clip, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clip[id]
	if !ok {
		return nil, ErrClipNotFound
	}

	if s.now().After(c.ExpiresAt) {
		return nil, ErrClipExpired
	}

	clip := *c
	return &clip, nil
}

// Sweep deletes clips that expired before now and returns how many were removed.
// Expired clips stay known so that Get keeps answering ErrClipExpired for them
// until a full TTL has passed after expiry.
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, c := range s.clip {
		if !now.After(c.ExpiresAt) {
			continue
		}

		if c.Path != "" {
			if err := os.Remove(c.Path); err != nil && !os.IsNotExist(err) {
				fmt.Fprintf(os.Stderr, "Warning: failed to delete clip %s: %v\n", c.Path, err)
			}
			c.Path = ""
			removed++
		}

		if now.After(c.ExpiresAt.Add(s.ttl)) {
			delete(s.clip, id)
		}
	}

	return removed
}

// Run sweeps expired clips every interval until ctx is done
func (s *Store) Run(ctx context.Context, every time.Duration) {
	if every <= 0 {
		every = time.Minute
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 {
				fmt.Printf("Removed %d expired audio clips\n", n)
			}
		}
	}
}

// Len returns the number of known clips, live or expired
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clip)
}
