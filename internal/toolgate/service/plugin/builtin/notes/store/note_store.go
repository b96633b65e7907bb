package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	"github.com/kiosk404/toolgate/pkg/utils/json"
)

// ErrNoteNotFound is returned when a note title is unknown.
var ErrNoteNotFound = errors.New("note not found")

// Note is a titled piece of text persisted by the notes plugin.
type Note struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteStore persists notes in BoltDB, keyed by title.
type NoteStore struct {
	boltDB *bolt.DB
}

// NewNoteStore creates a new NoteStore instance.
func NewNoteStore(boltDB *DB) *NoteStore {
	return &NoteStore{boltDB: boltDB.Bolt()}
}

// Put creates or replaces a note. CreatedAt is kept from an existing note.
func (s *NoteStore) Put(_ context.Context, note *Note) error {
	return s.boltDB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotes)
		now := time.Now()
		note.UpdatedAt = now
		note.CreatedAt = now
		if prev := b.Get([]byte(note.Title)); prev != nil {
			var old Note
			if err := json.Unmarshal(prev, &old); err == nil {
				note.CreatedAt = old.CreatedAt
			}
		}
		data, err := json.Marshal(note)
		if err != nil {
			return fmt.Errorf("failed to marshal note: %w", err)
		}
		return b.Put([]byte(note.Title), data)
	})
}

// Get returns the note with the given title.
func (s *NoteStore) Get(_ context.Context, title string) (*Note, error) {
	var note Note
	err := s.boltDB.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketNotes).Get([]byte(title))
		if data == nil {
			return ErrNoteNotFound
		}
		return json.Unmarshal(data, &note)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get note %q: %w", title, err)
	}
	return &note, nil
}

// Delete removes a note. Deleting an unknown title returns ErrNoteNotFound.
func (s *NoteStore) Delete(_ context.Context, title string) error {
	return s.boltDB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketNotes)
		if b.Get([]byte(title)) == nil {
			return fmt.Errorf("failed to delete note %q: %w", title, ErrNoteNotFound)
		}
		return b.Delete([]byte(title))
	})
}

// List returns the notes whose title starts with prefix, ordered by title.
// A limit of zero or less returns all matches.
func (s *NoteStore) List(_ context.Context, prefix string, limit int) ([]*Note, error) {
	var notes []*Note
	err := s.boltDB.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketNotes).Cursor()
		p := []byte(prefix)
		for k, v := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, v = c.Next() {
			var note Note
			if err := json.Unmarshal(v, &note); err != nil {
				return fmt.Errorf("failed to unmarshal note: %w", err)
			}
			notes = append(notes, &note)
			if limit > 0 && len(notes) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return notes, nil
}
