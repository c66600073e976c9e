// Package phrasetest provides an in-memory phrase.Store for tests.
package phrasetest

import (
	"context"
	"sync"
	"time"

	"github.com/bowerhall/mitek/internal/phrase"
)

// Store keeps phrases in memory. Err, when set, is returned by every call.
type Store struct {
	mu      sync.Mutex
	nextID  int64
	phrases []phrase.Phrase

	Err     error
	Deletes int
	Lists   int
}

func New() *Store {
	return &Store{}
}

// Seed inserts texts into c, ignoring Err.
func (s *Store) Seed(c phrase.Category, texts ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, text := range texts {
		s.nextID++
		s.phrases = append(s.phrases, phrase.Phrase{ID: s.nextID, Category: c, Text: text, CreatedAt: time.Now()})
	}
}

func (s *Store) Insert(ctx context.Context, c phrase.Category, text string) (phrase.Phrase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return phrase.Phrase{}, s.Err
	}

	s.nextID++
	p := phrase.Phrase{ID: s.nextID, Category: c, Text: text, CreatedAt: time.Now()}
	s.phrases = append(s.phrases, p)

	return p, nil
}

func (s *Store) MostRecent(ctx context.Context, c phrase.Category) (*phrase.Phrase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}

	for i := len(s.phrases) - 1; i >= 0; i-- {
		if s.phrases[i].Category == c {
			p := s.phrases[i]
			return &p, nil
		}
	}

	return nil, nil
}

func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}

	s.Deletes++
	for i, p := range s.phrases {
		if p.ID == id {
			s.phrases = append(s.phrases[:i], s.phrases[i+1:]...)
			break
		}
	}

	return nil
}

func (s *Store) ListAll(ctx context.Context, c phrase.Category) ([]phrase.Phrase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}

	s.Lists++
	var out []phrase.Phrase
	for _, p := range s.phrases {
		if p.Category == c {
			out = append(out, p)
		}
	}

	return out, nil
}

// Texts returns the phrase texts in c, oldest first.
func (s *Store) Texts(c phrase.Category) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, p := range s.phrases {
		if p.Category == c {
			out = append(out, p.Text)
		}
	}

	return out
}
