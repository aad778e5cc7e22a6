// Package markers is the live collectible-marker store consumed by the route
// engine.
//
// The store keeps markers in insertion order, filters them by enabled
// category, and notifies subscribers synchronously whenever a marker is
// removed or repositioned. Notifications run after the store lock is
// released, so subscribers may call back into the store.
package markers

import (
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/katalvlaran/lvroute/geom"
	"github.com/rs/zerolog"
)

var (
	// ErrNotFound is returned for an unknown marker id.
	ErrNotFound = errors.New("markers: marker not found")

	// ErrDuplicateID is returned when Put reuses an existing id.
	ErrDuplicateID = errors.New("markers: duplicate marker id")

	// ErrOutOfBounds is returned for positions outside the unit square.
	ErrOutOfBounds = errors.New("markers: position outside unit square")
)

// Marker is a collectible at a fixed normalized position.
type Marker struct {
	ID       string     `json:"id"`
	Pos      geom.Point `json:"pos"`
	Category string     `json:"category"`
}

// Store holds the live marker set.
type Store struct {
	mu       sync.RWMutex
	byID     map[string]Marker
	order    []string
	disabled map[string]bool

	onDelete []func(id string)
	onMove   []func(id string, p geom.Point)

	log zerolog.Logger
}

// NewStore creates an empty store with every category enabled.
func NewStore(log zerolog.Logger) *Store {
	return &Store{
		byID:     make(map[string]Marker),
		disabled: make(map[string]bool),
		log:      log.With().Str("component", "markers").Logger(),
	}
}

// Add creates a marker with a fresh id.
func (s *Store) Add(pos geom.Point, category string) (Marker, error) {
	m := Marker{ID: uuid.NewString(), Pos: pos, Category: category}
	if err := s.Put(m); err != nil {
		return Marker{}, err
	}
	return m, nil
}

// Put inserts a marker with a caller-supplied id (empty ids get a fresh one).
func (s *Store) Put(m Marker) error {
	if !m.Pos.Finite() || !m.Pos.InUnit() {
		return ErrOutOfBounds
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[m.ID]; ok {
		return ErrDuplicateID
	}
	s.byID[m.ID] = m
	s.order = append(s.order, m.ID)

	return nil
}

// Get returns the marker by id.
func (s *Store) Get(id string) (Marker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byID[id]
	return m, ok
}

// Lookup returns the live position of a marker regardless of category
// visibility.
func (s *Store) Lookup(id string) (geom.Point, bool) {
	m, ok := s.Get(id)
	return m.Pos, ok
}

// Len returns the number of stored markers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Move repositions a marker and notifies move subscribers.
func (s *Store) Move(id string, p geom.Point) error {
	if !p.Finite() || !p.InUnit() {
		return ErrOutOfBounds
	}

	s.mu.Lock()
	m, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	m.Pos = p
	s.byID[id] = m
	subs := slices.Clone(s.onMove)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(id, p)
	}

	return nil
}

// Remove deletes a marker and notifies delete subscribers before returning.
// It reports whether the marker existed.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	if _, ok := s.byID[id]; !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	subs := slices.Clone(s.onDelete)
	s.mu.Unlock()

	s.log.Debug().Str("marker", id).Int("subscribers", len(subs)).Msg("marker removed")
	for _, fn := range subs {
		fn(id)
	}

	return true
}

// SetCategoryEnabled toggles the visibility of a category.
func (s *Store) SetCategoryEnabled(category string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if enabled {
		delete(s.disabled, category)
	} else {
		s.disabled[category] = true
	}
}

// CategoryEnabled reports whether markers of category are visible.
func (s *Store) CategoryEnabled(category string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.disabled[category]
}

// Visible returns the markers of enabled categories in insertion order.
func (s *Store) Visible() []Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Marker, 0, len(s.order))
	for _, id := range s.order {
		m := s.byID[id]
		if s.disabled[m.Category] {
			continue
		}
		out = append(out, m)
	}

	return out
}

// All returns every marker in insertion order.
func (s *Store) All() []Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Marker, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}

	return out
}

// OnDelete registers fn to run whenever a marker is removed.
func (s *Store) OnDelete(fn func(id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDelete = append(s.onDelete, fn)
}

// OnMove registers fn to run whenever a marker is repositioned.
func (s *Store) OnMove(fn func(id string, p geom.Point)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onMove = append(s.onMove, fn)
}
