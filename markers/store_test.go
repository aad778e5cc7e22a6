package markers

import (
	"sync"
	"testing"

	"github.com/katalvlaran/lvroute/geom"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store { return NewStore(zerolog.Nop()) }

func TestStore_AddAndGet(t *testing.T) {
	s := newTestStore()

	m, err := s.Add(geom.Pt(0.2, 0.3), "chest")
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)

	got, ok := s.Get(m.ID)
	require.True(t, ok)
	assert.Equal(t, m, got)

	p, ok := s.Lookup(m.ID)
	require.True(t, ok)
	assert.Equal(t, geom.Pt(0.2, 0.3), p)
	assert.Equal(t, 1, s.Len())
}

func TestStore_PutRejects(t *testing.T) {
	s := newTestStore()

	require.NoError(t, s.Put(Marker{ID: "a", Pos: geom.Pt(0.5, 0.5)}))
	assert.ErrorIs(t, s.Put(Marker{ID: "a", Pos: geom.Pt(0.1, 0.1)}), ErrDuplicateID)
	assert.ErrorIs(t, s.Put(Marker{ID: "b", Pos: geom.Pt(1.5, 0.1)}), ErrOutOfBounds)
}

func TestStore_PutAssignsMissingID(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.Put(Marker{Pos: geom.Pt(0.5, 0.5)}))

	all := s.All()
	require.Len(t, all, 1)
	assert.NotEmpty(t, all[0].ID)
}

func TestStore_RemoveNotifies(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.Put(Marker{ID: "a", Pos: geom.Pt(0.1, 0.1)}))
	require.NoError(t, s.Put(Marker{ID: "b", Pos: geom.Pt(0.2, 0.2)}))

	var deleted []string
	s.OnDelete(func(id string) {
		// Subscribers may read the store while being notified.
		_, still := s.Get(id)
		assert.False(t, still)
		deleted = append(deleted, id)
	})

	assert.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"), "second removal is a no-op")
	assert.Equal(t, []string{"a"}, deleted)
	assert.Equal(t, []string{"b"}, ids(s.All()))
}

func TestStore_MoveNotifies(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.Put(Marker{ID: "a", Pos: geom.Pt(0.1, 0.1)}))

	var moved geom.Point
	s.OnMove(func(id string, p geom.Point) { moved = p })

	require.NoError(t, s.Move("a", geom.Pt(0.4, 0.4)))
	assert.Equal(t, geom.Pt(0.4, 0.4), moved)
	assert.ErrorIs(t, s.Move("zzz", geom.Pt(0.4, 0.4)), ErrNotFound)
	assert.ErrorIs(t, s.Move("a", geom.Pt(-1, 0)), ErrOutOfBounds)
}

func TestStore_VisibleFiltersCategories(t *testing.T) {
	s := newTestStore()
	require.NoError(t, s.Put(Marker{ID: "a", Pos: geom.Pt(0.1, 0.1), Category: "chest"}))
	require.NoError(t, s.Put(Marker{ID: "b", Pos: geom.Pt(0.2, 0.2), Category: "ore"}))
	require.NoError(t, s.Put(Marker{ID: "c", Pos: geom.Pt(0.3, 0.3), Category: "chest"}))

	s.SetCategoryEnabled("chest", false)
	assert.False(t, s.CategoryEnabled("chest"))
	assert.Equal(t, []string{"b"}, ids(s.Visible()))

	_, ok := s.Lookup("a")
	assert.True(t, ok, "hidden markers still resolve")

	s.SetCategoryEnabled("chest", true)
	assert.Equal(t, []string{"a", "b", "c"}, ids(s.Visible()))
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := newTestStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := s.Add(geom.Pt(0.5, 0.5), "x")
			if err != nil {
				return
			}
			_ = s.Visible()
			s.Remove(m.ID)
		}()
	}
	wg.Wait()
	assert.Zero(t, s.Len())
}

func ids(ms []Marker) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}
