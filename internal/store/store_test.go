package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/Scorecard/internal/scorecard"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(max int, ttl time.Duration) (*MemoryStore, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	m := NewMemoryStore(max, ttl, discardLogger())
	m.now = clock.Now
	return m, clock
}

func newSession(source string) *Session {
	schema, _ := scorecard.ResolveColumns([]string{"Category", "Item", "Weight", "Score"}, scorecard.DefaultAliases())
	return &Session{
		Source: source,
		Format: "csv",
		Schema: schema,
		Base: []scorecard.ScoreItem{
			{ID: 0, Category: "Finance", Item: "Revenue", Weight: 0.5, Score: 4},
			{ID: 1, Category: "Legal", Item: "Litigation", Weight: 0.5, Score: 2},
		},
		Options: Options{LockWeights: true, ScoreStep: 0.5, ShowNotes: true},
	}
}

func TestSessionItemsAppliesEdits(t *testing.T) {
	s := newSession("a.csv")
	score := 5.0
	s.Edit(1, scorecard.ItemEdit{Score: &score})

	items := s.Items()
	assert.Equal(t, 5.0, items[1].Score)
	assert.Equal(t, 2.0, s.Base[1].Score, "base is never modified")
}

func TestSessionEditMerges(t *testing.T) {
	s := newSession("a.csv")
	score, notes := 3.0, "follow up"
	s.Edit(0, scorecard.ItemEdit{Score: &score})
	s.Edit(0, scorecard.ItemEdit{Notes: &notes})

	items := s.Items()
	assert.Equal(t, 3.0, items[0].Score)
	assert.Equal(t, "follow up", items[0].Notes)
}

func TestSessionItem(t *testing.T) {
	s := newSession("a.csv")
	it, ok := s.Item(1)
	require.True(t, ok)
	assert.Equal(t, "Litigation", it.Item)

	_, ok = s.Item(7)
	assert.False(t, ok)
}

func TestCreateAndGetSession(t *testing.T) {
	m, _ := newTestStore(0, 0)
	ctx := context.Background()

	s := newSession("a.csv")
	require.NoError(t, m.CreateSession(ctx, s))
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.False(t, s.CreatedAt.IsZero())

	got, err := m.GetSession(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "a.csv", got.Source)
	assert.Len(t, got.Base, 2)
}

func TestGetSessionNotFound(t *testing.T) {
	m, _ := newTestStore(0, 0)
	got, err := m.GetSession(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionsAreCopies(t *testing.T) {
	m, _ := newTestStore(0, 0)
	ctx := context.Background()

	s := newSession("a.csv")
	require.NoError(t, m.CreateSession(ctx, s))

	// mutating the caller's copy does not leak into the store
	s.Base[0].Score = 1
	score := 0.5
	s.Edit(0, scorecard.ItemEdit{Score: &score})

	got, err := m.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.Base[0].Score)
	assert.Empty(t, got.Edits)

	// nor does mutating a fetched copy
	got.Edit(1, scorecard.ItemEdit{Score: &score})
	again, err := m.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Edits)
}

func TestMutateSession(t *testing.T) {
	m, clock := newTestStore(0, 0)
	ctx := context.Background()

	s := newSession("a.csv")
	require.NoError(t, m.CreateSession(ctx, s))
	clock.Advance(time.Minute)

	score := 1.0
	got, err := m.MutateSession(ctx, s.ID, func(sess *Session) error {
		sess.Edit(0, scorecard.ItemEdit{Score: &score})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Items()[0].Score)
	assert.Equal(t, s.CreatedAt, got.CreatedAt)
	assert.Equal(t, s.CreatedAt.Add(time.Minute), got.UpdatedAt)

	// the returned session is a copy
	got.Options.ShowNotes = false
	stored, _ := m.GetSession(ctx, s.ID)
	assert.True(t, stored.Options.ShowNotes)
	assert.Equal(t, 1.0, stored.Items()[0].Score)
}

func TestMutateSessionErrorLeavesSessionUnchanged(t *testing.T) {
	m, _ := newTestStore(0, 0)
	ctx := context.Background()

	s := newSession("a.csv")
	require.NoError(t, m.CreateSession(ctx, s))

	rejected := errors.New("rejected")
	score := 1.0
	_, err := m.MutateSession(ctx, s.ID, func(sess *Session) error {
		sess.Edit(0, scorecard.ItemEdit{Score: &score})
		return rejected
	})
	assert.ErrorIs(t, err, rejected)

	stored, _ := m.GetSession(ctx, s.ID)
	assert.Empty(t, stored.Edits)
	assert.Equal(t, s.UpdatedAt, stored.UpdatedAt)

	_, err = m.MutateSession(ctx, uuid.New(), func(*Session) error { return nil })
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestConcurrentMutationsAreNotLost(t *testing.T) {
	m := NewMemoryStore(0, 0, discardLogger())
	ctx := context.Background()

	s := newSession("a.csv")
	for i := 2; i < 50; i++ {
		s.Base = append(s.Base, scorecard.ScoreItem{ID: i, Category: "Ops", Item: "extra", Weight: 0.1})
	}
	require.NoError(t, m.CreateSession(ctx, s))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			score := 3.0
			_, err := m.MutateSession(ctx, s.ID, func(sess *Session) error {
				sess.Edit(id, scorecard.ItemEdit{Score: &score})
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := m.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Edits, 50)
	for _, it := range stored.Items() {
		assert.Equal(t, 3.0, it.Score, "item %d", it.ID)
	}
}

func TestDeleteSession(t *testing.T) {
	m, _ := newTestStore(0, 0)
	ctx := context.Background()

	s := newSession("a.csv")
	require.NoError(t, m.CreateSession(ctx, s))
	require.NoError(t, m.DeleteSession(ctx, s.ID))

	got, err := m.GetSession(ctx, s.ID)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, m.DeleteSession(ctx, s.ID), ErrSessionNotFound)
}

func TestListSessionsNewestFirst(t *testing.T) {
	m, clock := newTestStore(0, 0)
	ctx := context.Background()

	for _, name := range []string{"a.csv", "b.csv", "c.csv"} {
		require.NoError(t, m.CreateSession(ctx, newSession(name)))
		clock.Advance(time.Second)
	}

	list, err := m.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "c.csv", list[0].Source)
	assert.Equal(t, "a.csv", list[2].Source)
}

func TestMaxSessionsEvictsLeastRecentlyUpdated(t *testing.T) {
	m, clock := newTestStore(2, 0)
	ctx := context.Background()

	a, b, c := newSession("a.csv"), newSession("b.csv"), newSession("c.csv")
	require.NoError(t, m.CreateSession(ctx, a))
	clock.Advance(time.Second)
	require.NoError(t, m.CreateSession(ctx, b))
	clock.Advance(time.Second)

	// touching a makes b the stalest
	_, err := m.MutateSession(ctx, a.ID, func(*Session) error { return nil })
	require.NoError(t, err)
	clock.Advance(time.Second)

	require.NoError(t, m.CreateSession(ctx, c))

	list, _ := m.ListSessions(ctx)
	assert.Len(t, list, 2)
	gone, _ := m.GetSession(ctx, b.ID)
	assert.Nil(t, gone)
	kept, _ := m.GetSession(ctx, a.ID)
	assert.NotNil(t, kept)
}

func TestExpiredSessionsEvictedOnCreate(t *testing.T) {
	m, clock := newTestStore(0, time.Hour)
	ctx := context.Background()

	old := newSession("old.csv")
	require.NoError(t, m.CreateSession(ctx, old))

	clock.Advance(2 * time.Hour)
	// expiry is lazy: still readable until the next create
	got, _ := m.GetSession(ctx, old.ID)
	require.NotNil(t, got)

	require.NoError(t, m.CreateSession(ctx, newSession("new.csv")))
	got, _ = m.GetSession(ctx, old.ID)
	assert.Nil(t, got)
}

func TestConcurrentAccess(t *testing.T) {
	m := NewMemoryStore(0, 0, discardLogger())
	ctx := context.Background()
	s := newSession("a.csv")
	require.NoError(t, m.CreateSession(ctx, s))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			score := float64(i % 6)
			_, _ = m.MutateSession(ctx, s.ID, func(sess *Session) error {
				sess.Edit(i%2, scorecard.ItemEdit{Score: &score})
				return nil
			})
			_, _ = m.GetSession(ctx, s.ID)
			_, _ = m.ListSessions(ctx)
		}(i)
	}
	wg.Wait()

	got, err := m.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items(), 2)
}

func TestClose(t *testing.T) {
	m, _ := newTestStore(0, 0)
	ctx := context.Background()
	require.NoError(t, m.CreateSession(ctx, newSession("a.csv")))
	require.NoError(t, m.Close())

	list, err := m.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
