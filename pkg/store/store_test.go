package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firemesscode/drevorod/pkg/cache"
	"github.com/firemesscode/drevorod/pkg/errors"
	"github.com/firemesscode/drevorod/pkg/family"
	"github.com/firemesscode/drevorod/pkg/observability"
	"github.com/firemesscode/drevorod/pkg/store/memory"
)

func newDemo(t *testing.T) *Observed {
	t.Helper()
	s, err := Open(context.Background(), Config{})
	require.NoError(t, err)
	return s
}

func TestOpen_Backends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     Config
		people  int
		wantErr errors.Code
	}{
		{name: "default is demo", cfg: Config{}, people: 5},
		{name: "empty memory", cfg: Config{Backend: BackendMemory, Empty: true}, people: 0},
		{name: "file", cfg: Config{Backend: BackendFile, Path: filepath.Join(dir, "family.json")}, people: 0},
		{name: "sqlite", cfg: Config{Backend: BackendSQLite, DSN: filepath.Join(dir, "family.db")}, people: 0},
		{name: "file without path", cfg: Config{Backend: BackendFile}, wantErr: errors.ErrCodeInvalidPath},
		{name: "sqlite without dsn", cfg: Config{Backend: BackendSQLite}, wantErr: errors.ErrCodeInvalidInput},
		{name: "mongo without uri", cfg: Config{Backend: BackendMongo}, wantErr: errors.ErrCodeInvalidInput},
		{name: "neo4j without uri", cfg: Config{Backend: BackendNeo4j}, wantErr: errors.ErrCodeInvalidInput},
		{name: "unknown", cfg: Config{Backend: "csv"}, wantErr: errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, errors.GetCode(err))
				return
			}
			require.NoError(t, err)
			defer s.Close()
			snap, err := s.Snapshot(ctx)
			require.NoError(t, err)
			assert.Len(t, snap.People, tt.people)
		})
	}
}

func TestConnect(t *testing.T) {
	ctx := context.Background()

	t.Run("retries a backend that is starting", func(t *testing.T) {
		calls := 0
		s, err := connect(ctx, func() (Store, error) {
			calls++
			if calls == 1 {
				return nil, cache.Retryable(errors.Unavailable("mongo", cache.ErrNetwork))
			}
			return memory.NewDemo(), nil
		})
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, 2, calls)
	})

	t.Run("gives up on other errors", func(t *testing.T) {
		calls := 0
		_, err := connect(ctx, func() (Store, error) {
			calls++
			return nil, errors.Unavailable("neo4j", cache.ErrNetwork)
		})
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeStoreUnavailable, errors.GetCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("stops when the context ends", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := connect(cctx, func() (Store, error) {
			return nil, cache.Retryable(cache.ErrNetwork)
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestValidBackend(t *testing.T) {
	assert.True(t, ValidBackend(""))
	assert.True(t, ValidBackend("neo4j"))
	assert.False(t, ValidBackend("postgres"))
}

func TestChecked_CreatePerson(t *testing.T) {
	ctx := context.Background()
	s := newDemo(t)

	p, err := s.CreatePerson(ctx, family.Person{LastName: "Петров", FirstName: "Пётр"})
	require.NoError(t, err)
	assert.Len(t, p.ID, 36, "uuid assigned")

	_, err = s.CreatePerson(ctx, family.Person{FirstName: "Пётр"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidPerson))

	_, err = s.CreatePerson(ctx, family.Person{ID: "has space", LastName: "A", FirstName: "B"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidPerson))

	_, err = s.CreatePerson(ctx, family.Person{LastName: "A", FirstName: "B", BirthDate: "2000-01-01", DeathDate: "1999-01-01"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidPerson))
}

func TestChecked_UpdatePerson(t *testing.T) {
	ctx := context.Background()
	s := newDemo(t)

	empty := ""
	_, err := s.UpdatePerson(ctx, "1", family.PersonPatch{FirstName: &empty})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidPerson))

	_, err = s.UpdatePerson(ctx, "nobody", family.PersonPatch{FirstName: &empty})
	assert.True(t, IsNotFound(err))

	death := "2001-09-09"
	p, err := s.UpdatePerson(ctx, "1", family.PersonPatch{DeathDate: &death})
	require.NoError(t, err)
	assert.Equal(t, death, p.DeathDate)
}

func TestChecked_CreateRelationship(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		rel  family.Relationship
		ok   bool
	}{
		{name: "new child", rel: family.Relationship{Person1ID: "1", Person2ID: "5", Kind: family.KindParentChild}, ok: true},
		{name: "self", rel: family.Relationship{Person1ID: "1", Person2ID: "1", Kind: family.KindSpouse}},
		{name: "dangling", rel: family.Relationship{Person1ID: "1", Person2ID: "99", Kind: family.KindParentChild}},
		{name: "unknown kind", rel: family.Relationship{Person1ID: "1", Person2ID: "5", Kind: "cousin"}},
		{name: "duplicate spouse reversed", rel: family.Relationship{Person1ID: "2", Person2ID: "1", Kind: family.KindSpouse}},
		{name: "duplicate parent", rel: family.Relationship{Person1ID: "1", Person2ID: "3", Kind: family.KindParentChild}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newDemo(t)
			r, err := s.CreateRelationship(ctx, tt.rel)
			if !tt.ok {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidRelationship), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, r.ID)
		})
	}
}

func TestChecked_UpdateRelationship(t *testing.T) {
	ctx := context.Background()
	s := newDemo(t)

	bad := family.Kind("sibling")
	_, err := s.UpdateRelationship(ctx, "r1", family.RelationshipPatch{Kind: &bad})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidRelationship))

	// r2 is 1→3 parent_child; turning r3 (2→3) into a spouse link is allowed.
	spouse := family.KindSpouse
	r, err := s.UpdateRelationship(ctx, "r3", family.RelationshipPatch{Kind: &spouse})
	require.NoError(t, err)
	assert.Equal(t, family.KindSpouse, r.Kind)

	_, err = s.UpdateRelationship(ctx, "missing", family.RelationshipPatch{Kind: &spouse})
	assert.True(t, IsNotFound(err))
}

func TestObserved_OneEventPerMutation(t *testing.T) {
	ctx := context.Background()
	s := newDemo(t)

	var mu sync.Mutex
	var events []Event
	unsubscribe := s.Subscribe(func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	p, err := s.CreatePerson(ctx, family.Person{ID: "6", LastName: "A", FirstName: "B"})
	require.NoError(t, err)
	_, err = s.CreateRelationship(ctx, family.Relationship{ID: "r7", Person1ID: "5", Person2ID: p.ID, Kind: family.KindParentChild})
	require.NoError(t, err)
	require.NoError(t, s.DeletePerson(ctx, "6"))

	// Failed mutations publish nothing.
	_, err = s.CreatePerson(ctx, family.Person{})
	require.Error(t, err)
	require.Error(t, s.DeleteRelationship(ctx, "r7"))

	unsubscribe()
	unsubscribe()
	require.NoError(t, s.DeleteRelationship(ctx, "r1"))

	assert.Equal(t, []Event{
		{Kind: PersonCreated, ID: "6"},
		{Kind: RelationshipCreated, ID: "r7"},
		{Kind: PersonDeleted, ID: "6"},
	}, events)
}

func TestObserved_SubscriberMaySnapshot(t *testing.T) {
	ctx := context.Background()
	s := newDemo(t)

	var people int
	s.Subscribe(func(Event) {
		snap, err := s.Snapshot(ctx)
		require.NoError(t, err)
		people = len(snap.People)
	})
	require.NoError(t, s.DeletePerson(ctx, "5"))
	assert.Equal(t, 4, people)
}

type recordingHooks struct {
	observability.NoopStoreHooks
	mu  sync.Mutex
	ops []string
}

func (h *recordingHooks) OnMutation(_ context.Context, backend, op, id string, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	status := "ok"
	if err != nil {
		status = "err"
	}
	h.ops = append(h.ops, backend+" "+op+" "+id+" "+status)
}

func TestObserved_Hooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetStoreHooks(hooks)
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	s := NewObserved(memory.NewDemo(), "memory")
	require.NoError(t, s.DeleteRelationship(ctx, "r1"))
	require.Error(t, s.DeletePerson(ctx, "9"))

	assert.Equal(t, []string{
		"memory relationship.deleted r1 ok",
		"memory person.deleted 9 err",
	}, hooks.ops)
}

func TestAssignChildToUnion(t *testing.T) {
	ctx := context.Background()

	t.Run("adds both parents", func(t *testing.T) {
		s := newDemo(t)
		p, err := s.CreatePerson(ctx, family.Person{ID: "6", LastName: "Иванова", FirstName: "Анна"})
		require.NoError(t, err)

		created, err := AssignChildToUnion(ctx, s, "3", "4", p.ID)
		require.NoError(t, err)
		require.Len(t, created, 2)
		assert.Equal(t, "3", created[0].Person1ID)
		assert.Equal(t, "4", created[1].Person1ID)

		snap, _ := s.Snapshot(ctx)
		assert.ElementsMatch(t, []string{"3", "4"}, snap.Parents("6"))
	})

	t.Run("adds only the missing parent", func(t *testing.T) {
		s := newDemo(t)
		require.NoError(t, s.DeleteRelationship(ctx, "r6"))
		created, err := AssignChildToUnion(ctx, s, "4", "3", "5")
		require.NoError(t, err)
		require.Len(t, created, 1)
		assert.Equal(t, "4", created[0].Person1ID)
	})

	t.Run("already assigned", func(t *testing.T) {
		s := newDemo(t)
		created, err := AssignChildToUnion(ctx, s, "3", "4", "5")
		require.NoError(t, err)
		assert.Empty(t, created)
	})

	t.Run("not a couple", func(t *testing.T) {
		s := newDemo(t)
		_, err := AssignChildToUnion(ctx, s, "1", "4", "5")
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidRelationship))
	})

	t.Run("child has another parent", func(t *testing.T) {
		s := newDemo(t)
		_, err := AssignChildToUnion(ctx, s, "1", "2", "5")
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidRelationship))
	})

	t.Run("unknown person", func(t *testing.T) {
		s := newDemo(t)
		_, err := AssignChildToUnion(ctx, s, "3", "4", "42")
		assert.True(t, IsNotFound(err))
	})

	t.Run("child is a parent", func(t *testing.T) {
		s := newDemo(t)
		_, err := AssignChildToUnion(ctx, s, "3", "4", "4")
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidRelationship))
	})

	t.Run("failed second link removes the first", func(t *testing.T) {
		s := newDemo(t)
		_, err := s.CreatePerson(ctx, family.Person{ID: "6", LastName: "Иванова", FirstName: "Анна"})
		require.NoError(t, err)

		flaky := &failingCreates{Store: s, after: 1}
		created, err := AssignChildToUnion(ctx, flaky, "3", "4", "6")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeStoreUnavailable))
		assert.Empty(t, created)

		snap, err := s.Snapshot(ctx)
		require.NoError(t, err)
		assert.Empty(t, snap.Parents("6"))
		assert.Len(t, snap.Relationships, 6)
	})
}

// failingCreates lets the first after relationship creates through and
// fails the rest.
type failingCreates struct {
	Store
	after int
	calls int
}

func (f *failingCreates) CreateRelationship(ctx context.Context, r family.Relationship) (family.Relationship, error) {
	f.calls++
	if f.calls > f.after {
		return family.Relationship{}, errors.Unavailable("memory", cache.ErrNetwork)
	}
	return f.Store.CreateRelationship(ctx, r)
}

func TestChecked_ConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	s := newDemo(t)

	const writers = 16
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		oks int
	)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p1, p2 := "1", "5"
			if i%2 == 1 {
				p1, p2 = p2, p1
			}
			_, err := s.CreateRelationship(ctx, family.Relationship{Person1ID: p1, Person2ID: p2, Kind: family.KindSpouse})
			if err == nil {
				mu.Lock()
				oks++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, oks)
	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Spouses("5"), 1)
}
