package neo4j

import (
	"context"
	"strings"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firemesscode/drevorod/pkg/errors"
	"github.com/firemesscode/drevorod/pkg/family"
)

type call struct {
	query  string
	params map[string]any
}

// mockQuerier answers queries in order from results and records each call.
type mockQuerier struct {
	calls   []call
	results []*neo4j.EagerResult
	err     error
}

func (m *mockQuerier) ExecuteQuery(_ context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	m.calls = append(m.calls, call{query, params})
	if m.err != nil {
		return nil, m.err
	}
	if len(m.results) == 0 {
		return &neo4j.EagerResult{}, nil
	}
	res := m.results[0]
	m.results = m.results[1:]
	return res, nil
}

func (m *mockQuerier) Close(context.Context) error { return nil }

func result(keys []string, rows ...[]any) *neo4j.EagerResult {
	res := &neo4j.EagerResult{Keys: keys}
	for _, row := range rows {
		res.Records = append(res.Records, &neo4j.Record{Keys: keys, Values: row})
	}
	return res
}

var relKeys = []string{"id", "person1_id", "person2_id", "type", "meta"}

func TestSnapshot(t *testing.T) {
	m := &mockQuerier{results: []*neo4j.EagerResult{
		result([]string{"p"},
			[]any{map[string]any{"id": "1", "last_name": "Иванов", "first_name": "Иван", "seq": int64(1)}},
			[]any{map[string]any{"id": "2", "last_name": "Иванова", "first_name": "Мария", "seq": int64(2)}},
		),
		result(relKeys, []any{"r1", "1", "2", "spouse", nil}),
	}}
	s := New(m)

	snap, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, family.Snapshot{
		People: []family.Person{
			{ID: "1", LastName: "Иванов", FirstName: "Иван"},
			{ID: "2", LastName: "Иванова", FirstName: "Мария"},
		},
		Relationships: []family.Relationship{
			{ID: "r1", Person1ID: "1", Person2ID: "2", Kind: family.KindSpouse},
		},
	}, snap)
	require.Len(t, m.calls, 2)
	assert.Contains(t, m.calls[0].query, "ORDER BY p.seq")
	assert.Contains(t, m.calls[1].query, "ORDER BY r.seq")
}

func TestCreatePerson(t *testing.T) {
	m := &mockQuerier{results: []*neo4j.EagerResult{
		result([]string{"id"}),
		result([]string{"p"}, []any{map[string]any{"id": "7", "last_name": "Петров", "first_name": "Пётр"}}),
	}}
	s := New(m)

	p, err := s.CreatePerson(context.Background(), family.Person{ID: "7", LastName: "Петров", FirstName: "Пётр"})
	require.NoError(t, err)
	assert.Equal(t, "7", p.ID)
	require.Len(t, m.calls, 2)
	props := m.calls[1].params["props"].(map[string]any)
	assert.Equal(t, "Петров", props["last_name"])
	assert.NotZero(t, props["seq"])
}

func TestCreatePerson_Duplicate(t *testing.T) {
	m := &mockQuerier{results: []*neo4j.EagerResult{result([]string{"id"}, []any{"7"})}}
	_, err := New(m).CreatePerson(context.Background(), family.Person{ID: "7"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidPerson))
	assert.Len(t, m.calls, 1)
}

func TestCreateRelationship_MissingEndpoint(t *testing.T) {
	m := &mockQuerier{results: []*neo4j.EagerResult{result([]string{"id"}), result(relKeys)}}
	_, err := New(m).CreateRelationship(context.Background(), family.Relationship{
		ID: "r9", Person1ID: "1", Person2ID: "404", Kind: family.KindParentChild,
	})
	assert.True(t, errors.Is(err, errors.ErrCodePersonNotFound))
	assert.Equal(t, "parent_child", m.calls[1].params["type"])
}

func TestDeletePerson(t *testing.T) {
	m := &mockQuerier{results: []*neo4j.EagerResult{result([]string{"id"}, []any{"3"}), result([]string{"id"})}}
	s := New(m)

	require.NoError(t, s.DeletePerson(context.Background(), "3"))
	assert.True(t, strings.Contains(m.calls[0].query, "DETACH DELETE"))
	assert.True(t, errors.Is(s.DeletePerson(context.Background(), "3"), errors.ErrCodePersonNotFound))
}

func TestUpdateRelationship(t *testing.T) {
	m := &mockQuerier{results: []*neo4j.EagerResult{result(relKeys, []any{"r1", "1", "2", "spouse", "1950"})}}
	label := "1950"
	r, err := New(m).UpdateRelationship(context.Background(), "r1", family.RelationshipPatch{Label: &label})
	require.NoError(t, err)
	assert.Equal(t, "1950", r.Label)
	assert.Equal(t, map[string]any{"meta": "1950"}, m.calls[0].params["fields"])

	_, err = New(&mockQuerier{}).UpdateRelationship(context.Background(), "rx", family.RelationshipPatch{Label: &label})
	assert.True(t, errors.Is(err, errors.ErrCodeRelationshipNotFound))
}

func TestQueryFailureIsUnavailable(t *testing.T) {
	s := New(&mockQuerier{err: assert.AnError})
	_, err := s.Snapshot(context.Background())
	assert.True(t, errors.Is(err, errors.ErrCodeStoreUnavailable))
	assert.ErrorIs(t, err, assert.AnError)
}
