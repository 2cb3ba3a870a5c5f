package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/firemesscode/drevorod/pkg/family"
	"github.com/firemesscode/drevorod/pkg/pipeline"
	"github.com/firemesscode/drevorod/pkg/rank"
	"github.com/firemesscode/drevorod/pkg/store"
)

const token = "test-edit-token"

type fixture struct {
	handler http.Handler
	store   *store.Observed
	live    *pipeline.Live
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, store.Config{})
	require.NoError(t, err)

	runner := pipeline.NewRunner(nil, nil, nil)
	t.Cleanup(func() { runner.Close() })
	live := pipeline.NewLive(runner, st, pipeline.Options{Engine: rank.EngineLayered})
	require.NoError(t, live.Start(ctx))
	t.Cleanup(live.Stop)

	srv := New(Options{
		Store:       st,
		Live:        live,
		Runner:      runner,
		Gate:        TokenGate{Token: token},
		CORSOrigins: []string{"https://tree.example.org"},
	})
	return &fixture{handler: srv.Handler(), store: st, live: live}
}

func (f *fixture) do(t *testing.T, method, path string, body any, edit bool) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = httptest.NewRequest(method, path, bytes.NewReader(data))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if edit {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthzAndSession(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/session", nil, false)
	assert.False(t, decodeBody[sessionResponse](t, w).EditMode)
	w = f.do(t, http.MethodGet, "/api/session", nil, true)
	assert.True(t, decodeBody[sessionResponse](t, w).EditMode)
}

func TestTokenGate(t *testing.T) {
	tests := []struct {
		name   string
		gate   TokenGate
		header string
		want   bool
	}{
		{"match", TokenGate{Token: "abc"}, "Bearer abc", true},
		{"wrong token", TokenGate{Token: "abc"}, "Bearer abd", false},
		{"no scheme", TokenGate{Token: "abc"}, "abc", false},
		{"missing", TokenGate{Token: "abc"}, "", false},
		{"empty token never matches", TokenGate{}, "Bearer ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, tt.gate.EditMode(r))
		})
	}
}

func TestTree(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/tree", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[treeResponse](t, w)
	assert.False(t, resp.EditMode)
	assert.Nil(t, resp.Error)
	require.NotNil(t, resp.Layout)
	assert.Len(t, resp.Layout.Nodes, 7)
	_, ok := resp.Layout.Node("union-1-2")
	assert.True(t, ok)
}

func TestTreeSVG(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/tree.svg", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<svg")

	w = f.do(t, http.MethodGet, "/api/tree/dot", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "digraph")

	w = f.do(t, http.MethodGet, "/api/tree/gif", nil, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMutationsRequireEditMode(t *testing.T) {
	f := newFixture(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/people"},
		{http.MethodPatch, "/api/people/1"},
		{http.MethodDelete, "/api/people/1"},
		{http.MethodPost, "/api/relationships"},
		{http.MethodPatch, "/api/relationships/r1"},
		{http.MethodDelete, "/api/relationships/r1"},
		{http.MethodPost, "/api/unions/3/4/children"},
	} {
		w := f.do(t, tc.method, tc.path, map[string]string{}, false)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s", tc.method, tc.path)
		assert.Contains(t, w.Body.String(), `"FORBIDDEN"`)
	}
}

func TestPeopleCRUD(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/people", map[string]string{"last_name": "Иванова", "first_name": "Анна"}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody[family.Person](t, w)
	assert.NotEmpty(t, created.ID)

	w = f.do(t, http.MethodPost, "/api/people", map[string]string{"first_name": "Анна"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"INVALID_PERSON"`)

	w = f.do(t, http.MethodPost, "/api/people", map[string]string{"nickname": "x"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"INVALID_INPUT"`)

	w = f.do(t, http.MethodPatch, "/api/people/"+created.ID, map[string]string{"birth_date": "2001-02-03"}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "2001-02-03", decodeBody[family.Person](t, w).BirthDate)

	w = f.do(t, http.MethodGet, "/api/people/3", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	person := decodeBody[personResponse](t, w)
	assert.Equal(t, "Алексей", person.FirstName)
	assert.Len(t, person.Relationships, 4)

	w = f.do(t, http.MethodGet, "/api/people", nil, false)
	assert.Len(t, decodeBody[[]family.Person](t, w), 6)

	w = f.do(t, http.MethodDelete, "/api/people/3", nil, true)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(t, http.MethodGet, "/api/people/3", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"PERSON_NOT_FOUND"`)

	// The live layout followed the delete.
	tree := decodeBody[treeResponse](t, f.do(t, http.MethodGet, "/api/tree", nil, false))
	_, ok := tree.Layout.Node("3")
	assert.False(t, ok)
	for _, n := range tree.Layout.Nodes {
		assert.NotEqual(t, "union-3-4", n.ID)
	}
}

func TestRelationshipsCRUD(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/relationships", map[string]string{"person1_id": "1", "person2_id": "5"}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rel := decodeBody[family.Relationship](t, w)
	assert.Equal(t, family.KindParentChild, rel.Kind)

	w = f.do(t, http.MethodPost, "/api/relationships", map[string]string{"person1_id": "1", "person2_id": "404", "type": "spouse"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPatch, "/api/relationships/r4", map[string]string{"meta": "с 1998"}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "с 1998", decodeBody[family.Relationship](t, w).Label)

	w = f.do(t, http.MethodGet, "/api/relationships?person=5", nil, false)
	assert.Len(t, decodeBody[[]family.Relationship](t, w), 3)

	w = f.do(t, http.MethodDelete, "/api/relationships/"+rel.ID, nil, true)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(t, http.MethodDelete, "/api/relationships/"+rel.ID, nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssignChild(t *testing.T) {
	f := newFixture(t)
	before := f.live.State().Version

	w := f.do(t, http.MethodPost, "/api/people", map[string]string{"id": "6", "last_name": "Иванова", "first_name": "Анна"}, true)
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/api/unions/4/3/children", assignRequest{ChildID: "6"}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decodeBody[assignResponse](t, w)
	assert.Equal(t, "union-3-4", resp.Union)
	assert.Len(t, resp.Created, 2)

	// One refresh for the create, one for the whole assignment.
	assert.Equal(t, before+2, f.live.State().Version)

	w = f.do(t, http.MethodPost, "/api/unions/3/4/children", assignRequest{ChildID: "6"}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeBody[assignResponse](t, w).Created)

	w = f.do(t, http.MethodPost, "/api/unions/1/4/children", assignRequest{ChildID: "6"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/unions/3/4/children", assignRequest{}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORS(t *testing.T) {
	f := newFixture(t)
	r := httptest.NewRequest(http.MethodOptions, "/api/people", nil)
	r.Header.Set("Origin", "https://tree.example.org")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)
	assert.Equal(t, "https://tree.example.org", w.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost))
}
