package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/firemesscode/drevorod/pkg/errors"
	"github.com/firemesscode/drevorod/pkg/family"
	"github.com/firemesscode/drevorod/pkg/layout"
	"github.com/firemesscode/drevorod/pkg/pipeline"
	"github.com/firemesscode/drevorod/pkg/render"
	"github.com/firemesscode/drevorod/pkg/store"
)

func (s *Server) requireEdit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.gate.EditMode(r) {
			s.writeError(w, errors.New(errors.ErrCodeForbidden, "editing requires edit mode"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type sessionResponse struct {
	EditMode bool `json:"edit_mode"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, sessionResponse{EditMode: s.gate.EditMode(r)})
}

type treeResponse struct {
	EditMode bool           `json:"edit_mode"`
	Version  uint64         `json:"version"`
	Layout   *layout.Layout `json:"layout"`
	Error    *errorBody     `json:"error,omitempty"`
}

// handleTree returns the current layout. A failed refresh is reported in
// the error field next to the last good layout; without any layout the
// response is the error alone.
func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	st := s.live.State()
	if st.Layout == nil {
		err := st.Err
		if err == nil {
			err = errors.New(errors.ErrCodeStoreUnavailable, "layout not computed yet")
		}
		s.writeError(w, err)
		return
	}
	resp := treeResponse{EditMode: s.gate.EditMode(r), Version: st.Version, Layout: st.Layout}
	if st.Err != nil {
		code := errors.GetCode(st.Err)
		if code == "" {
			code = errors.ErrCodeInternal
		}
		resp.Error = &errorBody{Code: code, Message: errors.UserMessage(st.Err)}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTreeSVG(w http.ResponseWriter, r *http.Request) {
	s.renderTree(w, r, render.FormatSVG)
}

func (s *Server) handleTreeFormat(w http.ResponseWriter, r *http.Request) {
	f, err := render.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.renderTree(w, r, f)
}

func (s *Server) renderTree(w http.ResponseWriter, r *http.Request, f render.Format) {
	st := s.live.State()
	if st.Layout == nil {
		s.writeError(w, errors.New(errors.ErrCodeStoreUnavailable, "layout not available"))
		return
	}
	artifacts, err := s.runner.Render(r.Context(), st.Layout, pipeline.Options{Formats: []render.Format{f}})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[f])
}

func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, nonNil(snap.People))
}

type personResponse struct {
	family.Person
	Relationships []family.Relationship `json:"relationships"`
}

func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.store.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	p, ok := snap.Person(id)
	if !ok {
		s.writeError(w, errors.PersonNotFound(id))
		return
	}
	s.writeJSON(w, http.StatusOK, personResponse{Person: p, Relationships: nonNil(snap.RelationshipsOf(id))})
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var p family.Person
	if err := decode(w, r, &p); err != nil {
		s.writeError(w, err)
		return
	}
	created, err := s.store.CreatePerson(r.Context(), p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	var patch family.PersonPatch
	if err := decode(w, r, &patch); err != nil {
		s.writeError(w, err)
		return
	}
	updated, err := s.store.UpdatePerson(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePerson(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRelationships(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	rels := snap.Relationships
	if person := r.URL.Query().Get("person"); person != "" {
		rels = snap.RelationshipsOf(person)
	}
	s.writeJSON(w, http.StatusOK, nonNil(rels))
}

// handleCreateRelationship treats a missing type as parent_child, so a
// plain source→target connection records a parent and child.
func (s *Server) handleCreateRelationship(w http.ResponseWriter, r *http.Request) {
	var rel family.Relationship
	if err := decode(w, r, &rel); err != nil {
		s.writeError(w, err)
		return
	}
	if strings.TrimSpace(string(rel.Kind)) == "" {
		rel.Kind = family.KindParentChild
	} else if k, err := family.ParseKind(string(rel.Kind)); err == nil {
		rel.Kind = k
	}
	created, err := s.store.CreateRelationship(r.Context(), rel)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateRelationship(w http.ResponseWriter, r *http.Request) {
	var patch family.RelationshipPatch
	if err := decode(w, r, &patch); err != nil {
		s.writeError(w, err)
		return
	}
	if patch.Kind != nil {
		if k, err := family.ParseKind(string(*patch.Kind)); err == nil {
			patch.Kind = &k
		}
	}
	updated, err := s.store.UpdateRelationship(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteRelationship(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteRelationship(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type assignRequest struct {
	ChildID string `json:"child_id"`
}

type assignResponse struct {
	Union   string                `json:"union"`
	Created []family.Relationship `json:"created"`
}

// handleAssignChild adds the couple's missing parent links to the child
// and refreshes the layout once for all of them.
func (s *Server) handleAssignChild(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.ChildID == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "child_id is required"))
		return
	}
	p1, p2 := chi.URLParam(r, "p1"), chi.URLParam(r, "p2")

	var (
		created   []family.Relationship
		assignErr error
	)
	refreshErr := s.live.Batch(r.Context(), func() error {
		created, assignErr = store.AssignChildToUnion(r.Context(), s.store, p1, p2, req.ChildID)
		return assignErr
	})
	if assignErr != nil {
		s.writeError(w, assignErr)
		return
	}
	if refreshErr != nil {
		s.logger.Warn("refresh after assigning child", "error", refreshErr)
	}
	status := http.StatusOK
	if len(created) > 0 {
		status = http.StatusCreated
	}
	s.writeJSON(w, status, assignResponse{Union: layout.UnionID(p1, p2), Created: nonNil(created)})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
