package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mers/internal/domain"
)

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.Tasks.List(r.Context())
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	writeData(w, http.StatusOK, tasks)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var t domain.Task
	if err := decodeJSON(w, r, &t); err != nil {
		s.writeErr(w, r, err)
		return
	}
	if err := s.Tasks.Create(r.Context(), &t); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, t)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	var patch domain.TaskPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeErr(w, r, err)
		return
	}
	t, err := s.Tasks.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeData(w, http.StatusOK, t)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.Tasks.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{OK: true})
}
