package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/chepyr/task-dashboard/internal/models"
	"github.com/chepyr/task-dashboard/internal/query"
	"github.com/chepyr/task-dashboard/internal/store"
)

/*
handles routes:
- GET /tasks?priority={all|low|medium|high}&q={text} - visible tasks
- POST /tasks - create a new task
- DELETE /tasks - clear all tasks
*/
func (h *Handler) HandleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listTasks(w, r)
	case http.MethodPost:
		h.createTask(w, r)
	case http.MethodDelete:
		h.clearTasks(w, r)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	filter, err := models.ParsePriorityFilter(params.Get("priority"))
	if err != nil {
		sendError(w, "priority must be one of all, low, medium, high", http.StatusBadRequest)
		return
	}

	searchDescriptions := h.SearchDescriptions
	if v := params.Get("descriptions"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			sendError(w, "descriptions must be true or false", http.StatusBadRequest)
			return
		}
		searchDescriptions = b
	}

	criteria := query.Criteria{
		Priority:           filter,
		Search:             params.Get("q"),
		SearchDescriptions: searchDescriptions,
	}
	sendJSON(w, http.StatusOK, criteria.Apply(h.Store.List()))
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var draft models.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	// completed is always false on creation
	draft.Completed = nil

	task, err := h.Store.Create(r.Context(), draft)
	if err != nil {
		sendStoreError(w, err)
		return
	}
	w.Header().Set("Location", "/tasks/"+strconv.FormatInt(task.ID, 10))
	sendJSON(w, http.StatusCreated, task)
}

func (h *Handler) clearTasks(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Clear(r.Context()); err != nil {
		sendStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

/*
routes:
- GET /tasks/{id}
- PUT /tasks/{id} - replace all editable fields
- PATCH /tasks/{id} - change only the fields present in the body
- DELETE /tasks/{id}
- POST /tasks/{id}/toggle - flip completed
*/
func (h *Handler) HandleTaskByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/tasks/")
	idStr, action, _ := strings.Cut(rest, "/")
	if idStr == "" {
		sendError(w, "task id is required", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		sendError(w, "task id must be an integer", http.StatusBadRequest)
		return
	}

	switch action {
	case "":
	case "toggle":
		if r.Method != http.MethodPost {
			sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.toggleTask(w, r, id)
		return
	default:
		sendError(w, "Not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getTask(w, id)
	case http.MethodPut:
		h.replaceTask(w, r, id)
	case http.MethodPatch:
		h.patchTask(w, r, id)
	case http.MethodDelete:
		h.deleteTask(w, r, id)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) getTask(w http.ResponseWriter, id int64) {
	task, err := h.Store.Get(id)
	if err != nil {
		sendStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, task)
}

func (h *Handler) replaceTask(w http.ResponseWriter, r *http.Request, id int64) {
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var draft models.Draft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	task, err := h.Store.Update(r.Context(), id, draft)
	if err != nil {
		sendStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, task)
}

func (h *Handler) patchTask(w http.ResponseWriter, r *http.Request, id int64) {
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	existing, err := h.Store.Get(id)
	if err != nil {
		sendStoreError(w, err)
		return
	}

	var input struct {
		Title       *string          `json:"title"`
		Description *string          `json:"description"`
		DueDate     *string          `json:"dueDate"`
		Priority    *models.Priority `json:"priority"`
		Category    *string          `json:"category"`
		Completed   *bool            `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	draft := models.DraftFrom(existing)
	if input.Title != nil {
		draft.Title = *input.Title
	}
	if input.Description != nil {
		draft.Description = *input.Description
	}
	if input.DueDate != nil {
		draft.DueDate = *input.DueDate
	}
	if input.Priority != nil {
		draft.Priority = *input.Priority
	}
	if input.Category != nil {
		draft.Category = *input.Category
	}
	if input.Completed != nil {
		draft.Completed = input.Completed
	}

	task, err := h.Store.Update(r.Context(), id, draft)
	if err != nil {
		sendStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, task)
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.Store.Remove(r.Context(), id); err != nil {
		sendStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toggleTask(w http.ResponseWriter, r *http.Request, id int64) {
	task, err := h.Store.ToggleCompleted(r.Context(), id)
	if err != nil {
		sendStoreError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, task)
}

func sendStoreError(w http.ResponseWriter, err error) {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		sendJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Error(), Fields: ve.Fields})
	case errors.Is(err, store.ErrValidation):
		sendError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrNotFound):
		sendError(w, "Task not found", http.StatusNotFound)
	default:
		log.WithError(err).Error("task store failure")
		sendError(w, "Failed to save tasks", http.StatusInternalServerError)
	}
}
