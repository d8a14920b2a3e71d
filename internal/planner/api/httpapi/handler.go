// Package httpapi exposes the planner service over a JSON HTTP surface.
package httpapi

import (
	"net/http"
	"strconv"

	"github.com/stagehandhq/stagehand/internal/auth/session"
	"github.com/stagehandhq/stagehand/internal/planner/service"
)

// Handler routes planner HTTP requests to the service layer.
type Handler struct {
	svc *service.Service
}

// New builds the planner HTTP handler with session verification applied to
// every route.
func New(svc *service.Service, sessionCfg session.Config) http.Handler {
	h := &Handler{svc: svc}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /events", h.listEvents)
	mux.HandleFunc("POST /events", h.createEvent)
	mux.HandleFunc("PUT /events/{id}/status", h.updateEventStatus)
	mux.HandleFunc("POST /events/{id}/distribute", h.distributeEvent)
	mux.HandleFunc("GET /events/{id}/tasks", h.listTasksByEvent)

	mux.HandleFunc("POST /tasks", h.createTask)
	mux.HandleFunc("PUT /tasks/{id}/status", h.updateTaskStatus)

	// Sub-task updates accept the id either in the path or in the body.
	mux.HandleFunc("POST /graphics-tasks", h.createGraphicsTask)
	mux.HandleFunc("PUT /graphics-tasks", h.updateGraphicsTask)
	mux.HandleFunc("PUT /graphics-tasks/{id}", h.updateGraphicsTask)
	mux.HandleFunc("POST /logistics-tasks", h.createLogisticsTask)
	mux.HandleFunc("PUT /logistics-tasks", h.updateLogisticsTask)
	mux.HandleFunc("PUT /logistics-tasks/{id}", h.updateLogisticsTask)
	mux.HandleFunc("POST /outreach-tasks", h.createOutreachTask)
	mux.HandleFunc("PUT /outreach-tasks", h.updateOutreachTask)
	mux.HandleFunc("PUT /outreach-tasks/{id}", h.updateOutreachTask)

	mux.HandleFunc("GET /notifications", h.listNotifications)
	mux.HandleFunc("POST /notifications/{id}/read", h.markNotificationRead)
	mux.HandleFunc("POST /notifications/check", h.runChecks)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return withSession(sessionCfg, mux)
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	event, err := h.svc.CreateEvent(r.Context(), service.CreateEventParams{
		Name:   req.Name,
		Date:   req.Date,
		Status: req.Status,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventJSON(event))
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.ListEvents(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	body := make([]eventSummaryJSON, 0, len(summaries))
	for _, summary := range summaries {
		body = append(body, eventSummaryJSON{
			eventJSON: toEventJSON(summary.Event),
			TaskCount: summary.TaskCount,
		})
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) updateEventStatus(w http.ResponseWriter, r *http.Request) {
	var req updateEventStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	event, err := h.svc.TransitionEventStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventJSON(event))
}

func (h *Handler) distributeEvent(w http.ResponseWriter, r *http.Request) {
	var req distributeEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	instances, err := h.svc.DistributeEvent(r.Context(), r.PathValue("id"), req.Cities)
	if err != nil {
		writeError(w, err)
		return
	}
	body := make([]eventJSON, 0, len(instances))
	for _, instance := range instances {
		body = append(body, toEventJSON(instance))
	}
	writeJSON(w, http.StatusCreated, body)
}

func (h *Handler) listTasksByEvent(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.ListTasksByEvent(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	body := make([]taskJSON, 0, len(tasks))
	for _, task := range tasks {
		body = append(body, toTaskJSON(task))
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	task, err := h.svc.CreateTask(r.Context(), service.CreateTaskParams{
		EventID:  req.EventID,
		Title:    req.Title,
		Category: req.Category,
		DueAt:    req.DueAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskJSON(task))
}

func (h *Handler) updateTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req updateTaskStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	task, err := h.svc.TransitionTaskStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskJSON(task))
}

// subtaskID resolves the sub-task id from the path, falling back to the id
// carried in the request body for collection-path updates.
func subtaskID(r *http.Request, bodyID string) string {
	if id := r.PathValue("id"); id != "" {
		return id
	}
	return bodyID
}

// parentTask loads the sub-task's owning task for the joined response.
func (h *Handler) parentTask(r *http.Request, taskID string) (*taskJSON, error) {
	task, err := h.svc.GetTask(r.Context(), taskID)
	if err != nil {
		return nil, err
	}
	body := toTaskJSON(task)
	return &body, nil
}

func (h *Handler) createGraphicsTask(w http.ResponseWriter, r *http.Request) {
	var req createGraphicsTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	subtask, err := h.svc.CreateGraphicsTask(r.Context(), service.CreateGraphicsTaskParams{
		TaskID:    req.TaskID,
		AssetType: req.AssetType,
		Formats:   req.Formats,
		OwnerID:   req.OwnerID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	body := toGraphicsTaskJSON(subtask)
	if body.Task, err = h.parentTask(r, subtask.TaskID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, body)
}

func (h *Handler) updateGraphicsTask(w http.ResponseWriter, r *http.Request) {
	var req updateGraphicsTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	subtask, err := h.svc.UpdateGraphicsTask(r.Context(), subtaskID(r, req.ID), service.GraphicsTaskUpdate{
		AssetType:       req.AssetType,
		Formats:         req.Formats,
		Status:          req.Status,
		FinalOutputLink: req.FinalOutputLink,
		OwnerID:         req.OwnerID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	body := toGraphicsTaskJSON(subtask)
	if body.Task, err = h.parentTask(r, subtask.TaskID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) createLogisticsTask(w http.ResponseWriter, r *http.Request) {
	var req createLogisticsTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	subtask, err := h.svc.CreateLogisticsTask(r.Context(), service.CreateLogisticsTaskParams{
		TaskID:  req.TaskID,
		Status:  req.Status,
		OwnerID: req.OwnerID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	body := toLogisticsTaskJSON(subtask)
	if body.Task, err = h.parentTask(r, subtask.TaskID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, body)
}

func (h *Handler) updateLogisticsTask(w http.ResponseWriter, r *http.Request) {
	var req updateLogisticsTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	subtask, err := h.svc.UpdateLogisticsTask(r.Context(), subtaskID(r, req.ID), service.LogisticsTaskUpdate{
		Status:  req.Status,
		OwnerID: req.OwnerID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	body := toLogisticsTaskJSON(subtask)
	if body.Task, err = h.parentTask(r, subtask.TaskID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) createOutreachTask(w http.ResponseWriter, r *http.Request) {
	var req createOutreachTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	subtask, err := h.svc.CreateOutreachTask(r.Context(), service.CreateOutreachTaskParams{
		TaskID:      req.TaskID,
		Channel:     req.Channel,
		ContentLink: req.ContentLink,
		ScheduledAt: req.ScheduledAt,
		OwnerID:     req.OwnerID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	body := toOutreachTaskJSON(subtask)
	if body.Task, err = h.parentTask(r, subtask.TaskID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, body)
}

func (h *Handler) updateOutreachTask(w http.ResponseWriter, r *http.Request) {
	var req updateOutreachTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	subtask, err := h.svc.UpdateOutreachTask(r.Context(), subtaskID(r, req.ID), service.OutreachTaskUpdate{
		Channel:     req.Channel,
		ContentLink: req.ContentLink,
		ScheduledAt: req.ScheduledAt,
		Status:      req.Status,
		OutcomeNote: req.OutcomeNote,
		OwnerID:     req.OwnerID,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	body := toOutreachTaskJSON(subtask)
	if body.Task, err = h.parentTask(r, subtask.TaskID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	pageSize := 0
	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			pageSize = parsed
		}
	}
	inbox, err := h.svc.ListNotifications(r.Context(), pageSize, r.URL.Query().Get("pageToken"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toInboxJSON(inbox))
}

func (h *Handler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	notification, err := h.svc.MarkNotificationRead(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toNotificationJSON(notification))
}

func (h *Handler) runChecks(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.RunChecks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkReportJSON(report))
}
