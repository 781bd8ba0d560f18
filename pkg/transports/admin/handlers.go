// Package admin exposes the agent management REST surface. Every request is
// scoped to the tenant named by the X-Tenant-ID header.
package admin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/voxlane/voxlane/pkg/agent"
	"github.com/voxlane/voxlane/pkg/errorsx"
	"github.com/voxlane/voxlane/pkg/logging"
)

const tenantHeader = "X-Tenant-ID"

type Handler struct {
	agents *agent.Store
	mux    *http.ServeMux
	log    *slog.Logger
}

func NewHandler(agents *agent.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		agents: agents,
		log:    logging.NewComponentLogger(logger, "admin"),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /agents", h.create)
	mux.HandleFunc("GET /agents", h.list)
	mux.HandleFunc("GET /agents/{id}", h.get)
	mux.HandleFunc("PATCH /agents/{id}", h.update)
	mux.HandleFunc("DELETE /agents/{id}", h.delete)
	h.mux = mux
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) tenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	tenant := strings.TrimSpace(r.Header.Get(tenantHeader))
	if tenant == "" {
		h.writeError(w, http.StatusBadRequest, "X-Tenant-ID header is required")
		return "", false
	}
	return tenant, true
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}
	var in agent.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	ag, err := h.agents.Create(r.Context(), tenant, in)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.log.Info("agent_created", "agent_id", ag.ID, "tenant_id", tenant)
	h.writeJSON(w, http.StatusCreated, ag)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}
	agents, err := h.agents.List(r.Context(), tenant)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, agents)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}
	ag, err := h.agents.GetForTenant(r.Context(), tenant, r.PathValue("id"))
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, ag)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}
	var in agent.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	ag, err := h.agents.Update(r.Context(), tenant, r.PathValue("id"), in)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.log.Info("agent_updated", "agent_id", ag.ID, "tenant_id", tenant)
	h.writeJSON(w, http.StatusOK, ag)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	tenant, ok := h.tenant(w, r)
	if !ok {
		return
	}
	if err := h.agents.Delete(r.Context(), tenant, r.PathValue("id")); err != nil {
		h.storeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, agent.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "agent not found")
	case errorsx.Reason(err) == errorsx.ReasonAgentLookup:
		h.log.Error("agent_store_error", "path", r.URL.Path, "error", err.Error(),
			"reason_code", string(errorsx.ReasonAgentLookup))
		h.writeError(w, http.StatusInternalServerError, "storage error")
	default:
		h.writeError(w, http.StatusBadRequest, err.Error())
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("response_encode_failed", "error", err.Error())
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
