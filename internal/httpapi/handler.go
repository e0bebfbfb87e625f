package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pinkong/internal/bootstrap/logging"
	"pinkong/internal/domain/quality"
	"pinkong/internal/errs"
	"pinkong/internal/usecase/docchain"
)

// NewHandler exposes the document chain operations over JSON.
func NewHandler(svc *docchain.Service) http.Handler {
	h := &handler{svc: svc}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Route("/api", func(r chi.Router) {
		r.Post("/products/{id}/analysis", h.generateAnalysis)
		r.Post("/products/{id}/repair", h.repair)
		r.Post("/analysis/{id}/control-plan", h.generateControlPlan)
		r.Get("/analysis/{id}/consistency", h.checkConsistency)
		r.Post("/control-plans/{id}/instructions", h.generateInstructions)
		r.Post("/control-plans/{id}/inspection-plan", h.generateInspectionPlan)
	})
	return router
}

type handler struct {
	svc *docchain.Service
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) generateAnalysis(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	out, err := h.svc.GenerateAnalysis(r.Context(), docchain.GenerateAnalysisInput{ProductID: id})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"created":     out.Created,
		"root_id":     out.RootID,
		"lines_count": out.LinesCount,
	})
}

func (h *handler) generateControlPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	out, err := h.svc.GenerateControlPlan(r.Context(), docchain.GenerateControlPlanInput{RootID: id})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"created":         out.Created,
		"control_plan_id": out.ControlPlanID,
		"items_count":     out.ItemsCount,
		"traceability": map[string]any{
			"root_id":         out.Traceability.RootID,
			"control_plan_id": out.Traceability.ControlPlanID,
			"linked_line_ids": out.Traceability.LinkedLineIDs,
		},
	})
}

func (h *handler) generateInstructions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	out, err := h.svc.GenerateInstructions(r.Context(), docchain.GenerateInstructionsInput{ControlPlanID: id})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"created":         out.Created,
		"instructions_id": out.InstructionsID,
		"steps_count":     out.StepsCount,
		"traceability": map[string]any{
			"control_plan_id":    out.Traceability.ControlPlanID,
			"instructions_id":    out.Traceability.InstructionsID,
			"linked_cp_item_ids": out.Traceability.LinkedCPItemIDs,
		},
	})
}

func (h *handler) generateInspectionPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	out, err := h.svc.GenerateInspectionPlan(r.Context(), docchain.GenerateInspectionPlanInput{ControlPlanID: id})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"created":            out.Created,
		"inspection_plan_id": out.InspectionPlanID,
		"items_count":        out.ItemsCount,
		"traceability": map[string]any{
			"control_plan_id":    out.Traceability.ControlPlanID,
			"inspection_plan_id": out.Traceability.InspectionPlanID,
			"linked_cp_item_ids": out.Traceability.LinkedCPItemIDs,
		},
	})
}

func (h *handler) repair(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	out, err := h.svc.RepairTraceability(r.Context(), docchain.RepairTraceabilityInput{ProductID: id})

	steps := make([]map[string]any, 0, len(out.Steps))
	for _, step := range out.Steps {
		steps = append(steps, map[string]any{
			"stage":  step.Stage,
			"status": step.Status,
			"id":     step.ID,
			"count":  step.Count,
		})
	}
	body := map[string]any{
		"run_id": out.RunID,
		"steps":  steps,
		"summary": map[string]any{
			"generated_stages": out.Summary.GeneratedStages,
			"existing_stages":  out.Summary.ExistingStages,
		},
	}
	if err != nil {
		// Ship the partial step report alongside the failure.
		body["error"] = err.Error()
		writeJSON(w, r, errs.HTTPStatus(err), body)
		return
	}
	writeJSON(w, r, http.StatusOK, body)
}

func (h *handler) checkConsistency(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	persist := r.URL.Query().Get("persist") == "1" || r.URL.Query().Get("persist") == "true"
	out, err := h.svc.CheckConsistency(r.Context(), docchain.CheckConsistencyInput{RootID: id, Persist: persist})
	if err != nil {
		writeError(w, r, err)
		return
	}

	findings := make([]map[string]any, 0, len(out.Findings))
	for _, finding := range out.Findings {
		findings = append(findings, map[string]any{
			"rule":        finding.Rule,
			"severity":    finding.Severity,
			"target_kind": finding.TargetKind,
			"target_id":   finding.TargetID,
			"message":     finding.Message,
		})
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"persisted": persist,
		"findings":  findings,
		"counts": map[string]int{
			"high":   out.Counts[quality.SeverityHigh],
			"medium": out.Counts[quality.SeverityMedium],
			"low":    out.Counts[quality.SeverityLow],
		},
	})
}

func pathID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "invalid id: " + raw})
		return 0, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logging.Error(r.Context(), "request failed", slog.Any("err", errs.Loggable(err)))
	}
	writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Warn(r.Context(), "write response failed", slog.Any("err", errs.Loggable(err)))
	}
}
