package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/Driverassistance/driveassist-app/internal/garage"
	"github.com/Driverassistance/driveassist-app/internal/models"
	"github.com/Driverassistance/driveassist-app/internal/onboarding"
	"github.com/Driverassistance/driveassist-app/internal/pins"
)

// Garage defines the state operations the HTTP API exposes.
type Garage interface {
	Dashboard(ctx context.Context) (garage.Dashboard, error)

	Onboarding(ctx context.Context) (onboarding.View, error)
	MarkChecklist(ctx context.Context, item models.ChecklistItem, done bool) (onboarding.View, error)
	SnoozeChecklist(ctx context.Context, d time.Duration) (onboarding.View, error)
	CompleteChecklist(ctx context.Context) (onboarding.View, error)

	Profile(ctx context.Context) (models.VehicleProfile, error)
	SaveProfile(ctx context.Context, draft models.VehicleProfile) (models.VehicleProfile, error)
	AttachDocument(ctx context.Context, ref string) (models.VehicleProfile, error)
	RemoveDocument(ctx context.Context) (models.VehicleProfile, error)

	Plan(ctx context.Context) (models.MaintenancePlan, error)
	UpdateFixed(ctx context.Context, key string, in garage.ItemInput) (models.MaintenanceItem, error)
	AddCustom(ctx context.Context, in garage.ItemInput) (models.MaintenanceItem, error)
	UpdateCustom(ctx context.Context, id string, in garage.ItemInput) (models.MaintenanceItem, error)
	RemoveCustom(ctx context.Context, id string) error
	SaveNotes(ctx context.Context, notes string) (models.MaintenancePlan, error)

	Schedule(ctx context.Context) (models.ScheduleDates, error)
	SaveSchedule(ctx context.Context, draft models.ScheduleDates) (models.ScheduleDates, error)
	Thresholds(ctx context.Context) (models.Thresholds, error)
	SaveThresholds(ctx context.Context, th models.Thresholds) (models.Thresholds, error)
	Pins(ctx context.Context) (models.DashboardPins, error)
	TogglePin(ctx context.Context, id string) (models.DashboardPins, error)

	Expenses(ctx context.Context) (models.ExpenseLedger, error)
	AddExpense(ctx context.Context, in garage.ExpenseInput) (models.Expense, error)
	RemoveExpense(ctx context.Context, id string) error
	MonthlySummary(ctx context.Context, month time.Time) (models.MonthlySummary, error)
	PartsRequests(ctx context.Context) (models.PartsRequests, error)
	AddPartsRequest(ctx context.Context, in garage.PartsInput) (models.PartsRequest, error)
	RemovePartsRequest(ctx context.Context, id string) error
}

// GarageHandler serves the dashboard, onboarding and edit endpoints.
type GarageHandler struct {
	garage Garage
}

func NewGarageHandler(g Garage) *GarageHandler {
	return &GarageHandler{garage: g}
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("failed to encode response")
	}
}

// writeError maps service errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	var verr *garage.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Field: verr.Field})
	case errors.Is(err, garage.ErrNotFound),
		errors.Is(err, pins.ErrUnknownItem),
		errors.Is(err, onboarding.ErrUnknownChecklistItem):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, garage.ErrPersistence):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "storage unavailable"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "request cancelled"})
	default:
		log.WithError(err).Error("unexpected error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// decodeBody unmarshals the request body into v. An empty body leaves v as is.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
		return false
	}
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return false
	}
	return true
}

func respond(w http.ResponseWriter, v interface{}, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *GarageHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.garage.Dashboard(r.Context())
	respond(w, d, err)
}

func (h *GarageHandler) GetOnboarding(w http.ResponseWriter, r *http.Request) {
	v, err := h.garage.Onboarding(r.Context())
	respond(w, v, err)
}

func (h *GarageHandler) MarkChecklistItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Done *bool `json:"done"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	done := req.Done == nil || *req.Done
	v, err := h.garage.MarkChecklist(r.Context(), models.ChecklistItem(mux.Vars(r)["key"]), done)
	respond(w, v, err)
}

func (h *GarageHandler) SnoozeChecklist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Minutes int `json:"minutes"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Minutes < 0 {
		writeError(w, &garage.ValidationError{Field: "minutes", Reason: "must not be negative"})
		return
	}
	v, err := h.garage.SnoozeChecklist(r.Context(), time.Duration(req.Minutes)*time.Minute)
	respond(w, v, err)
}

func (h *GarageHandler) CompleteChecklist(w http.ResponseWriter, r *http.Request) {
	v, err := h.garage.CompleteChecklist(r.Context())
	respond(w, v, err)
}

func (h *GarageHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.garage.Profile(r.Context())
	respond(w, p, err)
}

// UpdateProfile accepts numbers or strings for every field.
func (h *GarageHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}
	p, err := h.garage.SaveProfile(r.Context(), models.DecodeProfile(body))
	respond(w, p, err)
}

func (h *GarageHandler) AttachDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ref string `json:"ref"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.garage.AttachDocument(r.Context(), req.Ref)
	respond(w, p, err)
}

func (h *GarageHandler) RemoveDocument(w http.ResponseWriter, r *http.Request) {
	p, err := h.garage.RemoveDocument(r.Context())
	respond(w, p, err)
}

func (h *GarageHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	p, err := h.garage.Plan(r.Context())
	respond(w, p, err)
}

func (h *GarageHandler) UpdateFixed(w http.ResponseWriter, r *http.Request) {
	var in garage.ItemInput
	if !decodeBody(w, r, &in) {
		return
	}
	it, err := h.garage.UpdateFixed(r.Context(), mux.Vars(r)["key"], in)
	respond(w, it, err)
}

func (h *GarageHandler) AddCustom(w http.ResponseWriter, r *http.Request) {
	var in garage.ItemInput
	if !decodeBody(w, r, &in) {
		return
	}
	it, err := h.garage.AddCustom(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *GarageHandler) UpdateCustom(w http.ResponseWriter, r *http.Request) {
	var in garage.ItemInput
	if !decodeBody(w, r, &in) {
		return
	}
	it, err := h.garage.UpdateCustom(r.Context(), mux.Vars(r)["id"], in)
	respond(w, it, err)
}

func (h *GarageHandler) RemoveCustom(w http.ResponseWriter, r *http.Request) {
	if err := h.garage.RemoveCustom(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GarageHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Notes string `json:"notes"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.garage.SaveNotes(r.Context(), req.Notes)
	respond(w, p, err)
}

func (h *GarageHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	s, err := h.garage.Schedule(r.Context())
	respond(w, s, err)
}

func (h *GarageHandler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	draft := models.DefaultSchedule()
	if !decodeBody(w, r, &draft) {
		return
	}
	s, err := h.garage.SaveSchedule(r.Context(), draft)
	respond(w, s, err)
}

func (h *GarageHandler) GetThresholds(w http.ResponseWriter, r *http.Request) {
	th, err := h.garage.Thresholds(r.Context())
	respond(w, th, err)
}

func (h *GarageHandler) UpdateThresholds(w http.ResponseWriter, r *http.Request) {
	th := models.DefaultThresholds()
	if !decodeBody(w, r, &th) {
		return
	}
	saved, err := h.garage.SaveThresholds(r.Context(), th)
	respond(w, saved, err)
}

func (h *GarageHandler) GetPins(w http.ResponseWriter, r *http.Request) {
	p, err := h.garage.Pins(r.Context())
	respond(w, p, err)
}

func (h *GarageHandler) TogglePin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.garage.TogglePin(r.Context(), req.ID)
	respond(w, p, err)
}

func (h *GarageHandler) GetExpenses(w http.ResponseWriter, r *http.Request) {
	l, err := h.garage.Expenses(r.Context())
	respond(w, l, err)
}

func (h *GarageHandler) AddExpense(w http.ResponseWriter, r *http.Request) {
	var in garage.ExpenseInput
	if !decodeBody(w, r, &in) {
		return
	}
	e, err := h.garage.AddExpense(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *GarageHandler) RemoveExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.garage.RemoveExpense(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetMonthlySummary reads ?month=YYYY-MM, defaulting to the current month.
func (h *GarageHandler) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	var month time.Time
	if v := r.URL.Query().Get("month"); v != "" {
		t, err := time.ParseInLocation("2006-01", v, time.Local)
		if err != nil {
			writeError(w, &garage.ValidationError{Field: "month", Reason: "expected YYYY-MM"})
			return
		}
		month = t
	}
	sum, err := h.garage.MonthlySummary(r.Context(), month)
	respond(w, sum, err)
}

func (h *GarageHandler) GetPartsRequests(w http.ResponseWriter, r *http.Request) {
	p, err := h.garage.PartsRequests(r.Context())
	respond(w, p, err)
}

func (h *GarageHandler) AddPartsRequest(w http.ResponseWriter, r *http.Request) {
	var in garage.PartsInput
	if !decodeBody(w, r, &in) {
		return
	}
	req, err := h.garage.AddPartsRequest(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (h *GarageHandler) RemovePartsRequest(w http.ResponseWriter, r *http.Request) {
	if err := h.garage.RemovePartsRequest(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
