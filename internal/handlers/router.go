package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Driverassistance/driveassist-app/internal/metrics"
	"github.com/Driverassistance/driveassist-app/internal/middleware"
)

// RouterConfig collects what NewRouter wires together.
type RouterConfig struct {
	Garage      *GarageHandler
	Auth        *AuthHandler
	AuthMW      *middleware.AuthMiddleware
	RateLimiter *middleware.RateLimitMiddleware
	RateLimit   int // requests per minute per client, 0 disables
	Metrics     *metrics.Recorder
}

// NewRouter configures all API routes
func NewRouter(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", Health).Methods(http.MethodGet)
	r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/login", cfg.Auth.Login).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/session", cfg.Auth.Session).Methods(http.MethodGet)

	g := cfg.Garage
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/dashboard", g.GetDashboard).Methods(http.MethodGet)

	api.HandleFunc("/onboarding", g.GetOnboarding).Methods(http.MethodGet)
	api.HandleFunc("/onboarding/items/{key}", g.MarkChecklistItem).Methods(http.MethodPost)
	api.HandleFunc("/onboarding/snooze", g.SnoozeChecklist).Methods(http.MethodPost)
	api.HandleFunc("/onboarding/complete", g.CompleteChecklist).Methods(http.MethodPost)

	api.HandleFunc("/profile", g.GetProfile).Methods(http.MethodGet)
	api.HandleFunc("/profile", g.UpdateProfile).Methods(http.MethodPut)
	api.HandleFunc("/profile/document", g.AttachDocument).Methods(http.MethodPost)
	api.HandleFunc("/profile/document", g.RemoveDocument).Methods(http.MethodDelete)

	api.HandleFunc("/plan", g.GetPlan).Methods(http.MethodGet)
	api.HandleFunc("/plan/notes", g.UpdateNotes).Methods(http.MethodPut)
	api.HandleFunc("/plan/fixed/{key}", g.UpdateFixed).Methods(http.MethodPut)
	api.HandleFunc("/plan/custom", g.AddCustom).Methods(http.MethodPost)
	api.HandleFunc("/plan/custom/{id}", g.UpdateCustom).Methods(http.MethodPut)
	api.HandleFunc("/plan/custom/{id}", g.RemoveCustom).Methods(http.MethodDelete)

	api.HandleFunc("/schedule", g.GetSchedule).Methods(http.MethodGet)
	api.HandleFunc("/schedule", g.UpdateSchedule).Methods(http.MethodPut)
	api.HandleFunc("/thresholds", g.GetThresholds).Methods(http.MethodGet)
	api.HandleFunc("/thresholds", g.UpdateThresholds).Methods(http.MethodPut)

	api.HandleFunc("/pins", g.GetPins).Methods(http.MethodGet)
	api.HandleFunc("/pins/toggle", g.TogglePin).Methods(http.MethodPost)

	api.HandleFunc("/expenses", g.GetExpenses).Methods(http.MethodGet)
	api.HandleFunc("/expenses", g.AddExpense).Methods(http.MethodPost)
	api.HandleFunc("/expenses/summary", g.GetMonthlySummary).Methods(http.MethodGet)
	api.HandleFunc("/expenses/{id}", g.RemoveExpense).Methods(http.MethodDelete)
	api.HandleFunc("/parts", g.GetPartsRequests).Methods(http.MethodGet)
	api.HandleFunc("/parts", g.AddPartsRequest).Methods(http.MethodPost)
	api.HandleFunc("/parts/{id}", g.RemovePartsRequest).Methods(http.MethodDelete)

	r.Use(middleware.Logging(cfg.Metrics))
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.RateLimit(cfg.RateLimit, 60))
	}
	if cfg.AuthMW != nil {
		r.Use(cfg.AuthMW.Authenticate)
	}
	return r
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
