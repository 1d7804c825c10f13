package v1

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/devpulse/devpulse-api/internal/api/common"
	"github.com/devpulse/devpulse-api/internal/dashboard"
)

// DashboardRoutes serves the cached dashboard reads
type DashboardRoutes struct {
	service dashboard.Service
}

// NewDashboardRoutes creates the dashboard routes
func NewDashboardRoutes(svc dashboard.Service) *DashboardRoutes {
	return &DashboardRoutes{service: svc}
}

// DashboardRouter creates the router for /api/v1/dashboard
func DashboardRouter(svc dashboard.Service) http.Handler {
	routes := NewDashboardRoutes(svc)

	r := chi.NewRouter()
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/metrics", routes.metrics)
		r.Get("/trend", routes.trend)
		r.Get("/calendar", routes.calendar)
	})
	return r
}

func (routes *DashboardRoutes) metrics(w http.ResponseWriter, r *http.Request) {
	userID, err := common.GetAndValidateURLParam(r, "userID")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	rng, err := dashboard.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	m, err := routes.service.Metrics(r.Context(), userID, rng)
	if err != nil {
		writeDashboardError(w, userID, err)
		return
	}
	common.WriteJSONResponse(w, m, http.StatusOK)
}

func (routes *DashboardRoutes) trend(w http.ResponseWriter, r *http.Request) {
	userID, err := common.GetAndValidateURLParam(r, "userID")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	rng, err := dashboard.ParseRange(r.URL.Query().Get("range"))
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	points, err := routes.service.Trend(r.Context(), userID, rng)
	if err != nil {
		writeDashboardError(w, userID, err)
		return
	}
	common.WriteJSONResponse(w, points, http.StatusOK)
}

func (routes *DashboardRoutes) calendar(w http.ResponseWriter, r *http.Request) {
	userID, err := common.GetAndValidateURLParam(r, "userID")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	year := time.Now().UTC().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			common.WriteErrorResponse(w, "year must be a number", http.StatusBadRequest)
			return
		}
		year = parsed
	}

	days, err := routes.service.Calendar(r.Context(), userID, year)
	if err != nil {
		writeDashboardError(w, userID, err)
		return
	}
	common.WriteJSONResponse(w, days, http.StatusOK)
}

func writeDashboardError(w http.ResponseWriter, userID string, err error) {
	if errors.Is(err, dashboard.ErrInvalidRange) || errors.Is(err, dashboard.ErrInvalidYear) {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	slog.Error("Dashboard read failed", "user_id", userID, "error", err)
	common.WriteErrorResponse(w, "Failed to load dashboard data", http.StatusInternalServerError)
}
