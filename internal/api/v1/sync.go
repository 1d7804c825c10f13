package v1

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/devpulse/devpulse-api/internal/api/common"
	"github.com/devpulse/devpulse-api/internal/store"
	pkgsync "github.com/devpulse/devpulse-api/internal/sync"
)

// Periodic sync interval bounds, in minutes
const (
	DefaultIntervalMinutes = 15
	MinIntervalMinutes     = 5
	MaxIntervalMinutes     = 1440
)

// SyncRoutes exposes manual and periodic sync operations
type SyncRoutes struct {
	service pkgsync.Service
}

// NewSyncRoutes creates the sync routes
func NewSyncRoutes(svc pkgsync.Service) *SyncRoutes {
	return &SyncRoutes{service: svc}
}

// SyncRouter creates the router for /api/v1/sync
func SyncRouter(svc pkgsync.Service) http.Handler {
	routes := NewSyncRoutes(svc)

	r := chi.NewRouter()
	r.Post("/all", routes.syncAll)
	r.Route("/{userID}", func(r chi.Router) {
		r.Post("/", routes.trigger)
		r.Post("/periodic", routes.startPeriodic)
		r.Delete("/periodic", routes.stopPeriodic)
		r.Get("/status", routes.userStatus)
		r.Get("/stats", routes.userStats)
	})
	return r
}

func (routes *SyncRoutes) trigger(w http.ResponseWriter, r *http.Request) {
	userID, err := common.GetAndValidateURLParam(r, "userID")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	res := routes.service.SyncUserData(r.Context(), userID, 0)
	resp := TriggerSyncResponse{
		Success:          res.Success,
		UserID:           userID,
		SyncedAt:         res.SyncedAt,
		SyncedActivities: res.SyncedActivities,
		SyncedRepos:      res.SyncedRepos,
		Attempt:          res.Attempt,
	}
	if res.Success {
		resp.Message = fmt.Sprintf("Synced %d activities and %d repositories", res.SyncedActivities, res.SyncedRepos)
		common.WriteJSONResponse(w, resp, http.StatusOK)
		return
	}

	resp.Message = res.Error
	status := http.StatusBadGateway
	if res.Error == store.ErrConnectionMissing.Error() {
		status = http.StatusNotFound
	}
	common.WriteJSONResponse(w, resp, status)
}

func (routes *SyncRoutes) startPeriodic(w http.ResponseWriter, r *http.Request) {
	userID, err := common.GetAndValidateURLParam(r, "userID")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req StartPeriodicSyncRequest
	if err := common.DecodeJSONBody(r, &req); err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	minutes := DefaultIntervalMinutes
	if req.IntervalMinutes != nil {
		minutes = *req.IntervalMinutes
	}
	if minutes < MinIntervalMinutes || minutes > MaxIntervalMinutes {
		common.WriteErrorResponse(w,
			fmt.Sprintf("intervalMinutes must be between %d and %d", MinIntervalMinutes, MaxIntervalMinutes),
			http.StatusBadRequest)
		return
	}

	if err := routes.service.StartPeriodicSync(r.Context(), userID, time.Duration(minutes)*time.Minute); err != nil {
		slog.Error("Failed to start periodic sync", "user_id", userID, "error", err)
		common.WriteErrorResponse(w, "Failed to start periodic sync", http.StatusInternalServerError)
		return
	}
	common.WriteJSONResponse(w, PeriodicSyncResponse{
		Success:         true,
		Message:         fmt.Sprintf("Periodic sync started (every %d minutes)", minutes),
		UserID:          userID,
		IntervalMinutes: minutes,
	}, http.StatusOK)
}

func (routes *SyncRoutes) stopPeriodic(w http.ResponseWriter, r *http.Request) {
	userID, err := common.GetAndValidateURLParam(r, "userID")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	msg := "Periodic sync stopped"
	if !routes.service.StopPeriodicSync(userID) {
		msg = "No periodic sync was running"
	}
	common.WriteJSONResponse(w, PeriodicSyncResponse{
		Success: true,
		Message: msg,
		UserID:  userID,
	}, http.StatusOK)
}

func (routes *SyncRoutes) userStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := common.GetAndValidateURLParam(r, "userID")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	status, err := routes.service.UserStatus(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to get sync status", "user_id", userID, "error", err)
		common.WriteErrorResponse(w, "Failed to get sync status", http.StatusInternalServerError)
		return
	}
	common.WriteJSONResponse(w, status, http.StatusOK)
}

func (routes *SyncRoutes) userStats(w http.ResponseWriter, r *http.Request) {
	userID, err := common.GetAndValidateURLParam(r, "userID")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	stats, err := routes.service.UserStats(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to get sync stats", "user_id", userID, "error", err)
		common.WriteErrorResponse(w, "Failed to get sync stats", http.StatusInternalServerError)
		return
	}
	common.WriteJSONResponse(w, stats, http.StatusOK)
}

func (routes *SyncRoutes) syncAll(w http.ResponseWriter, r *http.Request) {
	summary, err := routes.service.SyncAllUsers(r.Context())
	if err != nil {
		slog.Error("Failed to sync all users", "error", err)
		common.WriteErrorResponse(w, "Failed to sync all users", http.StatusInternalServerError)
		return
	}
	common.WriteJSONResponse(w, SyncAllResponse{
		Success: summary.FailedSyncs == 0,
		Message: fmt.Sprintf("Synced %d/%d users", summary.SuccessfulSyncs, summary.TotalUsers),
		Summary: summary,
	}, http.StatusOK)
}
