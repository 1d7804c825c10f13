package v1

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devpulse/devpulse-api/internal/api/common"
	"github.com/devpulse/devpulse-api/internal/cache"
	"github.com/devpulse/devpulse-api/internal/scheduler"
)

// SchedulerStatusProvider reports the system job state
type SchedulerStatusProvider interface {
	Status() scheduler.Status
}

// PeriodicLister lists users with an active periodic sync
type PeriodicLister interface {
	PeriodicSyncs() []string
}

// CacheRouter creates the router for /api/v1/cache
func CacheRouter(c *cache.Cache) http.Handler {
	r := chi.NewRouter()

	r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
		common.WriteJSONResponse(w, c.Stats(), http.StatusOK)
	})

	r.Delete("/", func(w http.ResponseWriter, _ *http.Request) {
		c.Clear()
		slog.Info("Cache cleared")
		w.WriteHeader(http.StatusNoContent)
	})

	r.Delete("/users/{userID}", func(w http.ResponseWriter, r *http.Request) {
		userID, err := common.GetAndValidateURLParam(r, "userID")
		if err != nil {
			common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		n := c.InvalidateUser(userID)
		common.WriteJSONResponse(w, CacheInvalidateResponse{UserID: userID, Invalidated: n}, http.StatusOK)
	})

	return r
}

// SchedulerRouter creates the router for /api/v1/scheduler
func SchedulerRouter(sched SchedulerStatusProvider, periodic PeriodicLister) http.Handler {
	r := chi.NewRouter()
	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		resp := SchedulerStatusResponse{PeriodicSyncs: []string{}}
		if sched != nil {
			resp.System = sched.Status()
		}
		if periodic != nil {
			if users := periodic.PeriodicSyncs(); users != nil {
				resp.PeriodicSyncs = users
			}
		}
		common.WriteJSONResponse(w, resp, http.StatusOK)
	})
	return r
}
