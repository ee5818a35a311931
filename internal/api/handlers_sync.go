package api

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"rateservice/internal/service"
	"rateservice/internal/worker"
)

// SyncEnqueuer queues a sync run for the worker instead of running it inline.
type SyncEnqueuer interface {
	EnqueueSync(ctx context.Context, trigger service.Trigger) (string, error)
}

// HandleManualUpdate godoc
// @Summary Trigger a rate update
// @Description Runs a sync now using the cached feed snapshot when one is fresh. With async=true the run is queued for the worker instead.
// @Tags sync
// @Produce json
// @Security ApiKeyAuth
// @Param async query bool false "Queue the run instead of waiting for it"
// @Success 200 {object} SyncResponse "Sync completed"
// @Success 202 {object} EnqueueResponse "Sync queued"
// @Failure 409 {object} ErrorResponse "A sync is already queued"
// @Failure 429 {object} ErrorResponse "Too many sync requests"
// @Failure 503 {object} ErrorResponse "No exchange rate data available"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates/update [post]
func HandleManualUpdate(svc service.SyncServiceInterface, enq SyncEnqueuer, logger *zap.SugaredLogger) http.HandlerFunc {
	return handleSync(svc, enq, service.TriggerManual, logger)
}

// HandleProviderResync godoc
// @Summary Force a resync from the provider
// @Description Like /rates/update but always fetches a fresh document from the central bank, bypassing the feed cache.
// @Tags sync
// @Produce json
// @Security ApiKeyAuth
// @Param async query bool false "Queue the run instead of waiting for it"
// @Success 200 {object} SyncResponse "Sync completed"
// @Success 202 {object} EnqueueResponse "Sync queued"
// @Failure 409 {object} ErrorResponse "A sync is already queued"
// @Failure 429 {object} ErrorResponse "Too many sync requests"
// @Failure 503 {object} ErrorResponse "No exchange rate data available"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /rates/sync [post]
func HandleProviderResync(svc service.SyncServiceInterface, enq SyncEnqueuer, logger *zap.SugaredLogger) http.HandlerFunc {
	return handleSync(svc, enq, service.TriggerResync, logger)
}

func handleSync(svc service.SyncServiceInterface, enq SyncEnqueuer, trigger service.Trigger, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("async") == "true" && enq != nil {
			id, err := enq.EnqueueSync(r.Context(), trigger)
			if errors.Is(err, worker.ErrSyncAlreadyQueued) {
				writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
				return
			}
			if err != nil {
				logger.Errorw("Failed to enqueue sync", "trigger", trigger, "error", err)
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
				return
			}
			writeJSON(w, http.StatusAccepted, EnqueueResponse{TaskID: id, Status: "queued"})
			return
		}

		// A started run outlives the client connection.
		res, err := svc.RunSync(context.WithoutCancel(r.Context()), trigger)
		if err != nil {
			logger.Errorw("Sync failed", "trigger", trigger, "error", err)
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, syncResponse(res))
	}
}
