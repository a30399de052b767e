package workouts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mstojkov/fittracker/internal/telemetry/metrics"
	"github.com/mstojkov/fittracker/internal/telemetry/tracing"
	"github.com/mstojkov/fittracker/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=workouts_test

type workoutsRepo interface {
	Add(ctx context.Context, workout FinishedWorkout) (*FinishedWorkout, error)
	ListAll(ctx context.Context) ([]FinishedWorkout, error)
}

type Handler struct {
	repo    workoutsRepo
	metrics *metrics.Manager
}

func NewHandler(repo workoutsRepo, metrics *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metrics,
	}
}

func (handler *Handler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.finish")
	defer span.End()

	var payload Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, fmt.Sprintf("error, workout parse failed: %s", err), http.StatusBadRequest)
		return
	}

	workout, err := payload.ToFinishedWorkout(time.Now())
	if err != nil {
		http.Error(w, fmt.Sprintf("error, invalid workout: %s", err), http.StatusBadRequest)
		return
	}

	added, err := handler.repo.Add(ctx, workout)
	if err != nil {
		log.Errorf("failed to add finished workout: %s", err)
		http.Error(w, "error, failed to save workout", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterWorkoutsFinished.Inc()
	log.Printf("workout finished: [%s] %ds: %d", added.FinishedAt, added.DurationSec, added.ID)

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"id":%d}`, added.ID))
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.history")
	defer span.End()

	workouts, err := handler.repo.ListAll(ctx)
	if err != nil {
		log.Errorf("list finished workouts error: %s", err)
		http.Error(w, "failed to get workout history", http.StatusInternalServerError)
		return
	}

	workoutsJson, err := json.Marshal(workouts)
	if err != nil {
		log.Errorf("marshal workout history: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, workoutsJson, http.StatusOK)
}

func (handler *Handler) HandleExportHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.exporthistory")
	defer span.End()

	workouts, err := handler.repo.ListAll(ctx)
	if err != nil {
		log.Errorf("list finished workouts error: %s", err)
		http.Error(w, "failed to get workout history", http.StatusInternalServerError)
		return
	}

	if len(workouts) == 0 {
		http.Error(w, "no finished workouts to export", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename=history.csv")
	pkg.WriteResponseBytes(w, pkg.ContentType.CSV, HistoryCSV(workouts), http.StatusOK)
}
