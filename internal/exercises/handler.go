package exercises

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/mstojkov/fittracker/internal/telemetry/tracing"
	"github.com/mstojkov/fittracker/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=exercises_test

type exercisesRepo interface {
	Get(ctx context.Context, id int) (*Exercise, error)
	ListAll(ctx context.Context) ([]Exercise, error)
}

type Handler struct {
	repo exercisesRepo
}

func NewHandler(repo exercisesRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.list")
	defer span.End()

	exercises, err := handler.repo.ListAll(ctx)
	if err != nil {
		log.Errorf("list exercises error: %s", err)
		http.Error(w, "failed to get exercises", http.StatusInternalServerError)
		return
	}

	exercisesJson, err := json.Marshal(exercises)
	if err != nil {
		log.Errorf("marshal exercises error: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, exercisesJson, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.get")
	defer span.End()

	vars := mux.Vars(r)
	idStr := vars["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	e, err := handler.repo.Get(ctx, id)
	if errors.Is(err, ErrExerciseNotFound) {
		log.Debugf("exercise %d not found", id)
		http.Error(w, "exercise not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to get exercise %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	exerciseJson, err := json.Marshal(e)
	if err != nil {
		log.Errorf("failed to marshal exercise: %s", err)
		http.Error(w, "failed to marshal exercise", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, exerciseJson, http.StatusOK)
}
