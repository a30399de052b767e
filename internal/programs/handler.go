package programs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/mstojkov/fittracker/internal/telemetry/metrics"
	"github.com/mstojkov/fittracker/internal/telemetry/tracing"
	"github.com/mstojkov/fittracker/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=programs_test

const maxUploadSizeBytes = 8 << 20

type programsRepo interface {
	Add(ctx context.Context, program Program) (*Program, error)
	Get(ctx context.Context, id int) (*Program, error)
	ListAll(ctx context.Context) ([]Program, error)
	Update(ctx context.Context, program *Program) error
	Delete(ctx context.Context, id int) (string, error)
}

type Handler struct {
	repo    programsRepo
	metrics *metrics.Manager
}

func NewHandler(repo programsRepo, metrics *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metrics,
	}
}

// readUploadBody accepts a program either as a multipart form with a "file"
// part or as a raw request body.
func readUploadBody(r *http.Request) ([]byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSizeBytes); err != nil {
			return nil, fmt.Errorf("parse multipart form: %w", err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("read form file: %w", err)
		}
		defer file.Close()
		return io.ReadAll(file)
	}
	return io.ReadAll(io.LimitReader(r.Body, maxUploadSizeBytes))
}

func (handler *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.upload")
	defer span.End()

	content, err := readUploadBody(r)
	if err != nil {
		log.Errorf("upload program, read body: %s", err)
		http.Error(w, fmt.Sprintf("error, read upload: %s", err), http.StatusBadRequest)
		return
	}

	var payload Payload
	if err := json.Unmarshal(content, &payload); err != nil {
		log.Debugf("upload program, parse error: %s", err)
		http.Error(w, fmt.Sprintf("error, program parse failed: %s", err), http.StatusBadRequest)
		return
	}

	program, err := payload.ToProgram()
	if err != nil {
		http.Error(w, fmt.Sprintf("error, invalid program: %s", err), http.StatusBadRequest)
		return
	}

	added, err := handler.repo.Add(ctx, program)
	if err != nil {
		log.Errorf("failed to add program [%s]: %s", program.Title, err)
		http.Error(w, "error, failed to save program", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterProgramsUploaded.Inc()
	log.Printf("new program uploaded: [%s]: %d", added.Title, added.ID)

	respJson, err := json.Marshal(added.Summary())
	if err != nil {
		log.Errorf("marshal uploaded program: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.list")
	defer span.End()

	programs, err := handler.repo.ListAll(ctx)
	if err != nil {
		log.Errorf("list programs error: %s", err)
		http.Error(w, "failed to get programs", http.StatusInternalServerError)
		return
	}

	summaries := make([]Summary, 0, len(programs))
	for _, p := range programs {
		summaries = append(summaries, p.Summary())
	}

	summariesJson, err := json.Marshal(summaries)
	if err != nil {
		log.Errorf("marshal program summaries: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, summariesJson, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.get")
	defer span.End()

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	p, err := handler.repo.Get(ctx, id)
	if errors.Is(err, ErrProgramNotFound) {
		log.Debugf("program %d not found", id)
		http.Error(w, "program not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to get program %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	programJson, err := json.Marshal(p)
	if err != nil {
		log.Errorf("failed to marshal program: %s", err)
		http.Error(w, "failed to marshal program", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, programJson, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "PUT, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.update")
	defer span.End()

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var payload Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, fmt.Sprintf("error, program parse failed: %s", err), http.StatusBadRequest)
		return
	}

	program, err := payload.ToProgram()
	if err != nil {
		http.Error(w, fmt.Sprintf("error, invalid program: %s", err), http.StatusBadRequest)
		return
	}
	program.ID = id

	err = handler.repo.Update(ctx, &program)
	if errors.Is(err, ErrProgramNotFound) {
		http.Error(w, "program not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to update program %d: %s", id, err)
		http.Error(w, "error, failed to update program", http.StatusInternalServerError)
		return
	}

	log.Printf("program updated: [%s]: %d", program.Title, program.ID)

	respJson, err := json.Marshal(struct {
		Message string  `json:"message"`
		Program Program `json:"program"`
	}{
		Message: fmt.Sprintf("Программа %d обновлена", id),
		Program: program,
	})
	if err != nil {
		log.Errorf("marshal updated program: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "DELETE, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.programs.delete")
	defer span.End()

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	title, err := handler.repo.Delete(ctx, id)
	if errors.Is(err, ErrProgramNotFound) {
		http.Error(w, "program not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to delete program %d: %s", id, err)
		http.Error(w, "error, failed to delete program", http.StatusInternalServerError)
		return
	}

	log.Printf("program deleted: [%s]: %d", title, id)

	respJson, err := json.Marshal(struct {
		Message string `json:"message"`
		Title   string `json:"title"`
	}{
		Message: fmt.Sprintf("Программа '%s' удалена", title),
		Title:   title,
	})
	if err != nil {
		log.Errorf("marshal delete response: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	vars := mux.Vars(r)
	idStr := vars["id"]
	if idStr == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
