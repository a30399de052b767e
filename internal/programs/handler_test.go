package programs_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mstojkov/fittracker/internal/exercises"
	"github.com/mstojkov/fittracker/internal/programs"
	"github.com/mstojkov/fittracker/internal/telemetry/metrics"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// TestMain will run goleak after all tests have been run in the package
// to detect any goroutine leaks
func TestMain(m *testing.M) {
	m.Run()
	goleak.VerifyTestMain(m)
}

const testProgramJson = `{
	"title": "Верх тела",
	"exercises": [
		{"name": "Жим лёжа", "sets": 3, "reps": 8, "weight": 60},
		{"name": "Подтягивания"}
	]
}`

func multipartBody(t *testing.T, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "program.json")
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestHandler_HandleUpload(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockprogramsRepo(ctrl)
	h := programs.NewHandler(mockRepo, metrics.NewTestManager())

	mockRepo.EXPECT().
		Add(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, p programs.Program) (*programs.Program, error) {
			assert.Equal(t, "Верх тела", p.Title)
			require.Len(t, p.Exercises, 2)
			assert.Equal(t, "Жим лёжа", p.Exercises[0].Name)
			assert.Equal(t, 3, p.Exercises[0].Sets)
			assert.Equal(t, 8, p.Exercises[0].Reps)
			assert.Equal(t, float64(60), p.Exercises[0].Weight)
			// defaults applied for the second exercise
			assert.Equal(t, 1, p.Exercises[1].Sets)
			assert.Equal(t, 1, p.Exercises[1].Reps)
			p.ID = 14
			return &p, nil
		})

	body, contentType := multipartBody(t, testProgramJson)
	req, err := http.NewRequest("POST", "/upload-program", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleUpload).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp programs.Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 14, resp.ID)
	assert.Equal(t, "Верх тела", resp.Title)
	assert.Equal(t, 2, resp.ExercisesCount)
}

func TestHandler_HandleUpload_RawBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockprogramsRepo(ctrl)
	h := programs.NewHandler(mockRepo, metrics.NewTestManager())

	mockRepo.EXPECT().
		Add(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, p programs.Program) (*programs.Program, error) {
			p.ID = 1
			return &p, nil
		})

	req, err := http.NewRequest("POST", "/upload-program", strings.NewReader(testProgramJson))
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleUpload).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestHandler_HandleUpload_InvalidJson(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockprogramsRepo(ctrl)
	h := programs.NewHandler(mockRepo, metrics.NewTestManager())

	body, contentType := multipartBody(t, "definitely not json {{")
	req, err := http.NewRequest("POST", "/upload-program", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleUpload).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "parse failed")
}

func TestHandler_HandleUpload_InvalidProgram(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockprogramsRepo(ctrl)
	h := programs.NewHandler(mockRepo, metrics.NewTestManager())

	for name, content := range map[string]string{
		"missing title":    `{"exercises": []}`,
		"null exercises":   `{"title": "Ноги"}`,
		"invalid exercise": `{"title": "Ноги", "exercises": [{"sets": 3}]}`,
		"blank title":      `{"title": "  ", "exercises": []}`,
	} {
		t.Run(name, func(t *testing.T) {
			body, contentType := multipartBody(t, content)
			req, err := http.NewRequest("POST", "/upload-program", body)
			require.NoError(t, err)
			req.Header.Set("Content-Type", contentType)

			rr := httptest.NewRecorder()
			http.HandlerFunc(h.HandleUpload).ServeHTTP(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandler_HandleList(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockprogramsRepo(ctrl)
	h := programs.NewHandler(mockRepo, metrics.NewTestManager())

	stored := []programs.Program{
		{ID: 1, Title: "Верх тела", Exercises: []exercises.Exercise{
			{Name: "Жим лёжа", Sets: 3, Reps: 8},
			{Name: "Подтягивания", Sets: 1, Reps: 1},
		}},
		{ID: 2, Title: "Ноги", Exercises: []exercises.Exercise{}},
	}
	mockRepo.EXPECT().
		ListAll(gomock.Any()).
		Return(stored, nil)

	req, err := http.NewRequest("GET", "/programs", nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleList).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var listed []programs.Summary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	assert.Equal(t, []programs.Summary{
		{ID: 1, Title: "Верх тела", ExercisesCount: 2},
		{ID: 2, Title: "Ноги", ExercisesCount: 0},
	}, listed)
}

func TestHandler_HandleGet(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockprogramsRepo(ctrl)
	h := programs.NewHandler(mockRepo, metrics.NewTestManager())

	stored := &programs.Program{ID: 5, Title: "Ноги", Exercises: []exercises.Exercise{
		{Name: "Приседания", Sets: 5, Reps: 5, Weight: 80},
	}}
	mockRepo.EXPECT().
		Get(gomock.Any(), 5).
		Return(stored, nil)

	req, err := http.NewRequest("GET", "/programs/5", nil)
	require.NoError(t, err)
	req = mux.SetURLVars(req, map[string]string{"id": "5"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleGet).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var fetched programs.Program
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &fetched))
	assert.Equal(t, *stored, fetched)
}

func TestHandler_HandleGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockprogramsRepo(ctrl)
	h := programs.NewHandler(mockRepo, metrics.NewTestManager())

	mockRepo.EXPECT().
		Get(gomock.Any(), 9999).
		Return(nil, programs.ErrProgramNotFound)

	req, err := http.NewRequest("GET", "/programs/9999", nil)
	require.NoError(t, err)
	req = mux.SetURLVars(req, map[string]string{"id": "9999"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleGet).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "program not found")
}

func TestHandler_HandleUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockprogramsRepo(ctrl)
	h := programs.NewHandler(mockRepo, metrics.NewTestManager())

	mockRepo.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, p *programs.Program) error {
			assert.Equal(t, 7, p.ID)
			assert.Equal(t, "Верх тела", p.Title)
			return nil
		})

	req, err := http.NewRequest("PUT", "/programs/7", strings.NewReader(testProgramJson))
	require.NoError(t, err)
	req = mux.SetURLVars(req, map[string]string{"id": "7"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleUpdate).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "обновлена")
	assert.Contains(t, rr.Body.String(), "Верх тела")
}

func TestHandler_HandleUpdate_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockprogramsRepo(ctrl)
	h := programs.NewHandler(mockRepo, metrics.NewTestManager())

	mockRepo.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		Return(programs.ErrProgramNotFound)

	req, err := http.NewRequest("PUT", "/programs/9999", strings.NewReader(testProgramJson))
	require.NoError(t, err)
	req = mux.SetURLVars(req, map[string]string{"id": "9999"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleUpdate).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_HandleDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockprogramsRepo(ctrl)
	h := programs.NewHandler(mockRepo, metrics.NewTestManager())

	mockRepo.EXPECT().
		Delete(gomock.Any(), 3).
		Return("Ноги", nil)

	req, err := http.NewRequest("DELETE", "/programs/3", nil)
	require.NoError(t, err)
	req = mux.SetURLVars(req, map[string]string{"id": "3"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleDelete).ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Ноги")
	assert.Contains(t, rr.Body.String(), "удалена")
}

func TestHandler_HandleDelete_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockprogramsRepo(ctrl)
	h := programs.NewHandler(mockRepo, metrics.NewTestManager())

	mockRepo.EXPECT().
		Delete(gomock.Any(), 9999).
		Return("", programs.ErrProgramNotFound)

	req, err := http.NewRequest("DELETE", "/programs/9999", nil)
	require.NoError(t, err)
	req = mux.SetURLVars(req, map[string]string{"id": "9999"})

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.HandleDelete).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
