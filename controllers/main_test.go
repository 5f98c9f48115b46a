package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/e-learning-backend/config"
	"github.com/vnkhanh/e-learning-backend/controllers"
	"github.com/vnkhanh/e-learning-backend/middleware"
	"github.com/vnkhanh/e-learning-backend/models"
	"github.com/vnkhanh/e-learning-backend/routes"
	"github.com/vnkhanh/e-learning-backend/services"
	"github.com/vnkhanh/e-learning-backend/ws"
)

const testSecret = "test-secret"

// recordingMailer captures outgoing mail instead of dialing SMTP. Sends
// happen on background goroutines, hence the mutex.
type recordingMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}

type stubTextGenerator struct {
	mu    sync.Mutex
	reply string
	err   error
}

func (s *stubTextGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reply, s.err
}

func (s *stubTextGenerator) set(reply string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reply = reply
	s.err = err
}

type stubSynthesizer struct{}

func (s *stubSynthesizer) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	return []byte("mp3"), nil
}

type memoryAudioStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *memoryAudioStore) Save(filename string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[filename] = data
	return filename, nil
}

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	mailer *recordingMailer
	text   *stubTextGenerator
	jobs   *services.JobRegistry
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))

	mailer := &recordingMailer{}
	text := &stubTextGenerator{}
	jobs := services.NewJobRegistry()
	pool := services.NewWorkerPool(2)
	t.Cleanup(pool.Stop)

	hub := ws.NewHub()
	generator := &services.LessonGenerator{
		DB:    db,
		Text:  text,
		TTS:   &stubSynthesizer{},
		Audio: &memoryAudioStore{files: make(map[string][]byte)},
		Jobs:  jobs,
		Notify: func(job services.GenerationJob) {
			hub.BroadcastJSON(job.ID.String(), job)
		},
	}

	handlers := &routes.Handlers{
		Auth: &controllers.AuthController{
			DB:        db,
			Mailer:    mailer,
			JWTSecret: testSecret,
			TokenTTL:  time.Hour,
		},
		Lessons:     &controllers.LessonController{DB: db, Generator: generator},
		Quizzes:     &controllers.QuizController{DB: db},
		Questions:   &controllers.QuestionController{DB: db},
		Generate:    &controllers.GenerateController{Generator: generator, Jobs: jobs, Pool: pool},
		WS:          &ws.Handler{Hub: hub, JWTSecret: testSecret},
		RequireAuth: middleware.RequireAuth(db, testSecret),
	}

	router := routes.SetupRouter(gin.New(), handlers)
	return &testEnv{router: router, db: db, mailer: mailer, text: text, jobs: jobs}
}

func (e *testEnv) doJSON(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) doForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// latestCode reads the newest verification code stored for an address,
// standing in for reading the mail.
func (e *testEnv) latestCode(t *testing.T, email, purpose string) string {
	t.Helper()
	var entry models.VerificationCode
	err := e.db.Where("email = ? AND purpose = ?", email, purpose).
		Order("created_at DESC").First(&entry).Error
	require.NoError(t, err)
	return entry.Code
}

// register walks the full initiate/confirm/login flow and returns a
// bearer token for the new account.
func (e *testEnv) register(t *testing.T, email, password string) string {
	t.Helper()

	rec := e.doJSON(t, http.MethodPost, "/auth/users/register/initiate", "", gin.H{"email": email})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	code := e.latestCode(t, email, models.PurposeRegistration)
	rec = e.doJSON(t, http.MethodPost, "/auth/users/register/confirm", "", gin.H{
		"email":    email,
		"code":     code,
		"fullname": "Test User",
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	return e.login(t, email, password)
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()

	rec := e.doForm(t, "/auth/users/login", url.Values{
		"username": {email},
		"password": {password},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	token, ok := decodeBody(t, rec)["access_token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

// createLesson makes a plain lesson through the API and returns its id.
func (e *testEnv) createLesson(t *testing.T, token, title string) uuid.UUID {
	t.Helper()

	rec := e.doJSON(t, http.MethodPost, "/lessons", token, gin.H{
		"title":   title,
		"content": []gin.H{{"type": "text", "value": "Some lesson text."}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	id, err := uuid.Parse(decodeBody(t, rec)["lesson_id"].(string))
	require.NoError(t, err)
	return id
}
