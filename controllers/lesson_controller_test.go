package controllers_test

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/e-learning-backend/models"
)

func TestLessonCRUD(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "owner@example.com", "s3cret!")

	rec := env.doJSON(t, http.MethodPost, "/lessons", token, gin.H{
		"title":       "Photosynthesis",
		"description": "Light into sugar",
		"position":    1,
		"content":     []gin.H{{"type": "text", "value": "Plants convert light."}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decodeBody(t, rec)
	lessonID := created["lesson_id"].(string)
	// Narration ran against the stub synthesizer on create.
	assert.NotEmpty(t, created["audio_file_path"])

	rec = env.doJSON(t, http.MethodGet, "/lessons/"+lessonID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Photosynthesis", decodeBody(t, rec)["title"])

	rec = env.doJSON(t, http.MethodGet, "/lessons", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), lessonID)

	// Partial update: the description must survive a title-only payload.
	rec = env.doJSON(t, http.MethodPut, "/lessons/"+lessonID, token, gin.H{"title": "Photosynthesis II"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody(t, rec)
	assert.Equal(t, "Photosynthesis II", updated["title"])
	assert.Equal(t, "Light into sugar", updated["description"])

	rec = env.doJSON(t, http.MethodDelete, "/lessons/"+lessonID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(t, http.MethodGet, "/lessons/"+lessonID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLessonOwnership(t *testing.T) {
	env := newTestEnv(t)
	ownerToken := env.register(t, "owner@example.com", "s3cret!")
	otherToken := env.register(t, "other@example.com", "s3cret!")

	lessonID := env.createLesson(t, ownerToken, "Private Lesson")

	// Someone else's lesson is forbidden, not hidden.
	rec := env.doJSON(t, http.MethodGet, "/lessons/"+lessonID.String(), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.doJSON(t, http.MethodDelete, "/lessons/"+lessonID.String(), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// A lesson that never existed is a plain not-found.
	rec = env.doJSON(t, http.MethodGet, "/lessons/"+uuid.NewString(), ownerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.doJSON(t, http.MethodGet, "/lessons/not-a-uuid", ownerToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLessonDeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "owner@example.com", "s3cret!")
	lessonID := env.createLesson(t, token, "With Quiz")

	rec := env.doJSON(t, http.MethodPost, "/quizzes?lesson_id="+lessonID.String(), token, gin.H{"title": "Check"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	quizID := decodeBody(t, rec)["quiz_id"].(string)

	rec = env.doJSON(t, http.MethodPost, "/questions?quiz_id="+quizID, token, gin.H{
		"question_text":  "Is water wet?",
		"question_type":  models.QuestionTypeTrueFalse,
		"correct_answer": "true",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.doJSON(t, http.MethodDelete, "/lessons/"+lessonID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var quizzes, questions int64
	require.NoError(t, env.db.Model(&models.Quiz{}).Count(&quizzes).Error)
	require.NoError(t, env.db.Model(&models.Question{}).Count(&questions).Error)
	assert.Zero(t, quizzes)
	assert.Zero(t, questions)
}

func TestLessonAudio(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "owner@example.com", "s3cret!")
	lessonID := env.createLesson(t, token, "Narrated")

	// Local file on disk is streamed.
	audioFile := filepath.Join(t.TempDir(), "narration.mp3")
	require.NoError(t, os.WriteFile(audioFile, []byte("mp3-bytes"), 0o644))
	require.NoError(t, env.db.Model(&models.Lesson{}).Where("id = ?", lessonID).
		Update("audio_file_path", audioFile).Error)

	rec := env.doJSON(t, http.MethodGet, "/lessons/"+lessonID.String()+"/audio", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "mp3-bytes", rec.Body.String())

	// Bucket URLs are redirected to.
	require.NoError(t, env.db.Model(&models.Lesson{}).Where("id = ?", lessonID).
		Update("audio_file_path", "https://bucket.example.com/audio/x.mp3").Error)
	rec = env.doJSON(t, http.MethodGet, "/lessons/"+lessonID.String()+"/audio", token, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://bucket.example.com/audio/x.mp3", rec.Header().Get("Location"))

	// No narration yet.
	require.NoError(t, env.db.Model(&models.Lesson{}).Where("id = ?", lessonID).
		Update("audio_file_path", "").Error)
	rec = env.doJSON(t, http.MethodGet, "/lessons/"+lessonID.String()+"/audio", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
