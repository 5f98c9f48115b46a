package controllers_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/e-learning-backend/models"
	"github.com/vnkhanh/e-learning-backend/utils"
)

func TestRegisterAndLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	token := env.register(t, "alice@example.com", "s3cret!")

	rec := env.doJSON(t, http.MethodGet, "/auth/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "alice@example.com", body["email"])
	assert.Equal(t, "Test User", body["fullname"])

	// Same address cannot start registering again.
	rec = env.doJSON(t, http.MethodPost, "/auth/users/register/initiate", "", gin.H{"email": "alice@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Wrong password is rejected without telling which part was wrong.
	rec = env.doForm(t, "/auth/users/login", url.Values{
		"username": {"alice@example.com"},
		"password": {"wrong"},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.doForm(t, "/auth/users/login", url.Values{
		"username": {"nobody@example.com"},
		"password": {"s3cret!"},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerificationCodeIsSingleUse(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/auth/users/register/initiate", "", gin.H{"email": "bob@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	code := env.latestCode(t, "bob@example.com", models.PurposeRegistration)

	confirm := gin.H{
		"email":    "bob@example.com",
		"code":     code,
		"fullname": "Bob",
		"password": "s3cret!",
	}
	rec = env.doJSON(t, http.MethodPost, "/auth/users/register/confirm", "", confirm)
	require.Equal(t, http.StatusOK, rec.Code)

	// The code was deleted on first use; replaying it fails.
	rec = env.doJSON(t, http.MethodPost, "/auth/users/register/confirm", "", confirm)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerificationCodeExpires(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodPost, "/auth/users/register/initiate", "", gin.H{"email": "late@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	code := env.latestCode(t, "late@example.com", models.PurposeRegistration)

	err := env.db.Model(&models.VerificationCode{}).
		Where("email = ?", "late@example.com").
		Update("expires_at", time.Now().Add(-time.Minute)).Error
	require.NoError(t, err)

	rec = env.doJSON(t, http.MethodPost, "/auth/users/register/confirm", "", gin.H{
		"email":    "late@example.com",
		"code":     code,
		"fullname": "Late",
		"password": "s3cret!",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPasswordReset(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "carol@example.com", "oldpass")

	// Unknown addresses are reported, matching the registration contract.
	rec := env.doJSON(t, http.MethodPost, "/auth/users/password-reset/initiate", "", gin.H{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.doJSON(t, http.MethodPost, "/auth/users/password-reset/initiate", "", gin.H{"email": "carol@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	code := env.latestCode(t, "carol@example.com", models.PurposePasswordReset)

	rec = env.doJSON(t, http.MethodPost, "/auth/users/password-reset/confirm", "", gin.H{
		"email":        "carol@example.com",
		"code":         code,
		"new_password": "newpass",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Old password is dead, new one works.
	rec = env.doForm(t, "/auth/users/login", url.Values{
		"username": {"carol@example.com"},
		"password": {"oldpass"},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env.login(t, "carol@example.com", "newpass")
}

func TestUpdateMe(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "dave@example.com", "s3cret!")
	env.register(t, "eve@example.com", "s3cret!")

	// Partial update: only the fullname changes.
	rec := env.doJSON(t, http.MethodPatch, "/auth/users/me", token, gin.H{"fullname": "Dave Renamed"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(t, http.MethodGet, "/auth/users/me", token, nil)
	body := decodeBody(t, rec)
	assert.Equal(t, "Dave Renamed", body["fullname"])
	assert.Equal(t, "dave@example.com", body["email"])

	// Taking someone else's email is a conflict.
	rec = env.doJSON(t, http.MethodPatch, "/auth/users/me", token, gin.H{"email": "eve@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeleteMeBlockedByLessons(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "frank@example.com", "s3cret!")
	lessonID := env.createLesson(t, token, "Keep Me")

	rec := env.doJSON(t, http.MethodDelete, "/auth/users/me", token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.doJSON(t, http.MethodDelete, "/lessons/"+lessonID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(t, http.MethodDelete, "/auth/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// The token is now valid JWT for a vanished account.
	rec = env.doJSON(t, http.MethodGet, "/auth/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")
}

func TestAuthMiddlewareRejections(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(t, http.MethodGet, "/lessons", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing Authorization header")

	rec = env.doJSON(t, http.MethodGet, "/lessons", "garbage.token.here", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or expired token")

	// Well-formed token for a user that never existed.
	orphan, err := utils.GenerateToken(testSecret, uuid.NewString(), time.Hour)
	require.NoError(t, err)
	rec = env.doJSON(t, http.MethodGet, "/lessons", orphan, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")
}
