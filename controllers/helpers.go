package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-learning-backend/models"
)

// currentUserID reads the authenticated user id set by the auth
// middleware. Writes the error response itself when it fails.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "could not identify the current user"})
		return uuid.Nil, false
	}
	return userID, true
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// lessonOwnedBy loads a lesson and enforces the ownership chain. A lesson
// owned by someone else is an authorization failure, not a not-found.
func lessonOwnedBy(c *gin.Context, db *gorm.DB, lessonID, userID uuid.UUID) (*models.Lesson, bool) {
	var lesson models.Lesson
	if err := db.First(&lesson, "id = ?", lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "lesson not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load lesson"})
		}
		return nil, false
	}
	if lesson.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized to access this resource"})
		return nil, false
	}
	return &lesson, true
}

// quizOwnedBy loads a quiz and walks Quiz -> Lesson -> User.
func quizOwnedBy(c *gin.Context, db *gorm.DB, quizID, userID uuid.UUID) (*models.Quiz, bool) {
	var quiz models.Quiz
	if err := db.First(&quiz, "id = ?", quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "quiz not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load quiz"})
		}
		return nil, false
	}
	if _, ok := lessonOwnedBy(c, db, quiz.LessonID, userID); !ok {
		return nil, false
	}
	return &quiz, true
}
