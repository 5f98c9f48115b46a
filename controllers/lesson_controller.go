package controllers

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-learning-backend/models"
	"github.com/vnkhanh/e-learning-backend/services"
)

type LessonController struct {
	DB *gorm.DB
	// Generator narrates manually created lessons the same way the
	// ingestion pipeline does.
	Generator *services.LessonGenerator
}

type LessonCreateInput struct {
	Title       string                `json:"title" binding:"required,max=100"`
	Description string                `json:"description"`
	Position    int                   `json:"position"`
	Content     []models.ContentBlock `json:"content"`
}

type LessonUpdateInput struct {
	Title       *string                `json:"title" binding:"omitempty,max=100"`
	Description *string                `json:"description"`
	Position    *int                   `json:"position"`
	Content     *[]models.ContentBlock `json:"content"`
}

// List returns all lessons belonging to the current user.
func (l *LessonController) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var lessons []models.Lesson
	if err := l.DB.Where("user_id = ?", userID).Order("created_at ASC").Find(&lessons).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load lessons"})
		return
	}

	c.JSON(http.StatusOK, lessons)
}

func (l *LessonController) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	lessonID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	lesson, ok := lessonOwnedBy(c, l.DB, lessonID, userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, lesson)
}

// Create stores a lesson and narrates its text content. Narration is
// best-effort: the lesson is returned even when synthesis fails.
func (l *LessonController) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input LessonCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lesson := models.Lesson{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Position:    input.Position,
		Content:     input.Content,
	}
	if err := l.DB.Create(&lesson).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "could not create lesson"})
		return
	}

	if err := l.Generator.Narrate(context.Background(), &lesson); err != nil {
		log.Printf("narration failed for lesson %s: %v", lesson.ID, err)
	}

	c.JSON(http.StatusOK, lesson)
}

// Update applies only the fields present in the payload.
func (l *LessonController) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	lessonID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input LessonUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lesson, ok := lessonOwnedBy(c, l.DB, lessonID, userID)
	if !ok {
		return
	}

	if input.Title != nil {
		lesson.Title = *input.Title
	}
	if input.Description != nil {
		lesson.Description = *input.Description
	}
	if input.Position != nil {
		lesson.Position = *input.Position
	}
	if input.Content != nil {
		lesson.Content = *input.Content
	}

	if err := l.DB.Save(lesson).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "could not update lesson"})
		return
	}
	c.JSON(http.StatusOK, lesson)
}

// Delete removes the lesson together with its quiz and questions in one
// transaction.
func (l *LessonController) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	lessonID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	lesson, ok := lessonOwnedBy(c, l.DB, lessonID, userID)
	if !ok {
		return
	}

	err := l.DB.Transaction(func(tx *gorm.DB) error {
		quizIDs := tx.Model(&models.Quiz{}).Select("id").Where("lesson_id = ?", lesson.ID)
		if err := tx.Where("quiz_id IN (?)", quizIDs).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("lesson_id = ?", lesson.ID).Delete(&models.Quiz{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Lesson{}, "id = ?", lesson.ID).Error
	})
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "could not delete lesson"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lesson deleted successfully"})
}

// Audio serves the lesson narration: a local file is streamed, a bucket
// URL is redirected to.
func (l *LessonController) Audio(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	lessonID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	lesson, ok := lessonOwnedBy(c, l.DB, lessonID, userID)
	if !ok {
		return
	}

	if lesson.AudioFilePath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "audio file not found"})
		return
	}
	if strings.HasPrefix(lesson.AudioFilePath, "http") {
		c.Redirect(http.StatusFound, lesson.AudioFilePath)
		return
	}
	if _, err := os.Stat(lesson.AudioFilePath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "audio file not found"})
		return
	}

	c.Header("Content-Type", "audio/mpeg")
	c.File(lesson.AudioFilePath)
}
