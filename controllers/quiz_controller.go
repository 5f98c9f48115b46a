package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-learning-backend/models"
	"github.com/vnkhanh/e-learning-backend/services"
)

type QuizController struct {
	DB *gorm.DB
}

type QuizCreateInput struct {
	Title       string `json:"title" binding:"required,max=100"`
	Description string `json:"description"`
}

type QuizUpdateInput struct {
	Title       *string `json:"title" binding:"omitempty,max=100"`
	Description *string `json:"description"`
}

type QuizSubmissionInput struct {
	Answers map[uuid.UUID]string `json:"answers" binding:"required"`
}

func (q *QuizController) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	quiz, ok := quizOwnedBy(c, q.DB, quizID, userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// GetByLesson returns the quiz attached to a lesson.
func (q *QuizController) GetByLesson(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	lessonID, ok := parseIDParam(c, "lesson_id")
	if !ok {
		return
	}

	if _, ok := lessonOwnedBy(c, q.DB, lessonID, userID); !ok {
		return
	}

	var quiz models.Quiz
	if err := q.DB.Where("lesson_id = ?", lessonID).First(&quiz).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no quiz found for the specified lesson"})
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// Create attaches a quiz to a lesson. A lesson can hold at most one quiz;
// a second create is a conflict and leaves the original untouched.
func (q *QuizController) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	lessonID, err := uuid.Parse(c.Query("lesson_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson_id"})
		return
	}

	var input QuizCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, ok := lessonOwnedBy(c, q.DB, lessonID, userID); !ok {
		return
	}

	var existing models.Quiz
	if err := q.DB.Where("lesson_id = ?", lessonID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": services.ErrQuizExists.Error()})
		return
	}

	quiz := models.Quiz{
		LessonID:    lessonID,
		Title:       input.Title,
		Description: input.Description,
	}
	if err := q.DB.Create(&quiz).Error; err != nil {
		// The unique index on lesson_id backs up the check above.
		c.JSON(http.StatusConflict, gin.H{"error": services.ErrQuizExists.Error()})
		return
	}
	c.JSON(http.StatusOK, quiz)
}

func (q *QuizController) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input QuizUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, ok := quizOwnedBy(c, q.DB, quizID, userID)
	if !ok {
		return
	}

	if input.Title != nil {
		quiz.Title = *input.Title
	}
	if input.Description != nil {
		quiz.Description = *input.Description
	}

	if err := q.DB.Save(quiz).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "could not update quiz"})
		return
	}
	c.JSON(http.StatusOK, quiz)
}

func (q *QuizController) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	quiz, ok := quizOwnedBy(c, q.DB, quizID, userID)
	if !ok {
		return
	}

	err := q.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&models.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Quiz{}, "id = ?", quiz.ID).Error
	})
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "could not delete quiz"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted successfully"})
}

// Submit grades a submission against the quiz's stored answers.
func (q *QuizController) Submit(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input QuizSubmissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, ok := quizOwnedBy(c, q.DB, quizID, userID)
	if !ok {
		return
	}

	var questions []models.Question
	if err := q.DB.Where("quiz_id = ?", quiz.ID).Find(&questions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load questions"})
		return
	}

	result, err := services.GradeQuiz(questions, input.Answers)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
