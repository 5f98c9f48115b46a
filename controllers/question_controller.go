package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-learning-backend/models"
	"github.com/vnkhanh/e-learning-backend/services"
)

type QuestionController struct {
	DB *gorm.DB
}

type QuestionCreateInput struct {
	QuestionText  string   `json:"question_text" binding:"required"`
	QuestionType  string   `json:"question_type" binding:"required"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer" binding:"required"`
}

type QuestionUpdateInput struct {
	QuestionText  *string   `json:"question_text"`
	QuestionType  *string   `json:"question_type"`
	Options       *[]string `json:"options"`
	CorrectAnswer *string   `json:"correct_answer"`
}

// questionOwnedBy walks Question -> Quiz -> Lesson -> User.
func (qc *QuestionController) questionOwnedBy(c *gin.Context, questionID, userID uuid.UUID) (*models.Question, bool) {
	var question models.Question
	if err := qc.DB.First(&question, "id = ?", questionID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
		return nil, false
	}
	if _, ok := quizOwnedBy(c, qc.DB, question.QuizID, userID); !ok {
		return nil, false
	}
	return &question, true
}

func (qc *QuestionController) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	questionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	question, ok := qc.questionOwnedBy(c, questionID, userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, question)
}

// ListByQuiz returns all questions of a quiz in stored order.
func (qc *QuestionController) ListByQuiz(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c, "quiz_id")
	if !ok {
		return
	}

	if _, ok := quizOwnedBy(c, qc.DB, quizID, userID); !ok {
		return
	}

	var questions []models.Question
	if err := qc.DB.Where("quiz_id = ?", quizID).Find(&questions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load questions"})
		return
	}
	c.JSON(http.StatusOK, questions)
}

func (qc *QuestionController) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, err := uuid.Parse(c.Query("quiz_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quiz_id"})
		return
	}

	var input QuestionCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidQuestionType(input.QuestionType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrInvalidQuestionType.Error()})
		return
	}

	if _, ok := quizOwnedBy(c, qc.DB, quizID, userID); !ok {
		return
	}

	question := models.Question{
		QuizID:        quizID,
		QuestionText:  input.QuestionText,
		QuestionType:  input.QuestionType,
		Options:       input.Options,
		CorrectAnswer: input.CorrectAnswer,
	}
	if err := qc.DB.Create(&question).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "could not create question"})
		return
	}
	c.JSON(http.StatusOK, question)
}

func (qc *QuestionController) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	questionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input QuestionUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.QuestionType != nil && !models.ValidQuestionType(*input.QuestionType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrInvalidQuestionType.Error()})
		return
	}

	question, ok := qc.questionOwnedBy(c, questionID, userID)
	if !ok {
		return
	}

	if input.QuestionText != nil {
		question.QuestionText = *input.QuestionText
	}
	if input.QuestionType != nil {
		question.QuestionType = *input.QuestionType
	}
	if input.Options != nil {
		question.Options = *input.Options
	}
	if input.CorrectAnswer != nil {
		question.CorrectAnswer = *input.CorrectAnswer
	}

	if err := qc.DB.Save(question).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "could not update question"})
		return
	}
	c.JSON(http.StatusOK, question)
}

func (qc *QuestionController) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	questionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	question, ok := qc.questionOwnedBy(c, questionID, userID)
	if !ok {
		return
	}

	if err := qc.DB.Delete(&models.Question{}, "id = ?", question.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete question"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}
