package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/e-learning-backend/services"
)

// Keep generated prompts within a sane size when seeding from documents.
const maxDocumentChars = 6000

type GenerateController struct {
	Generator *services.LessonGenerator
	Jobs      *services.JobRegistry
	Pool      *services.WorkerPool
}

type GenerateInput struct {
	LearningField string `json:"learning_field" binding:"required"`
	Description   string `json:"description" binding:"required"`
}

// Generate validates the request, queues a background generation job and
// acknowledges immediately. The job's outcome is observable through the
// jobs endpoint and the websocket channel, never through this response.
func (g *GenerateController) Generate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input GenerateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	field := strings.TrimSpace(input.LearningField)
	description := strings.TrimSpace(input.Description)
	if field == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "learning field cannot be empty"})
		return
	}
	if description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "description cannot be empty"})
		return
	}

	job := g.Jobs.Create(userID)
	g.Pool.Submit(func() {
		g.Generator.Run(job.ID, userID, field, description)
	})

	c.JSON(http.StatusOK, gin.H{"status": "processing", "job_id": job.ID})
}

// GenerateFromDocument extracts text from an uploaded PDF or TXT file and
// feeds it through the same pipeline as the lesson description.
func (g *GenerateController) GenerateFromDocument(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	field := strings.TrimSpace(c.PostForm("learning_field"))
	if field == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "learning field cannot be empty"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file attached"})
		return
	}
	if file.Size > 20*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds 20MB"})
		return
	}

	text, err := services.ExtractDocumentText(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document contains no extractable text"})
		return
	}
	if len(text) > maxDocumentChars {
		text = text[:maxDocumentChars]
	}

	job := g.Jobs.Create(userID)
	description := text
	g.Pool.Submit(func() {
		g.Generator.Run(job.ID, userID, field, description)
	})

	c.JSON(http.StatusOK, gin.H{"status": "processing", "job_id": job.ID})
}

// JobStatus reports the state of one generation job to its owner.
func (g *GenerateController) JobStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	jobID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	job, found := g.Jobs.Get(jobID)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if job.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized to access this resource"})
		return
	}

	c.JSON(http.StatusOK, job)
}
