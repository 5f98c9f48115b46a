package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-learning-backend/models"
)

// GeneratedQuestion mirrors one question object in the JSON document the
// generative service is asked to return.
type GeneratedQuestion struct {
	QuestionText  string   `json:"question_text"`
	QuestionType  string   `json:"question_type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

type GeneratedQuiz struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Questions   []GeneratedQuestion `json:"questions"`
}

// GeneratedLesson is the full document schema requested from the
// generative service: one lesson, one quiz, five questions.
type GeneratedLesson struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Content     []models.ContentBlock `json:"content"`
	Quiz        *GeneratedQuiz        `json:"quiz"`
}

// LessonGenerator runs the AI lesson ingestion pipeline: prompt the
// generative service, parse its reply, materialize lesson+quiz+questions
// in one transaction, then narrate the lesson text.
type LessonGenerator struct {
	DB    *gorm.DB
	Text  TextGenerator
	TTS   SpeechSynthesizer
	Audio AudioStore
	Jobs  *JobRegistry

	// Notify, when set, receives every job state change (used to push
	// updates over the websocket hub).
	Notify func(job GenerationJob)
}

// BuildLessonPrompt builds the fixed instruction sent to the generative
// service. Deterministic for a given field and description.
func BuildLessonPrompt(learningField, description string) string {
	return fmt.Sprintf(`You are an assistant that generates structured JSON responses for creating educational content.
The content should be focused on "%s" with the following description: "%s".
The JSON structure should follow this hierarchy: Lesson -> Quiz -> Questions.

Requirements:
- Include 1 lesson.
- The lesson has exactly 1 quiz.
- The quiz contains exactly 5 questions.

Fields:
- Lesson:
    - "title": short title of the lesson (2-3 words), without the word "Lesson".
    - "description": a brief description of the lesson.
    - "content": a list of content objects. Each object has "type" and "value". Use type "text" with 2-4 paragraphs of detailed educational text.
    - "quiz": a single quiz object.
- Quiz:
    - "title": short title of the quiz (2-3 words), without the word "Quiz".
    - "description": a brief description of the quiz.
    - "questions": a list of question objects.
- Question:
    - "question_text": the text of the question.
    - "question_type": either "multiple_choice" or "true_false".
    - "options": for multiple_choice questions, the list of options.
    - "correct_answer": the correct answer.

Example structure (simplified):
{
    "title": "Lesson Title",
    "description": "Description of the lesson",
    "content": [
        {"type": "text", "value": "Educational content here."},
        {"type": "text", "value": "Additional content here."}
    ],
    "quiz": {
        "title": "Quiz Title",
        "description": "Description of the quiz",
        "questions": [
            {
                "question_text": "What is the capital of France?",
                "question_type": "multiple_choice",
                "options": ["Paris", "London", "Berlin", "Madrid"],
                "correct_answer": "Paris"
            },
            {
                "question_text": "Is the Earth round?",
                "question_type": "true_false",
                "correct_answer": "true"
            }
        ]
    }
}

Only return the JSON document. Do not include any additional text or markdown fences.`, learningField, description)
}

// Run executes one generation job end to end. It never returns an error:
// the triggering request was already acknowledged, so every failure is
// logged and recorded on the job instead.
func (g *LessonGenerator) Run(jobID, userID uuid.UUID, learningField, description string) {
	ctx := context.Background()
	g.transition(jobID, JobProcessing, nil, "")

	raw, err := g.Text.GenerateText(ctx, BuildLessonPrompt(learningField, description))
	if err != nil {
		log.Printf("generation job %s: generative service failed: %v", jobID, err)
		g.transition(jobID, JobFailed, nil, "generative service failed")
		return
	}

	doc, err := ParseGeneratedLesson(raw)
	if err != nil {
		log.Printf("generation job %s: cannot parse generated lesson JSON: %v", jobID, err)
		g.transition(jobID, JobFailed, nil, "generated content was not valid JSON")
		return
	}

	lesson, err := g.Materialize(userID, doc)
	if err != nil {
		log.Printf("generation job %s: materialize failed: %v", jobID, err)
		g.transition(jobID, JobFailed, nil, "could not persist generated lesson")
		return
	}

	// Narration is best-effort: the lesson survives without audio.
	if err := g.Narrate(ctx, lesson); err != nil {
		log.Printf("generation job %s: narration failed for lesson %s: %v", jobID, lesson.ID, err)
	}

	g.transition(jobID, JobCompleted, &lesson.ID, "")
	log.Printf("generation job %s: lesson %s created", jobID, lesson.ID)
}

// ParseGeneratedLesson treats the model reply as untrusted text and parses
// it strictly as JSON, tolerating only the markdown fences models like to
// wrap documents in.
func ParseGeneratedLesson(raw string) (*GeneratedLesson, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "`")
	clean = strings.TrimPrefix(clean, "json")
	clean = strings.TrimSpace(clean)

	var doc GeneratedLesson
	if err := json.Unmarshal([]byte(clean), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Materialize creates the lesson, its quiz and every question as one unit.
// Any failure, including an invalid question type, rolls the whole batch
// back so no orphan lesson remains. Missing fields default to empty values
// rather than failing.
func (g *LessonGenerator) Materialize(userID uuid.UUID, doc *GeneratedLesson) (*models.Lesson, error) {
	lesson := models.Lesson{
		UserID:      userID,
		Title:       defaultString(doc.Title, "Untitled Lesson"),
		Description: doc.Description,
		Content:     doc.Content,
	}

	err := g.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lesson).Error; err != nil {
			return err
		}

		if doc.Quiz == nil {
			return nil
		}

		// Freshly created lesson cannot have a quiz yet, but check anyway.
		var count int64
		if err := tx.Model(&models.Quiz{}).Where("lesson_id = ?", lesson.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrQuizExists
		}

		quiz := models.Quiz{
			LessonID:    lesson.ID,
			Title:       defaultString(doc.Quiz.Title, "Untitled Quiz"),
			Description: doc.Quiz.Description,
		}
		if err := tx.Create(&quiz).Error; err != nil {
			return err
		}

		for _, q := range doc.Quiz.Questions {
			if !models.ValidQuestionType(q.QuestionType) {
				return ErrInvalidQuestionType
			}
			question := models.Question{
				QuizID:        quiz.ID,
				QuestionText:  q.QuestionText,
				QuestionType:  q.QuestionType,
				Options:       q.Options,
				CorrectAnswer: q.CorrectAnswer,
			}
			if err := tx.Create(&question).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}

// Narrate synthesizes the lesson's text content with the default voice and
// stores the audio reference on the lesson in a second commit. A lesson
// without text blocks is skipped silently.
func (g *LessonGenerator) Narrate(ctx context.Context, lesson *models.Lesson) error {
	text := lesson.NarrationText()
	if text == "" {
		return nil
	}

	audio, err := g.TTS.Synthesize(ctx, text, DefaultVoice)
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("lesson_%s_%s.mp3", lesson.ID, uuid.NewString()[:8])
	ref, err := g.Audio.Save(filename, audio)
	if err != nil {
		return err
	}

	lesson.AudioFilePath = ref
	return g.DB.Model(&models.Lesson{}).Where("id = ?", lesson.ID).
		Update("audio_file_path", ref).Error
}

func (g *LessonGenerator) transition(jobID uuid.UUID, status JobStatus, lessonID *uuid.UUID, errMsg string) {
	if g.Jobs == nil {
		return
	}
	job, ok := g.Jobs.Update(jobID, status, lessonID, errMsg)
	if ok && g.Notify != nil {
		g.Notify(job)
	}
}

func defaultString(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
