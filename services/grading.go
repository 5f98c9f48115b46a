package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/vnkhanh/e-learning-backend/models"
)

// SubmissionResult is the grading report for one quiz submission.
type SubmissionResult struct {
	TotalQuestions int                  `json:"total_questions"`
	CorrectCount   int                  `json:"correct_count"`
	CorrectAnswers map[uuid.UUID]string `json:"correct_answers"`
}

// GradeQuiz compares submitted answers against the stored correct answers.
// Multiple-choice answers must match exactly; true/false answers match
// case-insensitively. Questions with no submitted answer count toward the
// total but never toward the correct count. The authoritative correct
// answer is echoed back for every question, answered or not.
//
// Pure read and compare, no side effects.
func GradeQuiz(questions []models.Question, answers map[uuid.UUID]string) (SubmissionResult, error) {
	if len(questions) == 0 {
		return SubmissionResult{}, ErrNoQuestions
	}

	result := SubmissionResult{
		TotalQuestions: len(questions),
		CorrectAnswers: make(map[uuid.UUID]string, len(questions)),
	}

	for _, q := range questions {
		result.CorrectAnswers[q.ID] = q.CorrectAnswer

		answer, ok := answers[q.ID]
		if !ok {
			continue
		}

		switch q.QuestionType {
		case models.QuestionTypeMultipleChoice:
			if answer == q.CorrectAnswer {
				result.CorrectCount++
			}
		case models.QuestionTypeTrueFalse:
			if strings.EqualFold(answer, q.CorrectAnswer) {
				result.CorrectCount++
			}
		}
	}

	return result, nil
}
