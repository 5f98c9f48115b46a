package services

import "errors"

var (
	// ErrQuizExists signals the one-quiz-per-lesson rule.
	ErrQuizExists = errors.New("a quiz already exists for this lesson")

	// ErrInvalidQuestionType rejects type tags outside the closed set.
	ErrInvalidQuestionType = errors.New("invalid question type, must be multiple_choice or true_false")

	// ErrNoQuestions rejects grading a quiz that has no questions yet.
	ErrNoQuestions = errors.New("quiz has no questions")

	// ErrUnsupportedVoice rejects any voice other than the supported one.
	ErrUnsupportedVoice = errors.New("voice is not supported")

	// ErrEmptyText rejects synthesis of empty input.
	ErrEmptyText = errors.New("text is empty")
)
