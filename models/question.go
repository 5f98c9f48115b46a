package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
)

// ValidQuestionType reports whether t is one of the recognized question
// type tags.
func ValidQuestionType(t string) bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeTrueFalse
}

type Question struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"question_id"`
	QuizID uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Quiz   Quiz      `gorm:"foreignKey:QuizID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	QuestionText  string                      `gorm:"type:text;not null" json:"question_text"`
	QuestionType  string                      `gorm:"size:20;not null" json:"question_type"`
	Options       datatypes.JSONSlice[string] `json:"options"`
	CorrectAnswer string                      `gorm:"size:255;not null" json:"correct_answer"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
