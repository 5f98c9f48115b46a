package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Quiz struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"quiz_id"`
	LessonID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"lesson_id"`
	Lesson   Lesson    `gorm:"foreignKey:LessonID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Questions []Question `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}
