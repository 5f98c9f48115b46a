package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ContentBlock is one ordered element of a lesson body. Only blocks with
// Type "text" carry narratable content.
type ContentBlock struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

const ContentBlockText = "text"

type Lesson struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"lesson_id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;references:ID" json:"-"`

	Title         string                               `gorm:"size:100;not null" json:"title"`
	Description   string                               `gorm:"type:text" json:"description"`
	Position      int                                  `json:"position"`
	Content       datatypes.JSONSlice[ContentBlock]    `json:"content"`
	AudioFilePath string                               `gorm:"size:255" json:"audio_file_path"`
	CreatedAt     time.Time                            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time                            `gorm:"autoUpdateTime" json:"updated_at"`

	Quiz *Quiz `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"quiz,omitempty"`
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// NarrationText joins the values of all text blocks in their original
// order with single spaces. Empty result means there is nothing to narrate.
func (l *Lesson) NarrationText() string {
	out := ""
	for _, block := range l.Content {
		if block.Type != ContentBlockText || block.Value == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += block.Value
	}
	return out
}
