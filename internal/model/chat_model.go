package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Chat struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserId     uuid.UUID      `gorm:"type:uuid;not null;index"` // ownership, checked on every access
	Title      *string        `gorm:"type:varchar(100)"`
	IsFavorite bool           `gorm:"not null;default:false"`
	CreatedAt  time.Time      `gorm:"autoCreateTime;index"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (Chat) TableName() string {
	return "chats"
}

func (c *Chat) BeforeCreate(tx *gorm.DB) error {
	if c.Id == uuid.Nil {
		c.Id = uuid.New()
	}
	return nil
}
