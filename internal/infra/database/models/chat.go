package models

import (
	"time"
)

type Chat struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"type:varchar(100);not null"`
	CreatorID int64     `gorm:"not null"`
	Creator   User      `gorm:"foreignKey:CreatorID;references:ID"`
	CreatedAt time.Time `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type ChatMember struct {
	ChatID int64 `gorm:"primaryKey"`
	Chat   Chat  `gorm:"constraint:OnDelete:CASCADE;"`
	UserID int64 `gorm:"primaryKey"`
	User   User  `gorm:"foreignKey:UserID;references:ID"`
}

type Message struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	ChatID    int64     `gorm:"not null;index"`
	Chat      Chat      `gorm:"constraint:OnDelete:CASCADE;"`
	UserID    int64     `gorm:"not null"`
	User      User      `gorm:"foreignKey:UserID;references:ID"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp();index"`
}
