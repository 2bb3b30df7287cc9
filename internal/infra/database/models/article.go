package models

import (
	"time"
)

type Article struct {
	ID        int64          `gorm:"primaryKey;autoIncrement"`
	Title     string         `gorm:"type:varchar(255);not null"`
	Content   string         `gorm:"type:text;not null"`
	AuthorID  int64          `gorm:"not null;index"`
	Author    User           `gorm:"foreignKey:AuthorID;references:ID"`
	Images    []ArticleImage `gorm:"foreignKey:ArticleID"`
	CreatedAt time.Time      `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	UpdatedAt time.Time      `gorm:"type:timestamp with time zone;not null;default:clock_timestamp()"`
	IsDeleted bool           `gorm:"not null;default:false;index"`
	DeletedAt *time.Time     `gorm:"type:timestamp with time zone"`
}

type ArticleImage struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	ArticleID int64   `gorm:"not null;index"`
	Article   Article `gorm:"constraint:OnDelete:CASCADE;"`
	ImagePath string  `gorm:"type:varchar(255);not null"`
}
