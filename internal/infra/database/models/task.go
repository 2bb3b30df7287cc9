package models

import (
	"time"
)

type Task struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	Title       string     `gorm:"type:varchar(255);not null"`
	Description string     `gorm:"type:text"`
	Status      string     `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	Priority    string     `gorm:"type:varchar(20);not null;default:'MEDIUM';index"`
	DueDate     *time.Time `gorm:"type:timestamp with time zone"`
	AuthorID    int64      `gorm:"not null;index"`
	Author      User       `gorm:"foreignKey:AuthorID;references:ID"`
	AssigneeID  int64      `gorm:"not null;index"`
	Assignee    User       `gorm:"foreignKey:AssigneeID;references:ID"`
	CreatedAt   time.Time  `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	IsDeleted   bool       `gorm:"not null;default:false;index"`
	DeletedAt   *time.Time `gorm:"type:timestamp with time zone"`
}
