package models

import (
	"time"
)

type User struct {
	ID                  int64      `gorm:"primaryKey;autoIncrement"`
	Username            string     `gorm:"type:varchar(50);uniqueIndex;not null"`
	FullName            string     `gorm:"type:varchar(100);not null"`
	Email               string     `gorm:"type:varchar(100);uniqueIndex;not null"`
	HashedPassword      string     `gorm:"type:varchar(255);not null"`
	RoleID              int        `gorm:"not null;default:1"`
	Shift               string     `gorm:"type:varchar(50);not null"`
	AvatarURL           string     `gorm:"type:varchar(255)"`
	CompletedTasksCount int        `gorm:"not null;default:0"`
	TotalTasksCount     int        `gorm:"not null;default:0"`
	RegisteredAt        time.Time  `gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	IsDeleted           bool       `gorm:"not null;default:false;index"`
	DeletedAt           *time.Time `gorm:"type:timestamp with time zone"`
}
