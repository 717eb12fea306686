package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Username   string    `gorm:"size:100;unique;not null" json:"username"`
	Email      string    `gorm:"size:100;unique;not null" json:"email"`
	Password   string    `gorm:"size:100" json:"-"`
	GoogleID   string    `gorm:"size:100;index" json:"-"`
	Role       UserRole  `gorm:"size:20;default:student" json:"role"`
	School     string    `gorm:"size:255;not null" json:"school"`
	GradeLevel string    `gorm:"size:50" json:"gradeLevel"`
	Bio        string    `gorm:"type:text" json:"bio"`
	ProfilePic string    `gorm:"size:255" json:"profilePic"`
	LastSeen   time.Time `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
