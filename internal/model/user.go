package model

import "time"

// UserType distinguishes the two roles in the system.
type UserType string

const (
	UserTypeStudent UserType = "student"
	UserTypeTeacher UserType = "teacher"
)

// User represents a platform account (student or teacher).
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	UserType     UserType  `json:"user_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest is the payload for student/teacher login.
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=4,max=128"`
}
