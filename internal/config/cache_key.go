package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a user's active login session.
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// DraftAnswersKey returns the cache key for a student's autosaved draft answers.
func (r *CacheKeyStruct) DraftAnswersKey(examID string, studentID int) string {
	return fmt.Sprintf("student:%d:exam:%s:draft", studentID, examID)
}

// ExamPaperKey returns the cache key for an exam's student-facing paper payload.
func (r *CacheKeyStruct) ExamPaperKey(examID string) string {
	return fmt.Sprintf("exam:%s:paper", examID)
}

var CacheKey = NewCacheKeyStruct()
