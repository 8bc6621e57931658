package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// StudentSessionKey returns the cache key for a student's login session
func (r *CacheKeyStruct) StudentSessionKey(studentID int) string {
	return fmt.Sprintf("login:%d", studentID)
}

// AttemptSnapshotKey returns the cache key for an attempt's resume snapshot
func (r *CacheKeyStruct) AttemptSnapshotKey(attemptID string) string {
	return fmt.Sprintf("attempt:%s:autosave", attemptID)
}

// StudentActiveAttemptKey returns the cache key for a student's currently active attempt
func (r *CacheKeyStruct) StudentActiveAttemptKey(studentID int) string {
	return fmt.Sprintf("student:%d:active_attempt", studentID)
}

var CacheKey = NewCacheKeyStruct()
