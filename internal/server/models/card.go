package models

import (
	"strings"
	"time"
)

type MasteryStatus string

const (
	StatusUnknown MasteryStatus = "unknown"
	StatusReview  MasteryStatus = "review"
	StatusKnown   MasteryStatus = "known"
)

// NormalizeStatus resolves v, case-insensitively; empty or unknown values
// yield fallback.
func NormalizeStatus(v string, fallback MasteryStatus) MasteryStatus {
	switch s := MasteryStatus(strings.ToLower(strings.TrimSpace(v))); s {
	case StatusUnknown, StatusReview, StatusKnown:
		return s
	default:
		return fallback
	}
}

func (s MasteryStatus) Valid() bool {
	return s == StatusUnknown || s == StatusReview || s == StatusKnown
}

type Card struct {
	ID            string        `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string        `json:"userId" gorm:"index;not null;type:varchar(36)"`
	CategoryID    string        `json:"categoryId" gorm:"index;not null;type:varchar(36)"`
	Question      string        `json:"question" gorm:"not null"`
	Answer        string        `json:"answer" gorm:"not null"`
	MasteryStatus MasteryStatus `json:"masteryStatus" gorm:"not null;default:unknown"`
	ImageKey      string        `json:"imageKey,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func (Card) TableName() string { return "cards" }
