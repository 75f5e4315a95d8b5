package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feedback statuses
const (
	FeedbackNew      = "new"
	FeedbackReviewed = "reviewed"
)

// FeedbackStatuses lists the accepted feedback statuses
var FeedbackStatuses = []string{FeedbackNew, FeedbackReviewed}

// Feedback represents citizen feedback with a 1..5 rating
type Feedback struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	Name          string     `gorm:"not null" json:"name"`
	Email         string     `gorm:"not null" json:"email"`
	Subject       string     `gorm:"not null" json:"subject"`
	Message       string     `gorm:"type:text;not null" json:"message"`
	Rating        int        `gorm:"not null" json:"rating"`
	Status        string     `gorm:"size:16;not null;index" json:"status"`
	AdminResponse *string    `gorm:"type:text" json:"admin_response"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// TableName specifies the table name for Feedback
func (Feedback) TableName() string {
	return "feedback"
}

// BeforeCreate hook
func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.CreatedAt = time.Now()
	if f.Status == "" {
		f.Status = FeedbackNew
	}
	return nil
}

// BeforeUpdate hook
func (f *Feedback) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now()
	f.UpdatedAt = &now
	return nil
}

// FeedbackInput is the payload of the public feedback form
type FeedbackInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Rating  int    `json:"rating"`
}
