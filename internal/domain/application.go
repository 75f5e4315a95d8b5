package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Application statuses
const (
	ApplicationPending  = "pending"
	ApplicationReviewed = "reviewed"
	ApplicationAccepted = "accepted"
	ApplicationRejected = "rejected"
)

// ApplicationStatuses lists the accepted application statuses
var ApplicationStatuses = []string{ApplicationPending, ApplicationReviewed, ApplicationAccepted, ApplicationRejected}

// Positions offered on the application form
var Positions = []string{"polizist", "verwaltung", "technik", "sicherheit"}

// Application represents a job application submitted through the public form
type Application struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	Name          string     `gorm:"not null" json:"name"`
	Email         string     `gorm:"not null;index" json:"email"`
	Phone         string     `gorm:"not null" json:"phone"`
	Position      string     `gorm:"not null" json:"position"`
	Message       string     `gorm:"type:text;not null" json:"message"`
	CVFilename    *string    `json:"cv_filename"`
	Status        string     `gorm:"size:16;not null;index" json:"status"`
	AdminResponse *string    `gorm:"type:text" json:"admin_response"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// TableName specifies the table name for Application
func (Application) TableName() string {
	return "applications"
}

// BeforeCreate hook
func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = time.Now()
	if a.Status == "" {
		a.Status = ApplicationPending
	}
	return nil
}

// BeforeUpdate hook
func (a *Application) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now()
	a.UpdatedAt = &now
	return nil
}

// ApplicationInput is the payload of the public application form
type ApplicationInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Position string `json:"position"`
	Message  string `json:"message"`
}
