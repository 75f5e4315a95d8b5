package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// News priorities
const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// NewsPriorities lists the accepted news priorities
var NewsPriorities = []string{PriorityNormal, PriorityHigh, PriorityUrgent}

// NewsItem represents a news entry. Only published items are visible publicly.
type NewsItem struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	Title     string     `gorm:"not null" json:"title"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Priority  string     `gorm:"size:16;not null" json:"priority"`
	Published bool       `gorm:"index" json:"published"`
	Date      time.Time  `gorm:"index" json:"date"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// TableName specifies the table name for NewsItem
func (NewsItem) TableName() string {
	return "news"
}

// BeforeCreate hook
func (n *NewsItem) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now()
	if n.Date.IsZero() {
		n.Date = n.CreatedAt
	}
	if n.Priority == "" {
		n.Priority = PriorityNormal
	}
	return nil
}

// BeforeUpdate hook
func (n *NewsItem) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now()
	n.UpdatedAt = &now
	return nil
}

// NewsInput is the payload for creating a news item
type NewsInput struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Priority  string `json:"priority,omitempty"`
	Published *bool  `json:"published,omitempty"`
}

// NewsPatch is a partial update; nil fields are left unchanged
type NewsPatch struct {
	Title     *string `json:"title,omitempty"`
	Content   *string `json:"content,omitempty"`
	Priority  *string `json:"priority,omitempty"`
	Published *bool   `json:"published,omitempty"`
}

// Apply copies the non-nil fields of p onto n
func (p NewsPatch) Apply(n *NewsItem) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Priority != nil {
		n.Priority = *p.Priority
	}
	if p.Published != nil {
		n.Published = *p.Published
	}
}
