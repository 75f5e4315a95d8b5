package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Chat button actions
const (
	ActionEmail   = "email"
	ActionPhone   = "phone"
	ActionLink    = "link"
	ActionMessage = "message"
)

// ButtonActions lists the accepted chat button actions
var ButtonActions = []string{ActionEmail, ActionPhone, ActionLink, ActionMessage}

// Chat message statuses
const (
	MessageNew      = "new"
	MessageAnswered = "answered"
)

// MessageStatuses lists the accepted chat message statuses
var MessageStatuses = []string{MessageNew, MessageAnswered}

// ChatButton is a quick action shown in the chat widget menu
type ChatButton struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	Label     string     `gorm:"not null" json:"label"`
	Action    string     `gorm:"size:16;not null" json:"action"`
	Value     string     `gorm:"not null" json:"value"`
	Order     int        `gorm:"column:sort_order;index" json:"order"`
	Active    bool       `gorm:"index" json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// TableName specifies the table name for ChatButton
func (ChatButton) TableName() string {
	return "chat_buttons"
}

// BeforeCreate hook
func (b *ChatButton) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = time.Now()
	return nil
}

// BeforeUpdate hook
func (b *ChatButton) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now()
	b.UpdatedAt = &now
	return nil
}

// ChatButtonInput is the payload for creating a chat button
type ChatButtonInput struct {
	Label  string `json:"label"`
	Action string `json:"action"`
	Value  string `json:"value"`
	Order  int    `json:"order"`
	Active *bool  `json:"active,omitempty"`
}

// ChatButtonPatch is a partial chat button update
type ChatButtonPatch struct {
	Label  *string `json:"label,omitempty"`
	Action *string `json:"action,omitempty"`
	Value  *string `json:"value,omitempty"`
	Order  *int    `json:"order,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// Apply copies the non-nil fields of p onto b
func (p ChatButtonPatch) Apply(b *ChatButton) {
	setString(&b.Label, p.Label)
	setString(&b.Action, p.Action)
	setString(&b.Value, p.Value)
	if p.Order != nil {
		b.Order = *p.Order
	}
	if p.Active != nil {
		b.Active = *p.Active
	}
}

// ChatMessage is a visitor message left through the chat widget
type ChatMessage struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"`
	VisitorName   string     `gorm:"not null" json:"visitor_name"`
	VisitorEmail  string     `gorm:"not null" json:"visitor_email"`
	Message       string     `gorm:"type:text;not null" json:"message"`
	Status        string     `gorm:"size:16;not null;index" json:"status"`
	AdminResponse *string    `gorm:"type:text" json:"admin_response"`
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

// TableName specifies the table name for ChatMessage
func (ChatMessage) TableName() string {
	return "chat_messages"
}

// BeforeCreate hook
func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = time.Now()
	if m.Status == "" {
		m.Status = MessageNew
	}
	return nil
}

// BeforeUpdate hook
func (m *ChatMessage) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now()
	m.UpdatedAt = &now
	return nil
}

// ChatMessageInput is the payload of the chat widget message form
type ChatMessageInput struct {
	VisitorName  string `json:"visitor_name"`
	VisitorEmail string `json:"visitor_email"`
	Message      string `json:"message"`
}
