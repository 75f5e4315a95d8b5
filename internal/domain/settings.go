package domain

import "time"

// SingletonID is the primary key of every singleton configuration row
const SingletonID uint = 1

// HomepageConfig is the singleton homepage configuration
type HomepageConfig struct {
	ID              uint      `gorm:"primaryKey" json:"-"`
	HeroTitle       string    `gorm:"not null" json:"hero_title"`
	HeroSubtitle    string    `gorm:"type:text" json:"hero_subtitle"`
	EmergencyNumber string    `json:"emergency_number"`
	PhoneNumber     string    `json:"phone_number"`
	Email           string    `json:"email"`
	Address         string    `gorm:"type:text" json:"address"`
	OpeningHours    string    `gorm:"type:text" json:"opening_hours"`
	HeroImage       *string   `json:"hero_image"`
	ShowLatestNews  bool      `json:"show_latest_news"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for HomepageConfig
func (HomepageConfig) TableName() string {
	return "homepage_config"
}

// DefaultHomepage returns the seeded homepage configuration
func DefaultHomepage() HomepageConfig {
	return HomepageConfig{
		ID:              SingletonID,
		HeroTitle:       "Stadtwache",
		HeroSubtitle:    "Sicherheit und Schutz für unsere Gemeinschaft. Moderne Polizeiarbeit im Dienste der Bürger.",
		EmergencyNumber: "110",
		PhoneNumber:     "+49 123 456-789",
		Email:           "info@stadtwache.de",
		Address:         "Stadtwache Hauptrevier\nHauptstraße 123\n12345 Musterstadt",
		OpeningHours:    "Mo-Fr: 8:00-20:00\nSa: 9:00-16:00\nSo: 10:00-14:00",
		ShowLatestNews:  true,
	}
}

// HomepagePatch is a partial homepage update
type HomepagePatch struct {
	HeroTitle       *string `json:"hero_title,omitempty"`
	HeroSubtitle    *string `json:"hero_subtitle,omitempty"`
	EmergencyNumber *string `json:"emergency_number,omitempty"`
	PhoneNumber     *string `json:"phone_number,omitempty"`
	Email           *string `json:"email,omitempty"`
	Address         *string `json:"address,omitempty"`
	OpeningHours    *string `json:"opening_hours,omitempty"`
	ShowLatestNews  *bool   `json:"show_latest_news,omitempty"`
}

// Apply copies the non-nil fields of p onto h
func (p HomepagePatch) Apply(h *HomepageConfig) {
	setString(&h.HeroTitle, p.HeroTitle)
	setString(&h.HeroSubtitle, p.HeroSubtitle)
	setString(&h.EmergencyNumber, p.EmergencyNumber)
	setString(&h.PhoneNumber, p.PhoneNumber)
	setString(&h.Email, p.Email)
	setString(&h.Address, p.Address)
	setString(&h.OpeningHours, p.OpeningHours)
	if p.ShowLatestNews != nil {
		h.ShowLatestNews = *p.ShowLatestNews
	}
}

// AboutConfig is the singleton "about" page configuration
type AboutConfig struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Title     string    `gorm:"not null" json:"title"`
	Subtitle  string    `gorm:"type:text" json:"subtitle"`
	Content   string    `gorm:"type:text" json:"content"`
	Mission   *string   `gorm:"type:text" json:"mission"`
	Vision    *string   `gorm:"type:text" json:"vision"`
	Values    *string   `gorm:"type:text" json:"values"`
	History   *string   `gorm:"type:text" json:"history"`
	Image     *string   `json:"image"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for AboutConfig
func (AboutConfig) TableName() string {
	return "about_config"
}

// DefaultAbout returns the seeded about page configuration
func DefaultAbout() AboutConfig {
	return AboutConfig{
		ID:       SingletonID,
		Title:    "Über uns",
		Subtitle: "Ihre Stadtwache",
		Content:  "Die Stadtwache sorgt für Sicherheit und Ordnung in unserer Stadt.",
	}
}

// AboutPatch is a partial about page update
type AboutPatch struct {
	Title    *string `json:"title,omitempty"`
	Subtitle *string `json:"subtitle,omitempty"`
	Content  *string `json:"content,omitempty"`
	Mission  *string `json:"mission,omitempty"`
	Vision   *string `json:"vision,omitempty"`
	Values   *string `json:"values,omitempty"`
	History  *string `json:"history,omitempty"`
}

// Apply copies the non-nil fields of p onto a
func (p AboutPatch) Apply(a *AboutConfig) {
	setString(&a.Title, p.Title)
	setString(&a.Subtitle, p.Subtitle)
	setString(&a.Content, p.Content)
	if p.Mission != nil {
		a.Mission = p.Mission
	}
	if p.Vision != nil {
		a.Vision = p.Vision
	}
	if p.Values != nil {
		a.Values = p.Values
	}
	if p.History != nil {
		a.History = p.History
	}
}

// Chat widget positions and colors
const (
	PositionBottomLeft  = "bottom-left"
	PositionBottomRight = "bottom-right"
)

var (
	// WidgetPositions lists the accepted chat widget positions
	WidgetPositions = []string{PositionBottomLeft, PositionBottomRight}
	// WidgetColors lists the accepted chat widget colors
	WidgetColors = []string{"blue", "green", "gray"}
)

// ChatWidgetConfig is the singleton chat widget configuration
type ChatWidgetConfig struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	Title          string    `gorm:"not null" json:"title"`
	Position       string    `gorm:"size:16;not null" json:"position"`
	WelcomeMessage string    `gorm:"type:text" json:"welcome_message"`
	OfflineMessage string    `gorm:"type:text" json:"offline_message"`
	Color          string    `gorm:"size:16;not null" json:"color"`
	ContactEmail   string    `json:"contact_email"`
	PhoneNumber    string    `json:"phone_number"`
	OperatingHours string    `json:"operating_hours"`
	Enabled        bool      `json:"enabled"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for ChatWidgetConfig
func (ChatWidgetConfig) TableName() string {
	return "chat_widget_config"
}

// DefaultChatWidget returns the seeded chat widget configuration
func DefaultChatWidget() ChatWidgetConfig {
	return ChatWidgetConfig{
		ID:             SingletonID,
		Title:          "Kontakt",
		Position:       PositionBottomRight,
		WelcomeMessage: "Wie können wir Ihnen helfen?",
		OfflineMessage: "Wir sind derzeit nicht erreichbar. Hinterlassen Sie uns eine Nachricht.",
		Color:          "blue",
		ContactEmail:   "info@stadtwache.de",
		PhoneNumber:    "+49 123 456-789",
		OperatingHours: "Mo-Fr 8:00-20:00",
		Enabled:        true,
	}
}

// ChatWidgetPatch is a partial chat widget update
type ChatWidgetPatch struct {
	Title          *string `json:"title,omitempty"`
	Position       *string `json:"position,omitempty"`
	WelcomeMessage *string `json:"welcome_message,omitempty"`
	OfflineMessage *string `json:"offline_message,omitempty"`
	Color          *string `json:"color,omitempty"`
	ContactEmail   *string `json:"contact_email,omitempty"`
	PhoneNumber    *string `json:"phone_number,omitempty"`
	OperatingHours *string `json:"operating_hours,omitempty"`
	Enabled        *bool   `json:"enabled,omitempty"`
}

// Apply copies the non-nil fields of p onto c
func (p ChatWidgetPatch) Apply(c *ChatWidgetConfig) {
	setString(&c.Title, p.Title)
	setString(&c.Position, p.Position)
	setString(&c.WelcomeMessage, p.WelcomeMessage)
	setString(&c.OfflineMessage, p.OfflineMessage)
	setString(&c.Color, p.Color)
	setString(&c.ContactEmail, p.ContactEmail)
	setString(&c.PhoneNumber, p.PhoneNumber)
	setString(&c.OperatingHours, p.OperatingHours)
	if p.Enabled != nil {
		c.Enabled = *p.Enabled
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
