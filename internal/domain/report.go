package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report statuses. The admin dashboard historically used two spellings for the
// middle states; only the canonical values below are stored.
const (
	ReportNew        = "new"
	ReportInProgress = "in_progress"
	ReportResolved   = "resolved"
	ReportClosed     = "closed"
)

// ReportStatuses lists the canonical report statuses
var ReportStatuses = []string{ReportNew, ReportInProgress, ReportResolved, ReportClosed}

var reportStatusAliases = map[string]string{
	"under_review": ReportInProgress,
	"completed":    ReportResolved,
}

// NormalizeReportStatus maps legacy spellings onto the canonical status
func NormalizeReportStatus(status string) string {
	if canonical, ok := reportStatusAliases[status]; ok {
		return canonical
	}
	return status
}

// IncidentType is an entry of the incident type catalogue
type IncidentType struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// IncidentTypes is the catalogue served by GET /api/reports/types
var IncidentTypes = []IncidentType{
	{Value: "diebstahl", Label: "Diebstahl"},
	{Value: "einbruch", Label: "Einbruch"},
	{Value: "koerperverletzung", Label: "Körperverletzung"},
	{Value: "sachbeschaedigung", Label: "Sachbeschädigung"},
	{Value: "verkehrsunfall", Label: "Verkehrsunfall"},
	{Value: "ruhestoerung", Label: "Ruhestörung"},
	{Value: "betrug", Label: "Betrug"},
	{Value: "vandalismus", Label: "Vandalismus"},
	{Value: "notfall", Label: "Dringender Vorfall"},
	{Value: "sonstiges", Label: "Sonstiges"},
}

// IsUrgentIncident reports whether an incident type triggers an SMS alert
func IsUrgentIncident(incidentType string) bool {
	return incidentType == "notfall" || incidentType == "koerperverletzung"
}

// Report represents an online incident report
type Report struct {
	ID                  string     `gorm:"primaryKey;size:36" json:"id"`
	IncidentType        string     `gorm:"size:32;not null;index" json:"incident_type"`
	Description         string     `gorm:"type:text;not null" json:"description"`
	Location            string     `gorm:"not null" json:"location"`
	IncidentDate        string     `gorm:"size:10;not null" json:"incident_date"`
	IncidentTime        string     `gorm:"size:5" json:"incident_time"`
	ReporterName        string     `gorm:"not null" json:"reporter_name"`
	ReporterEmail       string     `gorm:"not null" json:"reporter_email"`
	ReporterPhone       string     `json:"reporter_phone"`
	IsWitness           bool       `json:"is_witness"`
	WitnessesPresent    bool       `json:"witnesses_present"`
	WitnessDetails      *string    `gorm:"type:text" json:"witness_details"`
	EvidenceAvailable   bool       `json:"evidence_available"`
	EvidenceDescription *string    `gorm:"type:text" json:"evidence_description"`
	AdditionalInfo      *string    `gorm:"type:text" json:"additional_info"`
	Status              string     `gorm:"size:16;not null;index" json:"status"`
	AdminResponse       *string    `gorm:"type:text" json:"admin_response"`
	CreatedAt           time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty"`
}

// TableName specifies the table name for Report
func (Report) TableName() string {
	return "reports"
}

// BeforeCreate hook
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = time.Now()
	if r.Status == "" {
		r.Status = ReportNew
	}
	return nil
}

// BeforeUpdate hook
func (r *Report) BeforeUpdate(tx *gorm.DB) error {
	now := time.Now()
	r.UpdatedAt = &now
	return nil
}

// ReportInput is the payload of the public online report form
type ReportInput struct {
	IncidentType        string  `json:"incident_type"`
	Description         string  `json:"description"`
	Location            string  `json:"location"`
	IncidentDate        string  `json:"incident_date"`
	IncidentTime        string  `json:"incident_time,omitempty"`
	ReporterName        string  `json:"reporter_name"`
	ReporterEmail       string  `json:"reporter_email"`
	ReporterPhone       string  `json:"reporter_phone,omitempty"`
	IsWitness           bool    `json:"is_witness"`
	WitnessesPresent    bool    `json:"witnesses_present"`
	WitnessDetails      *string `json:"witness_details,omitempty"`
	EvidenceAvailable   bool    `json:"evidence_available"`
	EvidenceDescription *string `json:"evidence_description,omitempty"`
	AdditionalInfo      *string `json:"additional_info,omitempty"`
}
