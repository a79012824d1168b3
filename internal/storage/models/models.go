package models

import (
	"time"

	"github.com/ai-risk-sentinel/backend/internal/taxonomy"
)

type Risk struct {
	ID               string            `json:"id"`
	Source           string            `json:"source"`
	SourceID         string            `json:"source_id,omitempty"`
	Title            string            `json:"title"`
	Description      string            `json:"description,omitempty"`
	ModelType        string            `json:"model_type,omitempty"`
	Category         taxonomy.Category `json:"category"`
	SSTRelevance     float64           `json:"sst_relevance_score"`
	Severity         int               `json:"severity_potential"`
	ValidationStatus string            `json:"validation_status"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// Incident is a record from an external incident database. Category stays a
// raw string here: incident feeds are not trusted to use canonical names, so
// validation happens at load time where bad records can be skipped.
type Incident struct {
	ID           string     `json:"id"`
	ExternalID   string     `json:"external_id,omitempty"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Category     string     `json:"category"`
	Severity     int        `json:"severity,omitempty"`
	DateOccurred *time.Time `json:"date_occurred,omitempty"`
	SourceURL    string     `json:"source_url,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

type ModelCard struct {
	ModelID         string    `json:"model_id"`
	ModelName       string    `json:"model_name"`
	Author          string    `json:"author,omitempty"`
	ModelType       string    `json:"model_type,omitempty"`
	HasRiskSection  bool      `json:"has_risk_section"`
	RiskSectionText string    `json:"risk_section_text,omitempty"`
	Downloads       int       `json:"downloads"`
	Likes           int       `json:"likes"`
	LastModified    time.Time `json:"last_modified"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MetricsSnapshot persists the headline numbers of one gap analysis run so
// trends can be queried later.
type MetricsSnapshot struct {
	ID                 int       `json:"id"`
	SnapshotDate       time.Time `json:"snapshot_date"`
	GlobalBSI          float64   `json:"global_bsi"`
	DocQualityScore    float64   `json:"documentation_quality_score"`
	TotalRisks         int       `json:"total_risks"`
	TotalIncidents     int       `json:"total_incidents"`
	ModelCardsAnalyzed int       `json:"model_cards_analyzed"`
	CategoryMetrics    string    `json:"category_metrics,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// Risk source identifiers.
const (
	SourceHubCatalog    = "hub_catalog"
	SourceMITRepository = "mit_repository"
	SourceIncidentDB    = "ai_incident_db"
	SourceInternal      = "internal"
	SourceRegulatory    = "regulatory"
)

// Validation states for crawled risks.
const (
	ValidationPending   = "pending"
	ValidationValidated = "validated"
	ValidationRejected  = "rejected"
)
