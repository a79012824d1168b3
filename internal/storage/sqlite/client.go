package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/ai-risk-sentinel/backend/internal/storage/models"
	"github.com/ai-risk-sentinel/backend/internal/taxonomy"
	"github.com/ai-risk-sentinel/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS risks (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		source_id TEXT,
		title TEXT NOT NULL,
		description TEXT,
		model_type TEXT,
		category TEXT NOT NULL,
		sst_relevance REAL DEFAULT 0.0,
		severity INTEGER DEFAULT 3,
		validation_status TEXT DEFAULT 'pending',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_risks_category ON risks(category);
	CREATE INDEX IF NOT EXISTS idx_risks_source ON risks(source);
	CREATE INDEX IF NOT EXISTS idx_risks_source_id ON risks(source_id);

	CREATE TABLE IF NOT EXISTS incidents (
		id TEXT PRIMARY KEY,
		external_id TEXT UNIQUE,
		title TEXT NOT NULL,
		description TEXT,
		category TEXT,
		severity INTEGER,
		date_occurred INTEGER,
		source_url TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_incidents_category ON incidents(category);

	CREATE TABLE IF NOT EXISTS model_cards (
		model_id TEXT PRIMARY KEY,
		model_name TEXT,
		author TEXT,
		model_type TEXT,
		has_risk_section INTEGER DEFAULT 0,
		risk_section_text TEXT,
		downloads INTEGER DEFAULT 0,
		likes INTEGER DEFAULT 0,
		last_modified INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_model_cards_type ON model_cards(model_type);

	CREATE TABLE IF NOT EXISTS metrics_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		snapshot_date INTEGER NOT NULL,
		global_bsi REAL NOT NULL,
		doc_quality_score REAL,
		total_risks INTEGER,
		total_incidents INTEGER,
		model_cards_analyzed INTEGER,
		category_metrics TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_date ON metrics_snapshots(snapshot_date);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) InsertRisk(risk *models.Risk) error {
	query := `
		INSERT INTO risks (id, source, source_id, title, description, model_type,
			category, sst_relevance, severity, validation_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			sst_relevance = excluded.sst_relevance,
			validation_status = excluded.validation_status,
			updated_at = excluded.updated_at
	`

	_, err := c.db.Exec(
		query,
		risk.ID,
		risk.Source,
		risk.SourceID,
		risk.Title,
		risk.Description,
		risk.ModelType,
		risk.Category.String(),
		risk.SSTRelevance,
		risk.Severity,
		risk.ValidationStatus,
		risk.CreatedAt.Unix(),
		risk.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert risk: %w", err)
	}
	return nil
}

// ListRisks returns risks matching the optional category/source filters.
// Rows whose stored category no longer parses are skipped, not fatal.
func (c *Client) ListRisks(category, source string, limit, offset int) ([]models.Risk, error) {
	query := `
		SELECT id, source, source_id, title, description, model_type,
			category, sst_relevance, severity, validation_status, created_at, updated_at
		FROM risks WHERE 1=1`
	args := []interface{}{}

	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	if source != "" {
		query += " AND source = ?"
		args = append(args, source)
	}
	// SQLite treats LIMIT -1 as unlimited.
	if limit <= 0 {
		limit = -1
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query risks: %w", err)
	}
	defer rows.Close()

	var risks []models.Risk
	for rows.Next() {
		var r models.Risk
		var categoryStr string
		var createdAt, updatedAt int64

		err := rows.Scan(&r.ID, &r.Source, &r.SourceID, &r.Title, &r.Description,
			&r.ModelType, &categoryStr, &r.SSTRelevance, &r.Severity,
			&r.ValidationStatus, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan risk: %w", err)
		}

		cat, err := taxonomy.Parse(categoryStr)
		if err != nil {
			logger.Warn("Skipping risk with unknown stored category",
				zap.String("risk_id", r.ID),
				zap.String("category", categoryStr),
			)
			continue
		}
		r.Category = cat
		r.CreatedAt = time.Unix(createdAt, 0)
		r.UpdatedAt = time.Unix(updatedAt, 0)

		risks = append(risks, r)
	}

	return risks, rows.Err()
}

func (c *Client) CountRisks() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM risks").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count risks: %w", err)
	}
	return count, nil
}

func (c *Client) InsertIncident(incident *models.Incident) error {
	var dateOccurred interface{}
	if incident.DateOccurred != nil {
		dateOccurred = incident.DateOccurred.Unix()
	}

	_, err := c.db.Exec(`
		INSERT INTO incidents (id, external_id, title, description, category,
			severity, date_occurred, source_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			category = excluded.category
	`,
		incident.ID,
		incident.ExternalID,
		incident.Title,
		incident.Description,
		incident.Category,
		incident.Severity,
		dateOccurred,
		incident.SourceURL,
		incident.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert incident: %w", err)
	}
	return nil
}

func (c *Client) ListIncidents(limit, offset int) ([]models.Incident, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := c.db.Query(`
		SELECT id, external_id, title, description, category, severity,
			date_occurred, source_url, created_at
		FROM incidents ORDER BY created_at DESC LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	var incidents []models.Incident
	for rows.Next() {
		var inc models.Incident
		var dateOccurred sql.NullInt64
		var createdAt int64

		err := rows.Scan(&inc.ID, &inc.ExternalID, &inc.Title, &inc.Description,
			&inc.Category, &inc.Severity, &dateOccurred, &inc.SourceURL, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}

		if dateOccurred.Valid {
			t := time.Unix(dateOccurred.Int64, 0)
			inc.DateOccurred = &t
		}
		inc.CreatedAt = time.Unix(createdAt, 0)

		incidents = append(incidents, inc)
	}

	return incidents, rows.Err()
}

func (c *Client) UpsertModelCard(card *models.ModelCard) error {
	_, err := c.db.Exec(`
		INSERT INTO model_cards (model_id, model_name, author, model_type,
			has_risk_section, risk_section_text, downloads, likes,
			last_modified, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(model_id) DO UPDATE SET
			has_risk_section = excluded.has_risk_section,
			risk_section_text = excluded.risk_section_text,
			downloads = excluded.downloads,
			likes = excluded.likes,
			last_modified = excluded.last_modified,
			updated_at = excluded.updated_at
	`,
		card.ModelID,
		card.ModelName,
		card.Author,
		card.ModelType,
		card.HasRiskSection,
		card.RiskSectionText,
		card.Downloads,
		card.Likes,
		card.LastModified.Unix(),
		card.CreatedAt.Unix(),
		card.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert model card: %w", err)
	}
	return nil
}

func (c *Client) InsertSnapshot(snapshot *models.MetricsSnapshot) error {
	_, err := c.db.Exec(`
		INSERT INTO metrics_snapshots (snapshot_date, global_bsi, doc_quality_score,
			total_risks, total_incidents, model_cards_analyzed, category_metrics, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		snapshot.SnapshotDate.Unix(),
		snapshot.GlobalBSI,
		snapshot.DocQualityScore,
		snapshot.TotalRisks,
		snapshot.TotalIncidents,
		snapshot.ModelCardsAnalyzed,
		snapshot.CategoryMetrics,
		snapshot.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return nil
}

func (c *Client) LatestSnapshot() (*models.MetricsSnapshot, error) {
	var s models.MetricsSnapshot
	var snapshotDate, createdAt int64

	err := c.db.QueryRow(`
		SELECT id, snapshot_date, global_bsi, doc_quality_score, total_risks,
			total_incidents, model_cards_analyzed, category_metrics, created_at
		FROM metrics_snapshots ORDER BY snapshot_date DESC LIMIT 1
	`).Scan(&s.ID, &snapshotDate, &s.GlobalBSI, &s.DocQualityScore, &s.TotalRisks,
		&s.TotalIncidents, &s.ModelCardsAnalyzed, &s.CategoryMetrics, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}

	s.SnapshotDate = time.Unix(snapshotDate, 0)
	s.CreatedAt = time.Unix(createdAt, 0)
	return &s, nil
}
