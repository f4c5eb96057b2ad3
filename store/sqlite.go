package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver registration

	"github.com/RyanBlaney/sonido-labels/agreement"
	"github.com/RyanBlaney/sonido-labels/dataset"
	"github.com/RyanBlaney/sonido-labels/label"
)

// SQLiteClient persists dataset manifests, prediction artifacts, and
// agreement runs in a local SQLite database.
type SQLiteClient struct {
	db *sql.DB
}

// ManifestSummary is the lightweight listing row for stored manifests.
type ManifestSummary struct {
	ID           string    `json:"id"`
	Taxonomy     string    `json:"taxonomy"`
	Root         string    `json:"root"`
	CreatedAt    time.Time `json:"created_at"`
	EntryCount   int       `json:"entry_count"`
	UnknownCount int       `json:"unknown_count"`
}

// PredictionRecord is one stored per-file prediction.
type PredictionRecord struct {
	RunID       string             `json:"run_id"`
	Path        string             `json:"path"`
	CreatedAt   time.Time          `json:"created_at"`
	Predictions []label.ScoredNote `json:"predictions"`
}

// NewSQLiteClient opens (or creates) the database at the given DSN and
// ensures the schema exists.
func NewSQLiteClient(dataSourceName string) (*SQLiteClient, error) {
	dbPath := dataSourceName
	if idx := strings.Index(dataSourceName, "?"); idx != -1 {
		dbPath = dataSourceName[:idx]
	}

	if dbPath != ":memory:" {
		dbDir := filepath.Dir(dbPath)
		if dbDir != "." && dbDir != "" {
			if err := os.MkdirAll(dbDir, 0o755); err != nil {
				return nil, fmt.Errorf("error creating database directory: %w", err)
			}
		}
	}

	// Add busy timeout param to DSN (milliseconds)
	if !strings.Contains(dataSourceName, "_busy_timeout") {
		if strings.Contains(dataSourceName, "?") {
			dataSourceName += "&_busy_timeout=5000"
		} else {
			dataSourceName += "?_busy_timeout=5000"
		}
	}

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("error connecting to SQLite: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("error creating tables: %w", err)
	}

	return &SQLiteClient{db: db}, nil
}

// createTables creates the required tables if they don't exist
func createTables(db *sql.DB) error {
	createManifestsTable := `
    CREATE TABLE IF NOT EXISTS manifests (
        id TEXT PRIMARY KEY,
        taxonomy TEXT NOT NULL,
        root TEXT NOT NULL,
        created_at DATETIME NOT NULL,
        entry_count INTEGER NOT NULL DEFAULT 0,
        unknown_count INTEGER NOT NULL DEFAULT 0,
        payload TEXT NOT NULL
    );
    `

	createPredictionsTable := `
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT NOT NULL,
        path TEXT NOT NULL,
        created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        predictions TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_run ON predictions(run_id);
    `

	createAgreementRunsTable := `
    CREATE TABLE IF NOT EXISTS agreement_runs (
        run_id TEXT PRIMARY KEY,
        created_at DATETIME NOT NULL,
        file_count INTEGER NOT NULL DEFAULT 0,
        mean_mae REAL NOT NULL DEFAULT 0,
        mean_mse REAL NOT NULL DEFAULT 0,
        top1_match_pct REAL NOT NULL DEFAULT 0,
        payload TEXT NOT NULL
    );
    `

	if _, err := db.Exec(createManifestsTable); err != nil {
		return fmt.Errorf("error creating manifests table: %w", err)
	}
	if _, err := db.Exec(createPredictionsTable); err != nil {
		return fmt.Errorf("error creating predictions table: %w", err)
	}
	if _, err := db.Exec(createAgreementRunsTable); err != nil {
		return fmt.Errorf("error creating agreement_runs table: %w", err)
	}
	return nil
}

func (s *SQLiteClient) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveManifest stores a manifest, replacing any previous version with
// the same ID. The full manifest travels as JSON in the payload column.
func (s *SQLiteClient) SaveManifest(m *dataset.Manifest) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("error encoding manifest: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO manifests (id, taxonomy, root, created_at, entry_count, unknown_count, payload)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, string(m.Taxonomy), m.Root, m.CreatedAt, len(m.Entries), m.UnknownCount, string(payload),
	)
	if err != nil {
		return fmt.Errorf("error saving manifest: %w", err)
	}
	return nil
}

// GetManifest retrieves a manifest by ID. The second return reports
// whether the manifest exists.
func (s *SQLiteClient) GetManifest(id string) (*dataset.Manifest, bool, error) {
	var payload string
	err := s.db.QueryRow("SELECT payload FROM manifests WHERE id = ?", id).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error querying manifest: %w", err)
	}

	var manifest dataset.Manifest
	if err := json.Unmarshal([]byte(payload), &manifest); err != nil {
		return nil, false, fmt.Errorf("error decoding manifest payload: %w", err)
	}
	return &manifest, true, nil
}

// ListManifests returns summaries of all stored manifests, newest first.
func (s *SQLiteClient) ListManifests() ([]ManifestSummary, error) {
	rows, err := s.db.Query(
		"SELECT id, taxonomy, root, created_at, entry_count, unknown_count FROM manifests ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("error querying manifests: %w", err)
	}
	defer rows.Close()

	var summaries []ManifestSummary
	for rows.Next() {
		var summary ManifestSummary
		if err := rows.Scan(&summary.ID, &summary.Taxonomy, &summary.Root,
			&summary.CreatedAt, &summary.EntryCount, &summary.UnknownCount); err != nil {
			return nil, fmt.Errorf("error scanning manifest row: %w", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// DeleteManifest removes a manifest by ID.
func (s *SQLiteClient) DeleteManifest(id string) error {
	if _, err := s.db.Exec("DELETE FROM manifests WHERE id = ?", id); err != nil {
		return fmt.Errorf("error deleting manifest: %w", err)
	}
	return nil
}

// SavePredictions stores decoded predictions for a batch of files
// under one run ID.
func (s *SQLiteClient) SavePredictions(runID string, records map[string][]label.ScoredNote) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO predictions (run_id, path, predictions) VALUES (?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer stmt.Close()

	for path, notes := range records {
		payload, err := json.Marshal(notes)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("error encoding predictions for %s: %w", path, err)
		}
		if _, err := stmt.Exec(runID, path, string(payload)); err != nil {
			tx.Rollback()
			return fmt.Errorf("error inserting predictions for %s: %w", path, err)
		}
	}

	return tx.Commit()
}

// GetPredictionsByRun retrieves all stored predictions for a run.
func (s *SQLiteClient) GetPredictionsByRun(runID string) ([]PredictionRecord, error) {
	rows, err := s.db.Query(
		"SELECT run_id, path, created_at, predictions FROM predictions WHERE run_id = ? ORDER BY path",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying predictions: %w", err)
	}
	defer rows.Close()

	var records []PredictionRecord
	for rows.Next() {
		var record PredictionRecord
		var payload string
		if err := rows.Scan(&record.RunID, &record.Path, &record.CreatedAt, &payload); err != nil {
			return nil, fmt.Errorf("error scanning prediction row: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &record.Predictions); err != nil {
			return nil, fmt.Errorf("error decoding predictions for %s: %w", record.Path, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// SaveAgreementSummary stores a backend comparison run.
func (s *SQLiteClient) SaveAgreementSummary(summary *agreement.Summary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("error encoding agreement summary: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO agreement_runs (run_id, created_at, file_count, mean_mae, mean_mse, top1_match_pct, payload)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		summary.RunID, summary.CreatedAt, summary.Count, summary.MeanMAE, summary.MeanMSE,
		summary.Top1MatchPct, string(payload),
	)
	if err != nil {
		return fmt.Errorf("error saving agreement summary: %w", err)
	}
	return nil
}

// GetAgreementSummary retrieves a comparison run by ID. The second
// return reports whether the run exists.
func (s *SQLiteClient) GetAgreementSummary(runID string) (*agreement.Summary, bool, error) {
	var payload string
	err := s.db.QueryRow("SELECT payload FROM agreement_runs WHERE run_id = ?", runID).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error querying agreement run: %w", err)
	}

	var summary agreement.Summary
	if err := json.Unmarshal([]byte(payload), &summary); err != nil {
		return nil, false, fmt.Errorf("error decoding agreement payload: %w", err)
	}
	return &summary, true, nil
}

// TotalManifests reports how many manifests are stored.
func (s *SQLiteClient) TotalManifests() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM manifests").Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting manifests: %w", err)
	}
	return count, nil
}
