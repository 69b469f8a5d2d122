package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"spyfly/internal/models"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed scan history store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		spot_price REAL NOT NULL,
		volatility_proxy REAL NOT NULL,
		sentiment_score REAL NOT NULL,
		reason TEXT,
		recommendation_count INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS recommendations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL,
		long_strike REAL NOT NULL,
		short_strike REAL NOT NULL,
		net_debit REAL NOT NULL,
		max_profit REAL NOT NULL,
		risk_reward_ratio REAL NOT NULL,
		probability_of_profit REAL NOT NULL,
		expected_value REAL NOT NULL,
		ranking_score REAL NOT NULL,
		contracts INTEGER NOT NULL,
		total_cost REAL NOT NULL,
		buying_power_used_pct REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (scan_id) REFERENCES scans(id)
	);

	CREATE INDEX IF NOT EXISTS idx_recommendations_scan ON recommendations(scan_id);
	CREATE INDEX IF NOT EXISTS idx_scans_timestamp ON scans(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveScan persists one scan result with its recommendations in a
// single transaction.
func (s *SQLiteStore) SaveScan(ctx context.Context, result *models.ScanResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO scans (timestamp, spot_price, volatility_proxy, sentiment_score, reason, recommendation_count)
		VALUES (?, ?, ?, ?, ?, ?)`,
		result.Timestamp, result.SpotPrice, result.VolatilityProxy,
		result.SentimentScore, result.Reason, len(result.Recommendations),
	)
	if err != nil {
		return fmt.Errorf("insert scan: %w", err)
	}
	scanID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("scan id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO recommendations (
			scan_id, long_strike, short_strike, net_debit, max_profit,
			risk_reward_ratio, probability_of_profit, expected_value,
			ranking_score, contracts, total_cost, buying_power_used_pct
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range result.Recommendations {
		if _, err := stmt.ExecContext(ctx,
			scanID, rec.LongStrike, rec.ShortStrike, rec.NetDebit, rec.MaxProfit,
			rec.RiskRewardRatio, rec.ProbabilityOfProfit, rec.ExpectedValue,
			rec.RankingScore, rec.ContractsToTrade, rec.TotalCost, rec.BuyingPowerUsedPct,
		); err != nil {
			return fmt.Errorf("insert recommendation: %w", err)
		}
	}

	return tx.Commit()
}

// History returns the most recent persisted recommendations, newest
// first.
func (s *SQLiteStore) History(ctx context.Context, limit int) ([]ScanRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.scan_id, s.timestamp, s.spot_price,
		       r.long_strike, r.short_strike, r.net_debit, r.max_profit,
		       r.risk_reward_ratio, r.probability_of_profit, r.expected_value,
		       r.ranking_score, r.contracts, r.total_cost, r.buying_power_used_pct
		FROM recommendations r
		JOIN scans s ON s.id = r.scan_id
		ORDER BY s.timestamp DESC, r.ranking_score DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []ScanRecord
	for rows.Next() {
		var rec ScanRecord
		if err := rows.Scan(
			&rec.ScanID, &rec.ScanTime, &rec.SpotPrice,
			&rec.LongStrike, &rec.ShortStrike, &rec.NetDebit, &rec.MaxProfit,
			&rec.RiskRewardRatio, &rec.ProbabilityOfProfit, &rec.ExpectedValue,
			&rec.RankingScore, &rec.Contracts, &rec.TotalCost, &rec.BuyingPowerUsedPct,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
