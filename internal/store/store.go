// Package store provides persistence for scan history. The analytical
// core never reads this store; persistence stays off the hot path.
package store

import (
	"context"
	"time"

	"spyfly/internal/models"
)

// ScanRecord is one persisted recommendation with its scan metadata.
type ScanRecord struct {
	ScanID              int64
	ScanTime            time.Time
	SpotPrice           float64
	LongStrike          float64
	ShortStrike         float64
	NetDebit            float64
	MaxProfit           float64
	RiskRewardRatio     float64
	ProbabilityOfProfit float64
	ExpectedValue       float64
	RankingScore        float64
	Contracts           int
	TotalCost           float64
	BuyingPowerUsedPct  float64
}

// Store persists scan results and serves the history query.
type Store interface {
	SaveScan(ctx context.Context, result *models.ScanResult) error
	History(ctx context.Context, limit int) ([]ScanRecord, error)
	Close() error
}
