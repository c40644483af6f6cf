// Package store mirrors article view counts into SQLite through gorm.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Glitch-Aswin/DevArticles/models"
	"github.com/Glitch-Aswin/DevArticles/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxRetries   = 3
	initialDelay = 50 * time.Millisecond
)

// ViewStore persists per-article view totals.
type ViewStore struct {
	db *gorm.DB
}

func NewViewStore(db *gorm.DB) *ViewStore {
	return &ViewStore{db: db}
}

// AddViews adds each delta to the stored total of its article, creating rows
// as needed. All deltas are applied in one transaction.
func (s *ViewStore) AddViews(ctx context.Context, deltas map[string]int64) error {
	rows := make([]models.ArticleView, 0, len(deltas))
	now := time.Now()
	for id, n := range deltas {
		if id == "" || n <= 0 {
			continue
		}
		rows = append(rows, models.ArticleView{ArticleID: id, Views: n, UpdatedAt: now})
	}
	if len(rows) == 0 {
		return nil
	}

	op := func() error {
		return s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "article_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"views":      gorm.Expr("views + excluded.views"),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).Create(&rows).Error
	}
	if err := utils.RetryWithExponentialBackoff(ctx, op, maxRetries, initialDelay); err != nil {
		return fmt.Errorf("store views for %d articles: %w", len(rows), err)
	}
	return nil
}

// LoadAll returns every stored total keyed by article id.
func (s *ViewStore) LoadAll(ctx context.Context) (map[string]int64, error) {
	var rows []models.ArticleView
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load article views: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.ArticleID] = r.Views
	}
	return out, nil
}

// Ping checks the underlying connection.
func (s *ViewStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *ViewStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
