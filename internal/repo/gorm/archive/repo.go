package archive

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when no archived game matches.
var ErrNotFound = errors.New("archived game not found")

// Repo provides GORM-based persistence for the archived game index.
type Repo struct{ db *gorm.DB }

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(&ArchivedGame{}) }
func NewRepo(db *gorm.DB) *Repo     { return &Repo{db: db} }

// Upsert inserts a or, when its game id is already indexed, replaces the
// stored columns.
func (r *Repo) Upsert(ctx context.Context, a *ArchivedGame) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "game_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at", "bonfire_id", "owner_wallet", "prompt", "object_key", "bytes", "episodes", "quests", "agents", "started_at", "archived_at", "stats"}),
	}).Create(a).Error
}

func (r *Repo) Get(ctx context.Context, gameID string) (*ArchivedGame, error) {
	var a ArchivedGame
	err := r.db.WithContext(ctx).Where("game_id = ?", gameID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListByBonfire returns archived games for bonfireID, newest first.
func (r *Repo) ListByBonfire(ctx context.Context, bonfireID string, limit int) ([]*ArchivedGame, error) {
	if limit <= 0 {
		limit = 50
	}
	var arr []*ArchivedGame
	if err := r.db.WithContext(ctx).Where("bonfire_id = ?", bonfireID).Order("archived_at DESC").Limit(limit).Find(&arr).Error; err != nil {
		return nil, err
	}
	return arr, nil
}

func (r *Repo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ArchivedGame{}).Count(&n).Error
	return n, err
}
