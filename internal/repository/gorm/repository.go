package gormrepository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradealerts/internal/models"
	"tradealerts/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// --- timeframe state --------------------------------------------------------

func (s *Store) GetTimeframeState(ctx context.Context, symbol, timeframe string) (*models.TimeframeState, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.TimeframeState
	err := s.db.WithContext(ctx).
		Where("symbol = ? AND timeframe = ?", symbol, timeframe).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListTimeframeStates(ctx context.Context, symbol string) ([]models.TimeframeState, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.TimeframeState
	if err := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListStateSymbols(ctx context.Context) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var symbols []string
	if err := s.db.WithContext(ctx).
		Model(&models.TimeframeState{}).
		Distinct("symbol").
		Order("symbol asc").
		Pluck("symbol", &symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}

func (s *Store) UpsertTimeframeState(ctx context.Context, item *models.TimeframeState) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "symbol"}, {Name: "timeframe"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"ema_status",
			"macd_status",
			"last_ema_update",
			"last_macd_update",
			"last_ema_price",
			"last_macd_price",
			"updated_at",
		}),
	}).Create(item).Error
}

// --- history ----------------------------------------------------------------

func (s *Store) InsertStateChange(ctx context.Context, item *models.StateChange) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListStateChanges(ctx context.Context, params repository.ListStateChangesParams) ([]models.StateChange, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.StateChange{})
	if params.Symbol != nil && strings.TrimSpace(*params.Symbol) != "" {
		query = query.Where("symbol = ?", strings.TrimSpace(*params.Symbol))
	}
	if params.Timeframe != nil && strings.TrimSpace(*params.Timeframe) != "" {
		query = query.Where("timeframe = ?", strings.TrimSpace(*params.Timeframe))
	}
	if params.Indicator != nil && strings.TrimSpace(*params.Indicator) != "" {
		query = query.Where("indicator = ?", strings.TrimSpace(*params.Indicator))
	}
	limit := params.Limit
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	var items []models.StateChange
	if err := query.Order("id desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListLatestStateChanges(ctx context.Context) ([]models.StateChange, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	sub := s.db.Model(&models.StateChange{}).
		Select("MAX(id)").
		Group("symbol, timeframe, indicator")
	var items []models.StateChange
	if err := s.db.WithContext(ctx).
		Where("id IN (?)", sub).
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// --- toggles ----------------------------------------------------------------

func (s *Store) GetSymbolToggles(ctx context.Context, symbol string) (*models.SymbolToggles, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.SymbolToggles
	err := s.db.WithContext(ctx).Where("symbol = ?", symbol).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpsertSymbolToggles(ctx context.Context, item *models.SymbolToggles) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.Symbol) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"toggles", "updated_at"}),
	}).Create(item).Error
}

// --- webhook endpoints ------------------------------------------------------

func (s *Store) GetWebhookEndpoint(ctx context.Context, symbol string) (*models.WebhookEndpoint, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.WebhookEndpoint
	err := s.db.WithContext(ctx).Where("symbol = ?", symbol).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListWebhookEndpoints(ctx context.Context) ([]models.WebhookEndpoint, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.WebhookEndpoint
	if err := s.db.WithContext(ctx).Order("symbol asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpsertWebhookEndpoint(ctx context.Context, item *models.WebhookEndpoint) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.Symbol) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoUpdates: clause.AssignmentColumns([]string{"url", "note", "updated_at"}),
	}).Create(item).Error
}

func (s *Store) DeleteWebhookEndpoint(ctx context.Context, symbol string) (bool, error) {
	if s == nil || s.db == nil {
		return false, nil
	}
	res := s.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Delete(&models.WebhookEndpoint{})
	return res.RowsAffected > 0, res.Error
}

// --- metadata ---------------------------------------------------------------

func (s *Store) GetMetadataByKey(ctx context.Context, key string) (*models.Metadata, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Metadata
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) UpsertMetadata(ctx context.Context, item *models.Metadata) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	if strings.TrimSpace(item.Key) == "" {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(item).Error
}
