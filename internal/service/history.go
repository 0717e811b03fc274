package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"printfee/api/internal/model"
)

const (
	lastMeterKeyPrefix = "printfee:lastmeter:"
	lastMeterCacheTTL  = 24 * time.Hour
)

// HistoryService handles the calculation history: record persistence,
// listing for export, prior-reading lookup and clearing.
type HistoryService struct {
	db     *gorm.DB
	redis  *redis.Client
	events *EventService
}

// NewHistoryService creates a new history service
func NewHistoryService(db *gorm.DB, redisClient *redis.Client, events *EventService) *HistoryService {
	return &HistoryService{
		db:     db,
		redis:  redisClient,
		events: events,
	}
}

// Add persists a billing record, refreshes the device's cached last
// reading and publishes the calculated event. Records are insert-only.
func (s *HistoryService) Add(ctx context.Context, rec *model.BillingRecord) error {
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return err
	}

	s.cacheLastMeter(ctx, rec)
	s.events.PublishCalculated(rec)
	return nil
}

// ListAll returns every billing record, most recently calculated first.
// This ordering is the contract the ledger aggregation relies on.
func (s *HistoryService) ListAll(ctx context.Context) ([]model.BillingRecord, error) {
	var records []model.BillingRecord
	err := s.db.WithContext(ctx).
		Order("calculate_time DESC, id DESC").
		Find(&records).Error
	return records, err
}

// ListByCompany returns one customer's records, most recent first
func (s *HistoryService) ListByCompany(ctx context.Context, companyName string) ([]model.BillingRecord, error) {
	var records []model.BillingRecord
	err := s.db.WithContext(ctx).
		Where("company_name = ?", companyName).
		Order("calculate_time DESC, id DESC").
		Find(&records).Error
	return records, err
}

// LastMeter returns the most recent second reading for a device,
// identified by company, model and serial. Reads through the Redis
// cache; a miss falls back to the store and repopulates the cache.
func (s *HistoryService) LastMeter(ctx context.Context, companyName, deviceModel, serial string) (*model.LastMeterReading, error) {
	key := lastMeterKey(companyName, deviceModel, serial)

	if s.redis != nil {
		if data, err := s.redis.Get(ctx, key).Result(); err == nil {
			var reading model.LastMeterReading
			if err := json.Unmarshal([]byte(data), &reading); err == nil {
				return &reading, nil
			}
			// Poisoned entry, drop it and fall through to the store
			s.redis.Del(ctx, key)
		}
	}

	var rec model.BillingRecord
	err := s.db.WithContext(ctx).
		Where("company_name = ? AND model = ? AND serial = ?", companyName, deviceModel, serial).
		Order("calculate_time DESC, id DESC").
		First(&rec).Error
	if err != nil {
		return nil, err
	}

	reading := &model.LastMeterReading{
		LastBlack: rec.SecondBlack,
		LastColor: rec.SecondColor,
		LastDate:  rec.SecondDate,
	}
	s.setLastMeterCache(ctx, key, reading)
	return reading, nil
}

// Clear removes all billing records and the cached readings derived
// from them. Irreversible; customers are kept.
func (s *HistoryService) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.BillingRecord{}).Error; err != nil {
		return err
	}

	s.dropLastMeterCache(ctx)
	s.events.PublishHistoryCleared()
	return nil
}

func (s *HistoryService) cacheLastMeter(ctx context.Context, rec *model.BillingRecord) {
	key := lastMeterKey(rec.CompanyName, rec.Model, rec.Serial)
	s.setLastMeterCache(ctx, key, &model.LastMeterReading{
		LastBlack: rec.SecondBlack,
		LastColor: rec.SecondColor,
		LastDate:  rec.SecondDate,
	})
}

func (s *HistoryService) setLastMeterCache(ctx context.Context, key string, reading *model.LastMeterReading) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(reading)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, payload, lastMeterCacheTTL).Err(); err != nil {
		log.Printf("[History] cache last meter reading failed: %v", err)
	}
}

func (s *HistoryService) dropLastMeterCache(ctx context.Context) {
	if s.redis == nil {
		return
	}
	iter := s.redis.Scan(ctx, 0, lastMeterKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		s.redis.Del(ctx, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("[History] drop last meter cache failed: %v", err)
	}
}

func lastMeterKey(companyName, deviceModel, serial string) string {
	return fmt.Sprintf("%s%s:%s:%s", lastMeterKeyPrefix, companyName, deviceModel, serial)
}
