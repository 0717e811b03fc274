package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"printfee/api/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Customer{}, &model.BillingRecord{}))
	return db
}

func newTestHistory(t *testing.T) (*HistoryService, *gorm.DB) {
	db := newTestDB(t)
	return NewHistoryService(db, nil, NewEventService(nil)), db
}

func TestHistoryAddAndListAll(t *testing.T) {
	svc, _ := newTestHistory(t)
	ctx := context.Background()

	times := []string{
		"2026-01-10 09:00:00",
		"2026-02-01 10:00:00",
		"2026-01-20 15:30:00",
	}
	for i, ts := range times {
		rec := &model.BillingRecord{
			CompanyName:   "甲公司",
			SecondBlack:   1000 + i,
			CalculateTime: ts,
		}
		require.NoError(t, svc.Add(ctx, rec))
		assert.NotZero(t, rec.ID)
	}

	records, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2026-02-01 10:00:00", records[0].CalculateTime)
	assert.Equal(t, "2026-01-20 15:30:00", records[1].CalculateTime)
	assert.Equal(t, "2026-01-10 09:00:00", records[2].CalculateTime)
}

func TestHistoryListByCompany(t *testing.T) {
	svc, _ := newTestHistory(t)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, &model.BillingRecord{CompanyName: "甲公司", CalculateTime: "2026-01-10 09:00:00"}))
	require.NoError(t, svc.Add(ctx, &model.BillingRecord{CompanyName: "乙公司", CalculateTime: "2026-01-11 09:00:00"}))
	require.NoError(t, svc.Add(ctx, &model.BillingRecord{CompanyName: "甲公司", CalculateTime: "2026-01-12 09:00:00"}))

	records, err := svc.ListByCompany(ctx, "甲公司")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2026-01-12 09:00:00", records[0].CalculateTime)
}

func TestLastMeter(t *testing.T) {
	svc, _ := newTestHistory(t)
	ctx := context.Background()

	require.NoError(t, svc.Add(ctx, &model.BillingRecord{
		CompanyName:   "甲公司",
		Model:         "MX-3618",
		Serial:        "SN001",
		SecondBlack:   1500,
		SecondColor:   200,
		SecondDate:    "2026.01.31",
		CalculateTime: "2026-01-31 17:00:00",
	}))
	require.NoError(t, svc.Add(ctx, &model.BillingRecord{
		CompanyName:   "甲公司",
		Model:         "MX-3618",
		Serial:        "SN001",
		SecondBlack:   2100,
		SecondColor:   350,
		SecondDate:    "2026.02.28",
		CalculateTime: "2026-02-28 17:00:00",
	}))

	reading, err := svc.LastMeter(ctx, "甲公司", "MX-3618", "SN001")
	require.NoError(t, err)
	assert.Equal(t, 2100, reading.LastBlack)
	assert.Equal(t, 350, reading.LastColor)
	assert.Equal(t, "2026.02.28", reading.LastDate)

	_, err = svc.LastMeter(ctx, "甲公司", "MX-3618", "SN999")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestClearKeepsCustomers(t *testing.T) {
	svc, db := newTestHistory(t)
	ctx := context.Background()

	customers := NewCustomerService(db)
	_, err := customers.Upsert(ctx, "甲公司", "增税")
	require.NoError(t, err)

	require.NoError(t, svc.Add(ctx, &model.BillingRecord{CompanyName: "甲公司", CalculateTime: "2026-01-10 09:00:00"}))
	require.NoError(t, svc.Clear(ctx))

	records, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)

	names, err := customers.ListNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"甲公司"}, names)
}
