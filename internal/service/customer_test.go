package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"printfee/api/internal/model"
)

func TestCustomerUpsert(t *testing.T) {
	db := newTestDB(t)
	svc := NewCustomerService(db)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, "甲公司", "增税")
	require.NoError(t, err)
	require.NotZero(t, first.ID)
	assert.Equal(t, "增税", first.InvoiceType)

	// Same name again: no second row, invoice type is refreshed
	second, err := svc.Upsert(ctx, "甲公司", "普票")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "普票", second.InvoiceType)

	var count int64
	require.NoError(t, db.Model(&model.Customer{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCustomerUpsert_DefaultInvoiceType(t *testing.T) {
	db := newTestDB(t)
	svc := NewCustomerService(db)

	customer, err := svc.Upsert(context.Background(), "乙公司", "")
	require.NoError(t, err)
	assert.Equal(t, "增税", customer.InvoiceType)
}

func TestCustomerGetByName(t *testing.T) {
	db := newTestDB(t)
	svc := NewCustomerService(db)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, "甲公司", "增税")
	require.NoError(t, err)

	customer, err := svc.GetByName(ctx, "甲公司")
	require.NoError(t, err)
	assert.Equal(t, "甲公司", customer.CompanyName)

	_, err = svc.GetByName(ctx, "不存在的公司")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
