package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printfee/api/internal/model"
)

func TestBuildLedger_Empty(t *testing.T) {
	_, err := BuildLedger(nil)
	assert.ErrorIs(t, err, ErrNoRecords)

	_, err = BuildLedger([]model.BillingRecord{})
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestBuildLedger_GroupOrder(t *testing.T) {
	// Interleaved input: group positions follow first appearance and the
	// records inside each group keep their input order.
	records := []model.BillingRecord{
		{ID: 1, CompanyName: "甲公司"},
		{ID: 2, CompanyName: "乙公司"},
		{ID: 3, CompanyName: "甲公司"},
		{ID: 4, CompanyName: "丙公司"},
		{ID: 5, CompanyName: "乙公司"},
	}

	ledger, err := BuildLedger(records)
	require.NoError(t, err)

	require.Len(t, ledger.Groups, 3)
	assert.Equal(t, "甲公司", ledger.Groups[0].CompanyName)
	assert.Equal(t, "乙公司", ledger.Groups[1].CompanyName)
	assert.Equal(t, "丙公司", ledger.Groups[2].CompanyName)

	ids := func(g model.LedgerGroup) []uint {
		out := make([]uint, 0, len(g.Records))
		for _, r := range g.Records {
			out = append(out, r.ID)
		}
		return out
	}
	assert.Equal(t, []uint{1, 3}, ids(ledger.Groups[0]))
	assert.Equal(t, []uint{2, 5}, ids(ledger.Groups[1]))
	assert.Equal(t, []uint{4}, ids(ledger.Groups[2]))
}

func TestBuildLedger_Totals(t *testing.T) {
	records := []model.BillingRecord{
		{CompanyName: "甲公司", BasicFee: 10, OverFeeBlack: 3, OverFeeColor: 2, TotalFee: 15},
		{CompanyName: "乙公司", BasicFee: 20, OverFeeBlack: 0, OverFeeColor: 0, TotalFee: 20},
		{CompanyName: "甲公司", BasicFee: 5.5, OverFeeBlack: 0.01, OverFeeColor: 0.01, TotalFee: 5.52},
	}

	ledger, err := BuildLedger(records)
	require.NoError(t, err)

	assert.Equal(t, 35.5, ledger.Totals.TotalBasicFee)
	assert.Equal(t, 5.02, ledger.Totals.TotalOverFee)
	assert.Equal(t, 40.52, ledger.Totals.TotalAllFee)
}
