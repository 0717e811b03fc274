package service

import (
	"errors"

	"github.com/shopspring/decimal"

	"printfee/api/internal/model"
)

// ErrNoRecords is returned when an export is requested with nothing to
// export. An empty spreadsheet is a user-facing error, not a document.
var ErrNoRecords = errors.New("暂无计算数据可导出")

// BuildLedger partitions billing records by company name and accumulates
// the grand totals in a single pass.
//
// The partition is stable, not a sort: the first record seen for a
// company fixes that group's position, and records keep the order the
// store supplied them in (most recently calculated first).
func BuildLedger(records []model.BillingRecord) (*model.ExportLedger, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	ledger := &model.ExportLedger{}
	index := make(map[string]int)

	totalBasic := decimal.Zero
	totalOver := decimal.Zero
	totalAll := decimal.Zero

	for _, rec := range records {
		i, ok := index[rec.CompanyName]
		if !ok {
			i = len(ledger.Groups)
			index[rec.CompanyName] = i
			ledger.Groups = append(ledger.Groups, model.LedgerGroup{CompanyName: rec.CompanyName})
		}
		ledger.Groups[i].Records = append(ledger.Groups[i].Records, rec)

		totalBasic = totalBasic.Add(decimal.NewFromFloat(rec.BasicFee))
		totalOver = totalOver.Add(decimal.NewFromFloat(rec.OverFeeBlack)).
			Add(decimal.NewFromFloat(rec.OverFeeColor))
		totalAll = totalAll.Add(decimal.NewFromFloat(rec.TotalFee))
	}

	ledger.Totals = model.LedgerTotals{
		TotalBasicFee: totalBasic.Round(2).InexactFloat64(),
		TotalOverFee:  totalOver.Round(2).InexactFloat64(),
		TotalAllFee:   totalAll.Round(2).InexactFloat64(),
	}
	return ledger, nil
}
