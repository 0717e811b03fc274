package model

// LedgerGroup holds one customer's records in the order the store
// supplied them (most recently calculated first).
type LedgerGroup struct {
	CompanyName string          `json:"company_name"`
	Records     []BillingRecord `json:"records"`
}

// LedgerTotals are the grand totals across every record in the ledger.
type LedgerTotals struct {
	TotalBasicFee float64 `json:"total_basic_fee"`
	TotalOverFee  float64 `json:"total_over_fee"`
	TotalAllFee   float64 `json:"total_all_fee"`
}

// ExportLedger is the grouped, totalized view of billing records handed
// to the spreadsheet renderer. Groups appear in first-seen order.
type ExportLedger struct {
	Groups []LedgerGroup `json:"groups"`
	Totals LedgerTotals  `json:"totals"`
}
