package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Numeric accepts either a JSON number or a numeric string. The billing
// form submits meter readings as strings, so coercion errors must be
// surfaced by the validator with a field name rather than rejected by the
// JSON binder.
type Numeric string

// UnmarshalJSON stores the raw value; parsing happens at validation time.
func (n *Numeric) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*n = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*n = Numeric(strings.TrimSpace(v))
		return nil
	}
	*n = Numeric(s)
	return nil
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	if n.IsEmpty() {
		return []byte(`""`), nil
	}
	return json.Marshal(string(n))
}

// IsEmpty reports whether no value was supplied.
func (n Numeric) IsEmpty() bool {
	return strings.TrimSpace(string(n)) == ""
}

// Float parses the value, treating an absent value as 0.
func (n Numeric) Float() (float64, error) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// Int parses the value and truncates any fractional part, matching the
// legacy tool's handling of meter readings.
func (n Numeric) Int() (int, error) {
	f, err := n.Float()
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// CalculationRequest is the input of a single billing computation.
// String fields are free text; date stamps are kept verbatim for export.
type CalculationRequest struct {
	CompanyName  string  `json:"company_name"`
	InvoiceType  string  `json:"invoice_type"`
	Location     string  `json:"location"`
	IP           string  `json:"ip"`
	Model        string  `json:"model"`
	Serial       string  `json:"serial"`
	FirstDate    string  `json:"first_date"`
	SecondDate   string  `json:"second_date"`
	FirstBlack   Numeric `json:"first_black"`
	FirstColor   Numeric `json:"first_color"`
	SecondBlack  Numeric `json:"second_black"`
	SecondColor  Numeric `json:"second_color"`
	PackageBlack Numeric `json:"package_black"`
	PackageColor Numeric `json:"package_color"`
	BasicFee     Numeric `json:"basic_fee"`
	BlackPrice   Numeric `json:"black_price"`
	ColorPrice   Numeric `json:"color_price"`
	Period       string  `json:"period"`
}

// PricingConfig carries the overprint prices and period applied when a
// request leaves them blank.
type PricingConfig struct {
	BlackOverprintPrice float64
	ColorOverprintPrice float64
	DefaultPeriod       string
}

// BillingRecord is the output of a calculation. Records are insert-only;
// company_name is stored redundantly so export grouping survives customer
// renames.
type BillingRecord struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	CustomerID   uint    `json:"customer_id" gorm:"index"`
	CompanyName  string  `json:"company_name" gorm:"size:200;index"`
	InvoiceType  string  `json:"invoice_type" gorm:"size:50"`
	Location     string  `json:"location" gorm:"size:200"`
	IP           string  `json:"ip" gorm:"size:50"`
	Model        string  `json:"model" gorm:"size:100"`
	Serial       string  `json:"serial" gorm:"size:100"`
	FirstDate    string  `json:"first_date" gorm:"size:50"`
	SecondDate   string  `json:"second_date" gorm:"size:50"`
	FirstBlack   int     `json:"first_black"`
	FirstColor   int     `json:"first_color"`
	SecondBlack  int     `json:"second_black"`
	SecondColor  int     `json:"second_color"`
	PackageBlack int     `json:"package_black"`
	PackageColor int     `json:"package_color"`
	BasicFee     float64 `json:"basic_fee"`
	UsedBlack    int     `json:"used_black"`
	UsedColor    int     `json:"used_color"`
	OverBlack    int     `json:"over_black"`
	OverColor    int     `json:"over_color"`
	OverFeeBlack float64 `json:"over_fee_black"`
	OverFeeColor float64 `json:"over_fee_color"`
	TotalFee     float64 `json:"total_fee"`
	Period       string  `json:"period" gorm:"size:100"`
	BlackPrice   float64 `json:"black_price"`
	ColorPrice   float64 `json:"color_price"`
	// 计算时间，格式 2006-01-02 15:04:05，按文本倒序即按时间倒序
	CalculateTime string `json:"calculate_time" gorm:"size:19;index"`
}

func (BillingRecord) TableName() string {
	return "calculation_history"
}

// LastMeterRequest identifies a device for the prior-reading lookup.
type LastMeterRequest struct {
	CompanyName string `json:"company_name"`
	Model       string `json:"model"`
	Serial      string `json:"serial"`
}

// LastMeterReading is the most recent second reading for a device, used
// by the client to pre-fill the next request's first readings.
type LastMeterReading struct {
	LastBlack int    `json:"last_black"`
	LastColor int    `json:"last_color"`
	LastDate  string `json:"last_date"`
}
