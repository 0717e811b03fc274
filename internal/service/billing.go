package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"printfee/api/internal/model"
)

// ValidationResult is the structured outcome of input validation. The
// validator never panics; bad input always comes back as Valid=false.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings"`
}

// ValidateRequest checks a calculation request before it is processed.
// A second reading lower than the first only produces a warning: meter
// resets happen in the field and must not block billing.
func ValidateRequest(req *model.CalculationRequest) ValidationResult {
	if strings.TrimSpace(req.CompanyName) == "" {
		return ValidationResult{Valid: false, Error: "公司名称不能为空"}
	}

	numericFields := []struct {
		name  string
		value model.Numeric
	}{
		{"first_black", req.FirstBlack},
		{"first_color", req.FirstColor},
		{"second_black", req.SecondBlack},
		{"second_color", req.SecondColor},
		{"package_black", req.PackageBlack},
		{"package_color", req.PackageColor},
		{"basic_fee", req.BasicFee},
	}
	for _, f := range numericFields {
		if _, err := f.value.Float(); err != nil {
			return ValidationResult{
				Valid: false,
				Error: fmt.Sprintf("数字输入错误：字段 %s 的值 %q 无法解析", f.name, string(f.value)),
			}
		}
	}

	firstBlack, _ := req.FirstBlack.Int()
	secondBlack, _ := req.SecondBlack.Int()
	firstColor, _ := req.FirstColor.Int()
	secondColor, _ := req.SecondColor.Int()

	warnings := []string{}
	if secondBlack < firstBlack {
		warnings = append(warnings, "第二次抄表黑色张数不能小于第一次")
	}
	if secondColor < firstColor {
		warnings = append(warnings, "第二次抄表彩色张数不能小于第一次")
	}

	return ValidationResult{Valid: true, Warnings: warnings}
}

// CalculateFee derives a billing record from a request and the pricing
// defaults. It does not re-validate; a field that cannot be coerced is
// reported as an error result.
//
// Rounding is two-stage: the black and color overprint fees are each
// rounded to 2 decimals before the total is rounded again. The total is
// therefore not always equal to rounding the exact sum; historical
// invoices depend on this.
func CalculateFee(req *model.CalculationRequest, pricing model.PricingConfig) (*model.BillingRecord, error) {
	firstBlack, err := intField("first_black", req.FirstBlack)
	if err != nil {
		return nil, err
	}
	firstColor, err := intField("first_color", req.FirstColor)
	if err != nil {
		return nil, err
	}
	secondBlack, err := intField("second_black", req.SecondBlack)
	if err != nil {
		return nil, err
	}
	secondColor, err := intField("second_color", req.SecondColor)
	if err != nil {
		return nil, err
	}
	packageBlack, err := intField("package_black", req.PackageBlack)
	if err != nil {
		return nil, err
	}
	packageColor, err := intField("package_color", req.PackageColor)
	if err != nil {
		return nil, err
	}
	basicFee, err := floatField("basic_fee", req.BasicFee)
	if err != nil {
		return nil, err
	}

	blackPrice := pricing.BlackOverprintPrice
	if !req.BlackPrice.IsEmpty() {
		if blackPrice, err = floatField("black_price", req.BlackPrice); err != nil {
			return nil, err
		}
	}
	colorPrice := pricing.ColorOverprintPrice
	if !req.ColorPrice.IsEmpty() {
		if colorPrice, err = floatField("color_price", req.ColorPrice); err != nil {
			return nil, err
		}
	}

	invoiceType := req.InvoiceType
	if invoiceType == "" {
		invoiceType = model.DefaultInvoiceType
	}
	period := req.Period
	if period == "" {
		period = pricing.DefaultPeriod
	}

	usedBlack := secondBlack - firstBlack
	usedColor := secondColor - firstColor

	overBlack := usedBlack - packageBlack
	if overBlack < 0 {
		overBlack = 0
	}
	overColor := usedColor - packageColor
	if overColor < 0 {
		overColor = 0
	}

	overFeeBlack := decimal.NewFromInt(int64(overBlack)).
		Mul(decimal.NewFromFloat(blackPrice)).Round(2)
	overFeeColor := decimal.NewFromInt(int64(overColor)).
		Mul(decimal.NewFromFloat(colorPrice)).Round(2)
	totalFee := overFeeBlack.Add(overFeeColor).
		Add(decimal.NewFromFloat(basicFee)).Round(2)

	return &model.BillingRecord{
		CompanyName:   req.CompanyName,
		InvoiceType:   invoiceType,
		Location:      req.Location,
		IP:            req.IP,
		Model:         req.Model,
		Serial:        req.Serial,
		FirstDate:     req.FirstDate,
		SecondDate:    req.SecondDate,
		FirstBlack:    firstBlack,
		FirstColor:    firstColor,
		SecondBlack:   secondBlack,
		SecondColor:   secondColor,
		PackageBlack:  packageBlack,
		PackageColor:  packageColor,
		BasicFee:      basicFee,
		UsedBlack:     usedBlack,
		UsedColor:     usedColor,
		OverBlack:     overBlack,
		OverColor:     overColor,
		OverFeeBlack:  overFeeBlack.InexactFloat64(),
		OverFeeColor:  overFeeColor.InexactFloat64(),
		TotalFee:      totalFee.InexactFloat64(),
		Period:        period,
		BlackPrice:    blackPrice,
		ColorPrice:    colorPrice,
		CalculateTime: time.Now().Format("2006-01-02 15:04:05"),
	}, nil
}

func intField(name string, n model.Numeric) (int, error) {
	v, err := n.Int()
	if err != nil {
		return 0, fmt.Errorf("字段 %s 的值 %q 无法转换为数字", name, string(n))
	}
	return v, nil
}

func floatField(name string, n model.Numeric) (float64, error) {
	v, err := n.Float()
	if err != nil {
		return 0, fmt.Errorf("字段 %s 的值 %q 无法转换为数字", name, string(n))
	}
	return v, nil
}
