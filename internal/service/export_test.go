package service

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"printfee/api/internal/model"
)

func TestExport_NoRecords(t *testing.T) {
	history, _ := newTestHistory(t)
	svc := NewExportService(history, t.TempDir())

	_, err := svc.Export(context.Background())
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestExport_Workbook(t *testing.T) {
	history, db := newTestHistory(t)
	dir := t.TempDir()
	svc := NewExportService(history, dir)
	ctx := context.Background()

	seed := []model.BillingRecord{
		{
			CompanyName: "甲公司", InvoiceType: "增税", Location: "三楼办公室",
			Model: "MX-3618", Serial: "SN001",
			FirstDate: "2026.01.01", SecondDate: "2026.02.28",
			FirstBlack: 1000, SecondBlack: 1500, PackageBlack: 400,
			BasicFee: 50, UsedBlack: 500, OverBlack: 100,
			OverFeeBlack: 6, TotalFee: 56,
			Period:        "2026.01.01-2026.02.28",
			CalculateTime: "2026-02-01 10:00:00",
		},
		{
			CompanyName: "乙公司", InvoiceType: "普票",
			BasicFee: 30, TotalFee: 30,
			CalculateTime: "2026-01-20 15:30:00",
		},
		{
			CompanyName: "甲公司", InvoiceType: "增税",
			BasicFee: 50, OverFeeBlack: 0.01, OverFeeColor: 0.01, TotalFee: 50.02,
			CalculateTime: "2026-01-10 09:00:00",
		},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	result, err := svc.Export(ctx)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Filename, "打印机费用清单_"))
	assert.True(t, strings.HasSuffix(result.Filename, ".xlsx"))
	assert.Equal(t, 130.0, result.Totals.TotalBasicFee)
	assert.Equal(t, 6.02, result.Totals.TotalOverFee)
	assert.Equal(t, 136.02, result.Totals.TotalAllFee)

	_, err = os.Stat(result.Path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(result.Path)
	require.NoError(t, err)
	defer f.Close()

	cell := func(ref string) string {
		v, err := f.GetCellValue(exportSheetName, ref)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "上海库克打印机有限公司开票清单", cell("A1"))
	// The most recent record leads the file, so the sub header carries
	// its customer name
	assert.Equal(t, "客户名称：甲公司", cell("A2"))
	assert.Equal(t, "发票类型：增税", cell("C2"))

	// Group banners: first seen company first, records newest first
	assert.Equal(t, "【甲公司】", cell("A5"))
	assert.Equal(t, "甲公司", cell("A6"))
	assert.Equal(t, "三楼办公室", cell("B6"))
	assert.Equal(t, "1500", cell("K6"))
	assert.Equal(t, "50.00", cell("H6"))
	assert.Equal(t, "甲公司", cell("A7"))
	assert.Equal(t, "【乙公司】", cell("A8"))
	assert.Equal(t, "乙公司", cell("A9"))

	// Summary block sits three rows below the last data row
	assert.Equal(t, "租赁费", cell("A13"))
	assert.Equal(t, "¥130.00", cell("E13"))
	assert.Equal(t, "超印费", cell("A14"))
	assert.Equal(t, "¥6.02", cell("E14"))
	assert.Equal(t, "总费用", cell("A15"))
	assert.Equal(t, "¥136.02", cell("E15"))
}
