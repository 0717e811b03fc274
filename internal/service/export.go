package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"printfee/api/internal/model"
)

const exportSheetName = "打印机费用清单"

// ExportResult describes a written export file
type ExportResult struct {
	Filename string             `json:"filename"`
	Path     string             `json:"path"`
	Totals   model.LedgerTotals `json:"totals"`
}

// ExportService builds the ledger from the stored history and renders it
// into the invoice spreadsheet. The layout (title, two-row headers, group
// banners, summary block) follows the accounting team's established
// workbook format.
type ExportService struct {
	history *HistoryService
	dir     string
}

// NewExportService creates a new export service writing files under dir
func NewExportService(history *HistoryService, dir string) *ExportService {
	return &ExportService{history: history, dir: dir}
}

// Dir returns the directory export files are written to
func (s *ExportService) Dir() string {
	return s.dir
}

// Export renders all stored billing records into a timestamped workbook
func (s *ExportService) Export(ctx context.Context) (*ExportResult, error) {
	records, err := s.history.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	ledger, err := BuildLedger(records)
	if err != nil {
		return nil, err
	}

	f, err := s.renderLedger(ledger)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	filename := fmt.Sprintf("打印机费用清单_%s.xlsx", time.Now().Format("20060102150405"))
	path := filepath.Join(s.dir, filename)
	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("save export file: %w", err)
	}

	return &ExportResult{
		Filename: filename,
		Path:     path,
		Totals:   ledger.Totals,
	}, nil
}

type exportStyles struct {
	title        int
	subHeader    int
	header       int
	normal       int
	group        int
	summaryLabel int
	summaryValue int
	total        int
}

func newExportStyles(f *excelize.File) (*exportStyles, error) {
	thin := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center"}
	headerFill := excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E6E6FA"}}

	st := &exportStyles{}
	var err error

	if st.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "微软雅黑", Size: 14, Bold: true},
		Alignment: center,
	}); err != nil {
		return nil, err
	}
	if st.subHeader, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "微软雅黑", Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	}); err != nil {
		return nil, err
	}
	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "微软雅黑", Size: 10, Bold: true},
		Alignment: center,
		Fill:      headerFill,
		Border:    thin,
	}); err != nil {
		return nil, err
	}
	if st.normal, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "微软雅黑", Size: 9},
		Alignment: center,
		Border:    thin,
	}); err != nil {
		return nil, err
	}
	if st.group, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "微软雅黑", Size: 10, Bold: true},
		Alignment: center,
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F0F8FF"}},
	}); err != nil {
		return nil, err
	}
	if st.summaryLabel, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "微软雅黑", Size: 10, Bold: true},
		Alignment: center,
		Fill:      headerFill,
	}); err != nil {
		return nil, err
	}
	if st.summaryValue, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "微软雅黑", Size: 9},
		Alignment: center,
	}); err != nil {
		return nil, err
	}
	if st.total, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Family: "微软雅黑", Size: 12, Bold: true},
		Alignment: center,
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFE4B5"}},
	}); err != nil {
		return nil, err
	}
	return st, nil
}

// renderLedger writes the ledger into a workbook. The ledger is the only
// input; this function knows nothing about the store.
func (s *ExportService) renderLedger(ledger *model.ExportLedger) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := exportSheetName
	f.SetSheetName("Sheet1", sheet)

	st, err := newExportStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	first := ledger.Groups[0].Records[0]

	// 标题
	f.MergeCell(sheet, "A1", "R1")
	f.SetCellValue(sheet, "A1", "上海库克打印机有限公司开票清单")
	f.SetCellStyle(sheet, "A1", "A1", st.title)

	f.MergeCell(sheet, "A2", "B2")
	f.SetCellValue(sheet, "A2", fmt.Sprintf("客户名称：%s", first.CompanyName))
	f.SetCellStyle(sheet, "A2", "A2", st.subHeader)

	f.MergeCell(sheet, "C2", "D2")
	f.SetCellValue(sheet, "C2", fmt.Sprintf("发票类型：%s", first.InvoiceType))
	f.SetCellStyle(sheet, "C2", "C2", st.subHeader)

	// 两行列标题
	headersRow3 := []interface{}{
		"客户名称", "机器位置", "IP地址", "设备型号", "设备序号",
		fmt.Sprintf("%s初始张数", first.FirstDate), "",
		"基本费（元）", "包印张数", "",
		fmt.Sprintf("%s抄表张数", first.SecondDate), "",
		"使用张数", "", "超张数", "", "", "", "",
	}
	headersRow4 := []interface{}{
		"", "", "", "", "", "黑色", "彩色", "", "黑色", "彩色",
		"黑色", "彩色", "黑色", "彩色", "黑色", "彩色", "黑色", "彩色", "超印费小计",
	}
	for col, header := range headersRow3 {
		c := cellName(col+1, 3)
		f.SetCellValue(sheet, c, header)
		f.SetCellStyle(sheet, c, c, st.header)
	}
	merges := [][2]int{{6, 7}, {9, 10}, {11, 12}, {13, 14}, {15, 16}, {17, 19}}
	for _, m := range merges {
		f.MergeCell(sheet, cellName(m[0], 3), cellName(m[1], 3))
		f.SetCellStyle(sheet, cellName(m[0], 3), cellName(m[0], 3), st.header)
	}
	for col, header := range headersRow4 {
		c := cellName(col+1, 4)
		f.SetCellValue(sheet, c, header)
		f.SetCellStyle(sheet, c, c, st.header)
	}

	// 明细：分组横幅 + 数据行
	currentRow := 5
	for _, group := range ledger.Groups {
		f.MergeCell(sheet, cellName(1, currentRow), cellName(18, currentRow))
		banner := cellName(1, currentRow)
		f.SetCellValue(sheet, banner, fmt.Sprintf("【%s】", group.CompanyName))
		f.SetCellStyle(sheet, banner, banner, st.group)
		currentRow++

		for _, rec := range group.Records {
			overFeeSubtotal := decimal.NewFromFloat(rec.OverFeeBlack).
				Add(decimal.NewFromFloat(rec.OverFeeColor)).Round(2)

			rowData := []interface{}{
				group.CompanyName, rec.Location, rec.IP, rec.Model, rec.Serial,
				rec.FirstBlack, rec.FirstColor, fmt.Sprintf("%.2f", rec.BasicFee),
				rec.PackageBlack, rec.PackageColor,
				rec.SecondBlack, rec.SecondColor,
				rec.UsedBlack, rec.UsedColor,
				rec.OverBlack, rec.OverColor,
				rec.OverFeeBlack, rec.OverFeeColor,
				overFeeSubtotal.InexactFloat64(),
			}
			for col, value := range rowData {
				c := cellName(col+1, currentRow)
				f.SetCellValue(sheet, c, value)
				f.SetCellStyle(sheet, c, c, st.normal)
			}
			currentRow++
		}
	}

	// 汇总块：租赁费 / 超印费 / 总费用
	summaryRow := currentRow + 3

	f.MergeCell(sheet, cellName(1, summaryRow), cellName(2, summaryRow))
	f.SetCellValue(sheet, cellName(1, summaryRow), "租赁费")
	f.SetCellStyle(sheet, cellName(1, summaryRow), cellName(1, summaryRow), st.summaryLabel)
	f.SetCellValue(sheet, cellName(3, summaryRow), first.Period)
	f.SetCellStyle(sheet, cellName(3, summaryRow), cellName(3, summaryRow), st.summaryValue)
	f.SetCellValue(sheet, cellName(5, summaryRow), fmt.Sprintf("¥%.2f", ledger.Totals.TotalBasicFee))
	f.SetCellStyle(sheet, cellName(5, summaryRow), cellName(5, summaryRow), st.summaryValue)

	summaryRow2 := summaryRow + 1
	f.MergeCell(sheet, cellName(1, summaryRow2), cellName(2, summaryRow2))
	f.SetCellValue(sheet, cellName(1, summaryRow2), "超印费")
	f.SetCellStyle(sheet, cellName(1, summaryRow2), cellName(1, summaryRow2), st.summaryLabel)
	f.SetCellValue(sheet, cellName(3, summaryRow2),
		fmt.Sprintf("%s-%s", truncateRunes(first.FirstDate, 7), truncateRunes(first.SecondDate, 7)))
	f.SetCellStyle(sheet, cellName(3, summaryRow2), cellName(3, summaryRow2), st.summaryValue)
	f.SetCellValue(sheet, cellName(5, summaryRow2), fmt.Sprintf("¥%.2f", ledger.Totals.TotalOverFee))
	f.SetCellStyle(sheet, cellName(5, summaryRow2), cellName(5, summaryRow2), st.summaryValue)

	summaryRow3 := summaryRow2 + 1
	f.MergeCell(sheet, cellName(1, summaryRow3), cellName(4, summaryRow3))
	f.SetCellValue(sheet, cellName(1, summaryRow3), "总费用")
	f.SetCellStyle(sheet, cellName(1, summaryRow3), cellName(1, summaryRow3), st.total)
	f.SetCellValue(sheet, cellName(5, summaryRow3), fmt.Sprintf("¥%.2f", ledger.Totals.TotalAllFee))
	f.SetCellStyle(sheet, cellName(5, summaryRow3), cellName(5, summaryRow3), st.total)

	// 列宽与行高
	widths := []float64{20, 25, 15, 18, 18, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 15}
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, width)
	}
	f.SetRowHeight(sheet, 1, 25)
	f.SetRowHeight(sheet, 2, 20)
	f.SetRowHeight(sheet, 3, 30)
	f.SetRowHeight(sheet, 4, 20)

	return f, nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
