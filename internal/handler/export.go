package handler

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"printfee/api/internal/service"
)

// ExportHandler handles ledger export and file download
type ExportHandler struct {
	exportService *service.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// Export renders all billing records into a spreadsheet file
// @Summary Export billing ledger
// @Description Group all records by customer, render the invoice workbook and return the download link with the grand totals
// @Tags Export
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /export-excel [post]
func (h *ExportHandler) Export(c *gin.Context) {
	result, err := h.exportService.Export(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoRecords) {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "导出失败：" + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"filename":        result.Filename,
		"download_url":    "/download/" + result.Filename,
		"total_basic_fee": result.Totals.TotalBasicFee,
		"total_over_fee":  result.Totals.TotalOverFee,
		"total_all_fee":   result.Totals.TotalAllFee,
	})
}

// Download serves a previously exported workbook
// @Summary Download export file
// @Description Download an exported spreadsheet by filename
// @Tags Export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param filename path string true "Export filename"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /download/{filename} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	filename := c.Param("filename")

	// Only bare filenames inside the export dir are served
	if filename == "" || filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "文件名不合法"})
		return
	}

	path := filepath.Join(h.exportService.Dir(), filename)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "文件不存在"})
		return
	}

	c.FileAttachment(path, filename)
}
