package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"printfee/api/internal/model"
	"printfee/api/internal/service"
)

// CalculationHandler handles billing calculation requests
type CalculationHandler struct {
	customerService *service.CustomerService
	historyService  *service.HistoryService
	pricing         model.PricingConfig
}

// NewCalculationHandler creates a new calculation handler
func NewCalculationHandler(customerService *service.CustomerService, historyService *service.HistoryService, pricing model.PricingConfig) *CalculationHandler {
	return &CalculationHandler{
		customerService: customerService,
		historyService:  historyService,
		pricing:         pricing,
	}
}

// Calculate computes and persists one billing record
// @Summary Calculate printer fee
// @Description Validate the request, upsert the customer, compute the fee and persist the record
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body model.CalculationRequest true "Calculation request"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /calculate [post]
func (h *CalculationHandler) Calculate(c *gin.Context) {
	var req model.CalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "请求格式必须为JSON"})
		return
	}

	result := service.ValidateRequest(&req)
	if !result.Valid {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": result.Error})
		return
	}

	// Upsert before calculating so the persisted record always resolves
	// a customer id.
	customer, err := h.customerService.Upsert(c.Request.Context(), req.CompanyName, req.InvoiceType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "服务器错误：" + err.Error()})
		return
	}

	rec, err := service.CalculateFee(&req, h.pricing)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": err.Error()})
		return
	}
	rec.CustomerID = customer.ID

	if err := h.historyService.Add(c.Request.Context(), rec); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "服务器错误：" + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"data":     rec,
		"warnings": result.Warnings,
	})
}

// LastMeter returns the most recent meter reading for a device
// @Summary Last meter reading
// @Description Get the most recent second reading for a company/model/serial, used to pre-fill the next request
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body model.LastMeterRequest true "Device identification"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /meter/last [post]
func (h *CalculationHandler) LastMeter(c *gin.Context) {
	var req model.LastMeterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "请求格式必须为JSON"})
		return
	}

	companyName := strings.TrimSpace(req.CompanyName)
	deviceModel := strings.TrimSpace(req.Model)
	serial := strings.TrimSpace(req.Serial)
	if companyName == "" || deviceModel == "" || serial == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "公司名称、型号、序号不能为空"})
		return
	}

	reading, err := h.historyService.LastMeter(c.Request.Context(), companyName, deviceModel, serial)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": "暂无历史抄表数据"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "服务器错误：" + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": reading})
}

// ClearHistory removes all stored billing records
// @Summary Clear calculation history
// @Description Delete every persisted billing record. Irreversible.
// @Tags Billing
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /clear-history [post]
func (h *CalculationHandler) ClearHistory(c *gin.Context) {
	if err := h.historyService.Clear(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "清空失败：" + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
