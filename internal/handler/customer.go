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

// CustomerHandler handles customer lookups
type CustomerHandler struct {
	customerService *service.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// List returns all customer names for form autocompletion
// @Summary List customer names
// @Description Get all customer names, most recently updated first
// @Tags Customers
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	names, err := h.customerService.ListNames(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "服务器错误：" + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": names})
}

// Info returns one customer's details
// @Summary Get customer info
// @Description Get a customer by company name
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body model.CustomerInfoRequest true "Company name"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /customers/info [post]
func (h *CustomerHandler) Info(c *gin.Context) {
	var req model.CustomerInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "请求格式必须为JSON"})
		return
	}

	companyName := strings.TrimSpace(req.CompanyName)
	if companyName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "公司名称不能为空"})
		return
	}

	customer, err := h.customerService.GetByName(c.Request.Context(), companyName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": "客户信息不存在"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "服务器错误：" + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": customer})
}
