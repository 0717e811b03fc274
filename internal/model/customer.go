package model

import (
	"time"
)

// DefaultInvoiceType 默认发票类型（增值税发票）
const DefaultInvoiceType = "增税"

// Customer represents a billed customer, identified by its unique company name
type Customer struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CompanyName string    `json:"company_name" gorm:"uniqueIndex;size:200;not null"`
	InvoiceType string    `json:"invoice_type" gorm:"size:50;default:'增税'"`
	CreatedAt   time.Time `json:"create_time"`
	UpdatedAt   time.Time `json:"update_time"`
}

func (Customer) TableName() string {
	return "customers"
}

// CustomerInfoRequest 按公司名称查询客户
type CustomerInfoRequest struct {
	CompanyName string `json:"company_name"`
}
