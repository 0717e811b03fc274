package service

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"printfee/api/internal/model"
)

// CustomerService handles customer persistence
type CustomerService struct {
	db *gorm.DB
}

// NewCustomerService creates a new customer service
func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

// Upsert creates the customer on first sight or refreshes invoice_type
// and the update timestamp. The unique index on company_name makes
// concurrent submits for the same name converge on one row; last write
// wins on invoice_type.
func (s *CustomerService) Upsert(ctx context.Context, companyName, invoiceType string) (*model.Customer, error) {
	if invoiceType == "" {
		invoiceType = model.DefaultInvoiceType
	}

	customer := model.Customer{
		CompanyName: companyName,
		InvoiceType: invoiceType,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "company_name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"invoice_type": invoiceType,
			"updated_at":   time.Now(),
		}),
	}).Create(&customer).Error
	if err != nil {
		return nil, err
	}

	// Re-read so the caller always gets the surviving row's ID, whether
	// the statement inserted or updated.
	if err := s.db.WithContext(ctx).Where("company_name = ?", companyName).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// ListNames returns all customer names, most recently updated first
func (s *CustomerService) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&model.Customer{}).
		Order("updated_at DESC").
		Pluck("company_name", &names).Error
	return names, err
}

// GetByName returns a customer by company name
func (s *CustomerService) GetByName(ctx context.Context, companyName string) (*model.Customer, error) {
	var customer model.Customer
	if err := s.db.WithContext(ctx).Where("company_name = ?", companyName).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}
