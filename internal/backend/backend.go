// Package backend assembles the services of the reference shop backend over
// one database handle.
package backend

import (
	"fmt"
	"time"

	"github.com/angelmondragon/shopadmin/internal/auth"
	"github.com/angelmondragon/shopadmin/internal/catalog"
	"github.com/angelmondragon/shopadmin/internal/ledger"
	"github.com/angelmondragon/shopadmin/internal/sales"
	"github.com/angelmondragon/shopadmin/internal/users"
	"github.com/angelmondragon/shopadmin/pkg/config"
	"github.com/angelmondragon/shopadmin/pkg/logger"
	"github.com/angelmondragon/shopadmin/pkg/security"
	"gorm.io/gorm"
)

type Services struct {
	Categories *catalog.CategoryService
	Merchants  *catalog.MerchantService
	Customers  *catalog.CustomerService
	Products   *catalog.ProductService
	Orders     *sales.OrderService
	Purchases  *sales.PurchaseService
	Payments   *ledger.PaymentService
	Expenses   *ledger.ExpenseService
	Users      *users.Service
	Sessions   *users.SessionReport
	Reports    *sales.Reports
	Account    *auth.Service
}

type Params struct {
	DB         *gorm.DB
	JWT        config.JWTConfig
	Password   config.PasswordConfig
	Images     catalog.ImageStore
	ResetCodes auth.ResetCodeStore
	// ResetCodeTTL bounds how long a forgot-password code stays valid.
	ResetCodeTTL time.Duration
	// Location cuts report days; UTC when nil.
	Location *time.Location
	Logger   *logger.Logger
	Now      func() time.Time
}

func New(p Params) (*Services, error) {
	if p.DB == nil {
		return nil, fmt.Errorf("backend: database is required")
	}
	now := p.Now
	if now == nil {
		now = time.Now
	}
	hasher := security.NewHasher(p.Password)

	var (
		s   Services
		err error
	)
	if s.Categories, err = catalog.NewCategoryService(p.DB); err != nil {
		return nil, err
	}
	if s.Merchants, err = catalog.NewMerchantService(p.DB); err != nil {
		return nil, err
	}
	if s.Customers, err = catalog.NewCustomerService(p.DB); err != nil {
		return nil, err
	}
	if s.Products, err = catalog.NewProductService(p.DB, p.Images); err != nil {
		return nil, err
	}
	if s.Orders, err = sales.NewOrderService(p.DB, now); err != nil {
		return nil, err
	}
	if s.Purchases, err = sales.NewPurchaseService(p.DB, now); err != nil {
		return nil, err
	}
	if s.Payments, err = ledger.NewPaymentService(p.DB, now); err != nil {
		return nil, err
	}
	if s.Expenses, err = ledger.NewExpenseService(p.DB, now); err != nil {
		return nil, err
	}
	if s.Users, err = users.NewService(p.DB, hasher); err != nil {
		return nil, err
	}
	s.Sessions = users.NewSessionReport(p.DB)
	s.Reports = sales.NewReports(p.DB, now, p.Location)

	s.Account, err = auth.NewService(auth.ServiceParams{
		DB:           p.DB,
		Hasher:       hasher,
		JWTConfig:    p.JWT,
		ResetCodes:   p.ResetCodes,
		ResetCodeTTL: p.ResetCodeTTL,
		Logger:       p.Logger,
		Now:          now,
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}
