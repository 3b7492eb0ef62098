package services

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"order-service/internal/domain"
	"order-service/internal/infra"
	"order-service/internal/inventory"
	"order-service/internal/mocks"
)

func mustDecimal(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ValidCustomer() domain.CustomerInfo {
	return domain.CustomerInfo{
		FullName:    "Jane Customer",
		PhoneNumber: "+15551234567",
		Email:       "jane@example.com",
		Address:     "1 Main Street, Springfield",
	}
}

func CatalogProduct(id uint64, name, price string, discountPercent string, stock int64) *infra.ProductInfo {
	p := &infra.ProductInfo{
		ID:            id,
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
	}
	if discountPercent != "" {
		d := decimal.RequireFromString(discountPercent)
		p.DiscountPercent = &d
	}
	return p
}

// NewTestService wires an OrderService over mocks with a real inventory
// ledger, which is what the lifecycle tests want to exercise.
func NewTestService(
	repo *mocks.MockOrderRepository,
	catalog *mocks.MockCatalogGateway,
	publisher *mocks.MockPublisher,
) (*OrderService, *inventory.Ledger) {
	logger := zap.NewNop().Sugar()
	ledger := inventory.NewLedger(catalog, logger)
	return NewOrderService(repo, catalog, ledger, publisher, logger), ledger
}
