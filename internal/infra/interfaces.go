package infra

import (
	"context"

	"github.com/shopspring/decimal"
)

// ProductInfo is the slice of the catalog the order core needs: pricing
// inputs and the stock count the ledger maintains.
type ProductInfo struct {
	ID              uint64           `json:"id"`
	Name            string           `json:"name"`
	Price           decimal.Decimal  `json:"price"`
	DiscountPercent *decimal.Decimal `json:"discountPercentage,omitempty"`
	StockQuantity   int64            `json:"stockQuantity"`
}

// CatalogGateway is the read/adjust surface of the product catalog. GetProduct
// returns (nil, nil) when the product does not exist. AdjustStock applies a
// signed delta to the persisted stock count; only the inventory ledger may
// call it.
type CatalogGateway interface {
	GetProduct(ctx context.Context, id uint64) (*ProductInfo, error)
	AdjustStock(ctx context.Context, id uint64, delta int64) error
}

var _ CatalogGateway = (*CatalogClient)(nil)
