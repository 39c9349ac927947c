package app

import "stockmaster/internal/core"

// Result types double as the JSON response shapes the web adapter writes.

// UserSession identifies an authenticated user. The web adapter signs it
// into the JWT cookie.
type UserSession struct {
	UserID      int    `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product `json:"products"`
}

// WarehouseListResult is returned by ListWarehouses.
type WarehouseListResult struct {
	Warehouses []core.Warehouse `json:"warehouses"`
}

// WarehouseResult is returned by GetWarehouse: the warehouse plus its
// locations.
type WarehouseResult struct {
	Warehouse *core.Warehouse `json:"warehouse"`
	Locations []core.Location `json:"locations"`
}

// StockPageResult is one page of the stock listing. Page and Limit echo the
// bounds actually applied after clamping.
type StockPageResult struct {
	Rows  []core.StockRow `json:"rows"`
	Total int             `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// OrderListResult is returned by ListOrders.
type OrderListResult struct {
	Orders []core.Order `json:"orders"`
}

// ReceiptListResult is returned by ListReceipts.
type ReceiptListResult struct {
	Receipts []core.Receipt `json:"receipts"`
}

// TransferListResult is returned by ListTransfers.
type TransferListResult struct {
	Transfers []core.Transfer `json:"transfers"`
}
