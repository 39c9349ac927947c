package app

import (
	"context"

	"stockmaster/internal/core"
)

// ApplicationService is the single interface the web adapter calls. It
// decouples presentation from business logic: implementations contain no
// HTTP, no HTML, and no display logic of any kind. Every operation is scoped
// to the calling user; data belonging to other users behaves as if it did
// not exist.
type ApplicationService interface {
	// RegisterUser creates an account and returns a session for it.
	RegisterUser(ctx context.Context, req RegisterRequest) (*UserSession, error)

	// AuthenticateUser verifies credentials and returns a session on success.
	AuthenticateUser(ctx context.Context, email, password string) (*UserSession, error)

	// GetUser returns the user's profile.
	GetUser(ctx context.Context, userID int) (*core.User, error)

	// UpdateProfile changes the display name and, optionally, the password.
	UpdateProfile(ctx context.Context, userID int, req UpdateProfileRequest) (*core.User, error)

	// ListProducts returns the owner's catalog, filtered per req.
	ListProducts(ctx context.Context, ownerID int, req ProductListRequest) (*ProductListResult, error)

	// GetProduct returns one product with its aggregate on-hand quantity.
	GetProduct(ctx context.Context, ownerID, productID int) (*core.Product, error)

	// CreateProduct adds a product to the owner's catalog.
	CreateProduct(ctx context.Context, ownerID int, req ProductRequest) (*core.Product, error)

	// UpdateProduct replaces a product's catalog fields.
	UpdateProduct(ctx context.Context, ownerID, productID int, req ProductRequest) (*core.Product, error)

	// DeleteProduct removes a product and its stock rows. Products referenced
	// by documents cannot be deleted.
	DeleteProduct(ctx context.Context, ownerID, productID int) error

	// ListWarehouses returns the owner's warehouses.
	ListWarehouses(ctx context.Context, ownerID int) (*WarehouseListResult, error)

	// GetWarehouse returns one warehouse together with its locations.
	GetWarehouse(ctx context.Context, ownerID, warehouseID int) (*WarehouseResult, error)

	// CreateWarehouse adds a warehouse.
	CreateWarehouse(ctx context.Context, ownerID int, req WarehouseRequest) (*core.Warehouse, error)

	// UpdateWarehouse replaces a warehouse's fields.
	UpdateWarehouse(ctx context.Context, ownerID, warehouseID int, req WarehouseRequest) (*core.Warehouse, error)

	// DeleteWarehouse removes an empty, unreferenced warehouse and its
	// locations.
	DeleteWarehouse(ctx context.Context, ownerID, warehouseID int) error

	// AddLocation creates a location inside a warehouse.
	AddLocation(ctx context.Context, ownerID, warehouseID int, req LocationRequest) (*core.Location, error)

	// RemoveLocation deletes an unoccupied, unreferenced location.
	RemoveLocation(ctx context.Context, ownerID, warehouseID, locationID int) error

	// BrowseStock returns one page of the owner's stock rows.
	BrowseStock(ctx context.Context, ownerID int, req StockBrowseRequest) (*StockPageResult, error)

	// ExportStock returns every stock row matching req's filters, ignoring
	// pagination. The web adapter renders them into a workbook.
	ExportStock(ctx context.Context, ownerID int, req StockBrowseRequest) ([]core.StockRow, error)

	// CreateOrder submits a purchase or sales order. Sales orders deduct
	// stock on submission.
	CreateOrder(ctx context.Context, ownerID int, req CreateOrderRequest) (*core.Order, error)

	// ListOrders returns order headers, optionally filtered by type and status.
	ListOrders(ctx context.Context, ownerID int, orderType, status string) (*OrderListResult, error)

	// GetOrder returns one order with its items.
	GetOrder(ctx context.Context, ownerID, orderID int) (*core.Order, error)

	// UpdateOrderStatus moves an order through its lifecycle.
	UpdateOrderStatus(ctx context.Context, ownerID, orderID int, status string) (*core.Order, error)

	// CreateReceipt records a goods receipt and adds its lines to stock.
	CreateReceipt(ctx context.Context, ownerID int, req CreateReceiptRequest) (*core.Receipt, error)

	// ListReceipts returns receipt headers, newest first.
	ListReceipts(ctx context.Context, ownerID int) (*ReceiptListResult, error)

	// GetReceipt returns one receipt with its items.
	GetReceipt(ctx context.Context, ownerID, receiptID int) (*core.Receipt, error)

	// CreateTransfer records an inter-warehouse transfer and moves the stock.
	CreateTransfer(ctx context.Context, ownerID int, req CreateTransferRequest) (*core.Transfer, error)

	// ListTransfers returns transfer headers, newest first.
	ListTransfers(ctx context.Context, ownerID int) (*TransferListResult, error)

	// GetTransfer returns one transfer with its items.
	GetTransfer(ctx context.Context, ownerID, transferID int) (*core.Transfer, error)

	// GetDashboard returns the KPI snapshot, served from the Redis cache
	// when one is configured.
	GetDashboard(ctx context.Context, ownerID int) (*core.Dashboard, error)

	// GetSalesAnalytics returns the chart series for the analytics page.
	GetSalesAnalytics(ctx context.Context, ownerID int) (*core.SalesAnalytics, error)
}
