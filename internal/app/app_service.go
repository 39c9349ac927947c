package app

import (
	"context"

	"stockmaster/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
)

type appService struct {
	pool       *pgxpool.Pool
	users      core.UserService
	products   core.ProductService
	warehouses core.WarehouseService
	stock      core.StockService
	orders     core.OrderService
	receipts   core.ReceiptService
	transfers  core.TransferService
	analytics  core.AnalyticsService
	dashboards *DashboardCache
}

// NewAppService constructs an appService that satisfies ApplicationService.
// dashboards may be built over a nil Redis client; caching is then skipped.
func NewAppService(
	pool *pgxpool.Pool,
	users core.UserService,
	products core.ProductService,
	warehouses core.WarehouseService,
	stock core.StockService,
	orders core.OrderService,
	receipts core.ReceiptService,
	transfers core.TransferService,
	analytics core.AnalyticsService,
	dashboards *DashboardCache,
) ApplicationService {
	return &appService{
		pool:       pool,
		users:      users,
		products:   products,
		warehouses: warehouses,
		stock:      stock,
		orders:     orders,
		receipts:   receipts,
		transfers:  transfers,
		analytics:  analytics,
		dashboards: dashboards,
	}
}

// ── Accounts ──────────────────────────────────────────────────────────────────

// RegisterUser creates an account and returns a session for it.
func (s *appService) RegisterUser(ctx context.Context, req RegisterRequest) (*UserSession, error) {
	user, err := s.users.Register(ctx, core.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return nil, err
	}
	return sessionFor(user), nil
}

// AuthenticateUser verifies credentials and returns a session on success.
func (s *appService) AuthenticateUser(ctx context.Context, email, password string) (*UserSession, error) {
	user, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return sessionFor(user), nil
}

// GetUser returns the user's profile.
func (s *appService) GetUser(ctx context.Context, userID int) (*core.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile changes the display name and, optionally, the password.
func (s *appService) UpdateProfile(ctx context.Context, userID int, req UpdateProfileRequest) (*core.User, error) {
	return s.users.UpdateProfile(ctx, userID, core.ProfileUpdateInput{
		DisplayName:     req.DisplayName,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
}

func sessionFor(u *core.User) *UserSession {
	return &UserSession{
		UserID:      u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
	}
}

// ── Catalog ───────────────────────────────────────────────────────────────────

// ListProducts returns the owner's catalog, filtered per req.
func (s *appService) ListProducts(ctx context.Context, ownerID int, req ProductListRequest) (*ProductListResult, error) {
	products, err := s.products.GetProducts(ctx, ownerID, core.ProductFilter{
		Search:   req.Search,
		Category: req.Category,
		LowStock: req.LowStock,
	})
	if err != nil {
		return nil, err
	}
	return &ProductListResult{Products: products}, nil
}

// GetProduct returns one product with its aggregate on-hand quantity.
func (s *appService) GetProduct(ctx context.Context, ownerID, productID int) (*core.Product, error) {
	return s.products.GetProduct(ctx, ownerID, productID)
}

// CreateProduct adds a product to the owner's catalog.
func (s *appService) CreateProduct(ctx context.Context, ownerID int, req ProductRequest) (*core.Product, error) {
	return s.products.CreateProduct(ctx, ownerID, productInput(req))
}

// UpdateProduct replaces a product's catalog fields.
func (s *appService) UpdateProduct(ctx context.Context, ownerID, productID int, req ProductRequest) (*core.Product, error) {
	return s.products.UpdateProduct(ctx, ownerID, productID, productInput(req))
}

// DeleteProduct removes a product and its stock rows.
func (s *appService) DeleteProduct(ctx context.Context, ownerID, productID int) error {
	return s.products.DeleteProduct(ctx, ownerID, productID)
}

func productInput(req ProductRequest) core.ProductInput {
	return core.ProductInput{
		SKU:           req.SKU,
		Name:          req.Name,
		Category:      req.Category,
		UnitOfMeasure: req.UnitOfMeasure,
		ReorderLevel:  req.ReorderLevel,
		CostPrice:     req.CostPrice,
		SellingPrice:  req.SellingPrice,
	}
}

// ── Warehouses ────────────────────────────────────────────────────────────────

// ListWarehouses returns the owner's warehouses.
func (s *appService) ListWarehouses(ctx context.Context, ownerID int) (*WarehouseListResult, error) {
	warehouses, err := s.warehouses.GetWarehouses(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &WarehouseListResult{Warehouses: warehouses}, nil
}

// GetWarehouse returns one warehouse together with its locations.
func (s *appService) GetWarehouse(ctx context.Context, ownerID, warehouseID int) (*WarehouseResult, error) {
	warehouse, err := s.warehouses.GetWarehouse(ctx, ownerID, warehouseID)
	if err != nil {
		return nil, err
	}
	locations, err := s.warehouses.GetLocations(ctx, ownerID, warehouseID)
	if err != nil {
		return nil, err
	}
	return &WarehouseResult{Warehouse: warehouse, Locations: locations}, nil
}

// CreateWarehouse adds a warehouse.
func (s *appService) CreateWarehouse(ctx context.Context, ownerID int, req WarehouseRequest) (*core.Warehouse, error) {
	return s.warehouses.CreateWarehouse(ctx, ownerID, warehouseInput(req))
}

// UpdateWarehouse replaces a warehouse's fields.
func (s *appService) UpdateWarehouse(ctx context.Context, ownerID, warehouseID int, req WarehouseRequest) (*core.Warehouse, error) {
	return s.warehouses.UpdateWarehouse(ctx, ownerID, warehouseID, warehouseInput(req))
}

// DeleteWarehouse removes an empty, unreferenced warehouse.
func (s *appService) DeleteWarehouse(ctx context.Context, ownerID, warehouseID int) error {
	return s.warehouses.DeleteWarehouse(ctx, ownerID, warehouseID)
}

// AddLocation creates a location inside a warehouse.
func (s *appService) AddLocation(ctx context.Context, ownerID, warehouseID int, req LocationRequest) (*core.Location, error) {
	return s.warehouses.CreateLocation(ctx, ownerID, warehouseID, core.LocationInput{
		Aisle: req.Aisle,
		Rack:  req.Rack,
		Shelf: req.Shelf,
	})
}

// RemoveLocation deletes an unoccupied, unreferenced location.
func (s *appService) RemoveLocation(ctx context.Context, ownerID, warehouseID, locationID int) error {
	return s.warehouses.DeleteLocation(ctx, ownerID, warehouseID, locationID)
}

func warehouseInput(req WarehouseRequest) core.WarehouseInput {
	return core.WarehouseInput{Code: req.Code, Name: req.Name, Address: req.Address}
}

// ── Stock ─────────────────────────────────────────────────────────────────────

// BrowseStock returns one page of the owner's stock rows.
func (s *appService) BrowseStock(ctx context.Context, ownerID int, req StockBrowseRequest) (*StockPageResult, error) {
	filter := stockFilter(req)
	rows, total, err := s.stock.ListStock(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}

	// Report the page bounds the listing actually used.
	limit := filter.Limit
	if limit <= 0 {
		limit = core.DefaultStockPageSize
	}
	if limit > core.MaxStockPageSize {
		limit = core.MaxStockPageSize
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	return &StockPageResult{Rows: rows, Total: total, Page: page, Limit: limit}, nil
}

// ExportStock returns every stock row matching req's filters by walking the
// listing page by page.
func (s *appService) ExportStock(ctx context.Context, ownerID int, req StockBrowseRequest) ([]core.StockRow, error) {
	filter := stockFilter(req)
	filter.Page = 1
	filter.Limit = core.MaxStockPageSize

	var all []core.StockRow
	for {
		rows, total, err := s.stock.ListStock(ctx, ownerID, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, rows...)
		if len(rows) == 0 || len(all) >= total {
			return all, nil
		}
		filter.Page++
	}
}

func stockFilter(req StockBrowseRequest) core.StockFilter {
	return core.StockFilter{
		ProductID:    req.ProductID,
		WarehouseID:  req.WarehouseID,
		LocationID:   req.LocationID,
		SKU:          req.SKU,
		BelowReorder: req.BelowReorder,
		Page:         req.Page,
		Limit:        req.Limit,
	}
}

// ── Documents ─────────────────────────────────────────────────────────────────

// CreateOrder submits a purchase or sales order.
func (s *appService) CreateOrder(ctx context.Context, ownerID int, req CreateOrderRequest) (*core.Order, error) {
	lines := make([]core.OrderLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.OrderLineInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		}
	}
	return s.orders.CreateOrder(ctx, ownerID, core.OrderInput{
		OrderType:    req.OrderType,
		Counterparty: req.Counterparty,
		WarehouseID:  req.WarehouseID,
		OrderDate:    req.OrderDate,
		Notes:        req.Notes,
		Lines:        lines,
	})
}

// ListOrders returns order headers, optionally filtered by type and status.
func (s *appService) ListOrders(ctx context.Context, ownerID int, orderType, status string) (*OrderListResult, error) {
	orders, err := s.orders.GetOrders(ctx, ownerID, core.OrderFilter{OrderType: orderType, Status: status})
	if err != nil {
		return nil, err
	}
	return &OrderListResult{Orders: orders}, nil
}

// GetOrder returns one order with its items.
func (s *appService) GetOrder(ctx context.Context, ownerID, orderID int) (*core.Order, error) {
	return s.orders.GetOrder(ctx, ownerID, orderID)
}

// UpdateOrderStatus moves an order through its lifecycle.
func (s *appService) UpdateOrderStatus(ctx context.Context, ownerID, orderID int, status string) (*core.Order, error) {
	return s.orders.UpdateOrderStatus(ctx, ownerID, orderID, status)
}

// CreateReceipt records a goods receipt and adds its lines to stock.
func (s *appService) CreateReceipt(ctx context.Context, ownerID int, req CreateReceiptRequest) (*core.Receipt, error) {
	lines := make([]core.ReceiptLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.ReceiptLineInput{
			ProductID:  l.ProductID,
			LocationID: l.LocationID,
			Quantity:   l.Quantity,
		}
	}
	return s.receipts.CreateReceipt(ctx, ownerID, core.ReceiptInput{
		OrderID:     req.OrderID,
		WarehouseID: req.WarehouseID,
		ReceiptDate: req.ReceiptDate,
		Notes:       req.Notes,
		Lines:       lines,
	})
}

// ListReceipts returns receipt headers, newest first.
func (s *appService) ListReceipts(ctx context.Context, ownerID int) (*ReceiptListResult, error) {
	receipts, err := s.receipts.GetReceipts(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &ReceiptListResult{Receipts: receipts}, nil
}

// GetReceipt returns one receipt with its items.
func (s *appService) GetReceipt(ctx context.Context, ownerID, receiptID int) (*core.Receipt, error) {
	return s.receipts.GetReceipt(ctx, ownerID, receiptID)
}

// CreateTransfer records an inter-warehouse transfer and moves the stock.
func (s *appService) CreateTransfer(ctx context.Context, ownerID int, req CreateTransferRequest) (*core.Transfer, error) {
	lines := make([]core.TransferLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = core.TransferLineInput{
			ProductID:      l.ProductID,
			FromLocationID: l.FromLocationID,
			ToLocationID:   l.ToLocationID,
			Quantity:       l.Quantity,
		}
	}
	return s.transfers.CreateTransfer(ctx, ownerID, core.TransferInput{
		FromWarehouseID: req.FromWarehouseID,
		ToWarehouseID:   req.ToWarehouseID,
		TransferDate:    req.TransferDate,
		Notes:           req.Notes,
		Lines:           lines,
	})
}

// ListTransfers returns transfer headers, newest first.
func (s *appService) ListTransfers(ctx context.Context, ownerID int) (*TransferListResult, error) {
	transfers, err := s.transfers.GetTransfers(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &TransferListResult{Transfers: transfers}, nil
}

// GetTransfer returns one transfer with its items.
func (s *appService) GetTransfer(ctx context.Context, ownerID, transferID int) (*core.Transfer, error) {
	return s.transfers.GetTransfer(ctx, ownerID, transferID)
}

// ── Analytics ─────────────────────────────────────────────────────────────────

// GetDashboard returns the KPI snapshot through the Redis cache.
func (s *appService) GetDashboard(ctx context.Context, ownerID int) (*core.Dashboard, error) {
	return s.dashboards.Get(ctx, ownerID, func(ctx context.Context) (*core.Dashboard, error) {
		return s.analytics.GetDashboard(ctx, ownerID)
	})
}

// GetSalesAnalytics returns the chart series for the analytics page.
func (s *appService) GetSalesAnalytics(ctx context.Context, ownerID int) (*core.SalesAnalytics, error) {
	return s.analytics.GetSalesAnalytics(ctx, ownerID)
}
