package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// OrderService manages the purchase and sales order lifecycle.
type OrderService interface {
	// CreateOrder persists a new order with its items. Sales orders deduct
	// the ordered quantities from the source warehouse in the same
	// transaction; an insufficient-stock line rejects the whole order.
	CreateOrder(ctx context.Context, ownerID int, input OrderInput) (*Order, error)
	GetOrders(ctx context.Context, ownerID int, filter OrderFilter) ([]Order, error)
	GetOrder(ctx context.Context, ownerID, orderID int) (*Order, error)
	// UpdateOrderStatus moves an order through its lifecycle. Cancelling a
	// sales order returns the quantities its creation deducted to the source
	// warehouse, into the warehouse-level slot.
	UpdateOrderStatus(ctx context.Context, ownerID, orderID int, newStatus string) (*Order, error)
}

type orderService struct {
	pool  *pgxpool.Pool
	stock StockService
}

// NewOrderService constructs an OrderService backed by PostgreSQL.
// Stock movements triggered by order transitions run through stock.
func NewOrderService(pool *pgxpool.Pool, stock StockService) OrderService {
	return &orderService{pool: pool, stock: stock}
}

// resolvedOrderLine is an order line joined with its catalog product.
type resolvedOrderLine struct {
	productID int
	sku       string
	quantity  decimal.Decimal
	unitPrice decimal.Decimal
}

func (s *orderService) CreateOrder(ctx context.Context, ownerID int, input OrderInput) (*Order, error) {
	if input.OrderType != OrderTypePurchase && input.OrderType != OrderTypeSales {
		return nil, validationf("order_type must be %s or %s", OrderTypePurchase, OrderTypeSales)
	}
	input.Counterparty = strings.TrimSpace(input.Counterparty)
	if input.Counterparty == "" {
		return nil, validationf("counterparty is required")
	}
	if len(input.Lines) == 0 {
		return nil, validationf("order must have at least one line")
	}
	if input.OrderType == OrderTypeSales && input.WarehouseID == 0 {
		return nil, validationf("warehouse is required for sales orders")
	}
	orderDate := input.OrderDate
	if orderDate == "" {
		orderDate = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", orderDate); err != nil {
		return nil, validationf("invalid order_date %q (expected YYYY-MM-DD)", orderDate)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var warehouseID *int
	if input.WarehouseID != 0 {
		w, err := getWarehouse(ctx, tx, ownerID, input.WarehouseID)
		if err != nil {
			return nil, err
		}
		warehouseID = &w.ID
	}

	docType := DocTypePurchaseOrder
	if input.OrderType == OrderTypeSales {
		docType = DocTypeSalesOrder
	}

	var resolved []resolvedOrderLine
	for i, line := range input.Lines {
		if !line.Quantity.IsPositive() {
			return nil, validationf("line %d: quantity must be positive", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return nil, validationf("line %d: unit price cannot be negative", i+1)
		}

		var sku string
		var costPrice, sellingPrice decimal.Decimal
		err = tx.QueryRow(ctx,
			"SELECT sku, cost_price, selling_price FROM products WHERE owner_id = $1 AND id = $2",
			ownerID, line.ProductID,
		).Scan(&sku, &costPrice, &sellingPrice)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, notFoundf("line %d: product %d not found", i+1, line.ProductID)
			}
			return nil, fmt.Errorf("line %d: failed to resolve product: %w", i+1, err)
		}

		price := line.UnitPrice
		if price.IsZero() {
			if input.OrderType == OrderTypeSales {
				price = sellingPrice
			} else {
				price = costPrice
			}
		}

		resolved = append(resolved, resolvedOrderLine{
			productID: line.ProductID,
			sku:       sku,
			quantity:  line.Quantity,
			unitPrice: price,
		})
	}

	orderNumber, err := NextDocumentNumberTx(ctx, tx, ownerID, docType)
	if err != nil {
		return nil, err
	}

	var orderID int
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (owner_id, order_number, order_type, status, counterparty, warehouse_id, order_date, notes)
		VALUES ($1, $2, $3, 'pending', $4, $5, $6, $7)
		RETURNING id`,
		ownerID, orderNumber, input.OrderType, input.Counterparty, warehouseID, orderDate, input.Notes,
	).Scan(&orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for i, rl := range resolved {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)`,
			orderID, rl.productID, rl.quantity, rl.unitPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order line %d: %w", i+1, err)
		}
	}

	// Sales orders take their stock at submission; the insufficient-stock
	// check and the header insert stand or fall together.
	if input.OrderType == OrderTypeSales {
		deductions := make([]DeductLine, 0, len(resolved))
		for _, rl := range resolved {
			deductions = append(deductions, DeductLine{
				ProductID: rl.productID,
				SKU:       rl.sku,
				Quantity:  rl.quantity,
			})
		}
		if err := s.stock.DeductStockTx(ctx, tx, ownerID, *warehouseID, deductions); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order creation: %w", err)
	}

	return s.GetOrder(ctx, ownerID, orderID)
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, ownerID, orderID int, newStatus string) (*Order, error) {
	switch newStatus {
	case OrderStatusConfirmed, OrderStatusCompleted, OrderStatusCancelled:
	default:
		return nil, validationf("invalid status %q", newStatus)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var orderNumber, orderType, status string
	var warehouseID *int
	err = tx.QueryRow(ctx, `
		SELECT order_number, order_type, status, warehouse_id
		FROM orders
		WHERE owner_id = $1 AND id = $2
		FOR UPDATE`,
		ownerID, orderID,
	).Scan(&orderNumber, &orderType, &status, &warehouseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("order %d not found", orderID)
		}
		return nil, fmt.Errorf("failed to fetch order %d: %w", orderID, err)
	}

	if !CanTransitionOrder(status, newStatus) {
		return nil, conflictf("order %s cannot be moved to %s: status is %s", orderNumber, newStatus, status)
	}

	// Cancelling a sales order puts the deducted quantities back into the
	// source warehouse before the status flips.
	if newStatus == OrderStatusCancelled && orderType == OrderTypeSales {
		items, err := fetchOrderItemsQ(ctx, tx, orderID)
		if err != nil {
			return nil, err
		}
		restores := make([]ReceiveLine, 0, len(items))
		for _, item := range items {
			restores = append(restores, ReceiveLine{
				ProductID: item.ProductID,
				SKU:       item.SKU,
				Quantity:  item.Quantity,
			})
		}
		if err := s.stock.ReceiveStockTx(ctx, tx, ownerID, *warehouseID, restores); err != nil {
			return nil, fmt.Errorf("failed to restore stock for cancelled order %s: %w", orderNumber, err)
		}
	}

	_, err = tx.Exec(ctx, "UPDATE orders SET status = $1 WHERE id = $2", newStatus, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to update order %s: %w", orderNumber, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit status change: %w", err)
	}

	return s.GetOrder(ctx, ownerID, orderID)
}

// ── Queries ──────────────────────────────────────────────────────────────────

const orderColumns = `
	o.id, o.owner_id, o.order_number, o.order_type, o.status, o.counterparty,
	o.warehouse_id, COALESCE(w.code, ''), o.order_date::text, o.notes,
	COALESCE((SELECT SUM(oi.quantity * oi.unit_price) FROM order_items oi WHERE oi.order_id = o.id), 0),
	o.created_at`

func (s *orderService) GetOrder(ctx context.Context, ownerID, orderID int) (*Order, error) {
	var o Order
	err := s.pool.QueryRow(ctx, `
		SELECT`+orderColumns+`
		FROM orders o
		LEFT JOIN warehouses w ON w.id = o.warehouse_id
		WHERE o.owner_id = $1 AND o.id = $2`,
		ownerID, orderID,
	).Scan(
		&o.ID, &o.OwnerID, &o.OrderNumber, &o.OrderType, &o.Status, &o.Counterparty,
		&o.WarehouseID, &o.WarehouseCode, &o.OrderDate, &o.Notes,
		&o.TotalAmount, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("order %d not found", orderID)
		}
		return nil, fmt.Errorf("failed to fetch order %d: %w", orderID, err)
	}

	items, err := fetchOrderItemsQ(ctx, s.pool, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (s *orderService) GetOrders(ctx context.Context, ownerID int, filter OrderFilter) ([]Order, error) {
	query := `
		SELECT` + orderColumns + `
		FROM orders o
		LEFT JOIN warehouses w ON w.id = o.warehouse_id
		WHERE o.owner_id = $1`
	args := []any{ownerID}

	if filter.OrderType != "" {
		args = append(args, filter.OrderType)
		query += fmt.Sprintf(" AND o.order_type = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND o.status = $%d", len(args))
	}
	query += " ORDER BY o.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(
			&o.ID, &o.OwnerID, &o.OrderNumber, &o.OrderType, &o.Status, &o.Counterparty,
			&o.WarehouseID, &o.WarehouseCode, &o.OrderDate, &o.Notes,
			&o.TotalAmount, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func fetchOrderItemsQ(ctx context.Context, q pgxRowQuerier, orderID int) ([]OrderItem, error) {
	rows, err := q.Query(ctx, `
		SELECT oi.id, oi.order_id, oi.product_id, p.sku, p.name,
		       oi.quantity, oi.unit_price, oi.quantity * oi.unit_price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.SKU, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.LineTotal,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
