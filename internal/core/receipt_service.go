package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReceiptService records goods receipts and applies them to the stock ledger.
type ReceiptService interface {
	// CreateReceipt persists the receipt and adds every line to the target
	// warehouse's stock in one transaction.
	CreateReceipt(ctx context.Context, ownerID int, input ReceiptInput) (*Receipt, error)
	GetReceipts(ctx context.Context, ownerID int) ([]Receipt, error)
	GetReceipt(ctx context.Context, ownerID, receiptID int) (*Receipt, error)
}

type receiptService struct {
	pool  *pgxpool.Pool
	stock StockService
}

// NewReceiptService constructs a ReceiptService backed by PostgreSQL.
func NewReceiptService(pool *pgxpool.Pool, stock StockService) ReceiptService {
	return &receiptService{pool: pool, stock: stock}
}

func (s *receiptService) CreateReceipt(ctx context.Context, ownerID int, input ReceiptInput) (*Receipt, error) {
	if input.WarehouseID == 0 {
		return nil, validationf("warehouse is required")
	}
	if len(input.Lines) == 0 {
		return nil, validationf("receipt must have at least one line")
	}
	receiptDate := input.ReceiptDate
	if receiptDate == "" {
		receiptDate = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", receiptDate); err != nil {
		return nil, validationf("invalid receipt_date %q (expected YYYY-MM-DD)", receiptDate)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// A parent order must be the owner's own purchase order and still open.
	var orderID *int
	if input.OrderID != 0 {
		var orderNumber, orderType, status string
		err = tx.QueryRow(ctx,
			"SELECT order_number, order_type, status FROM orders WHERE owner_id = $1 AND id = $2",
			ownerID, input.OrderID,
		).Scan(&orderNumber, &orderType, &status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, notFoundf("order %d not found", input.OrderID)
			}
			return nil, fmt.Errorf("failed to fetch order %d: %w", input.OrderID, err)
		}
		if orderType != OrderTypePurchase {
			return nil, validationf("order %s is not a purchase order", orderNumber)
		}
		if status == OrderStatusCancelled {
			return nil, conflictf("cannot receive against cancelled order %s", orderNumber)
		}
		orderID = &input.OrderID
	}

	receiveLines := make([]ReceiveLine, 0, len(input.Lines))
	for i, line := range input.Lines {
		if !line.Quantity.IsPositive() {
			return nil, validationf("line %d: quantity must be positive", i+1)
		}
		var sku string
		err = tx.QueryRow(ctx,
			"SELECT sku FROM products WHERE owner_id = $1 AND id = $2",
			ownerID, line.ProductID,
		).Scan(&sku)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, notFoundf("line %d: product %d not found", i+1, line.ProductID)
			}
			return nil, fmt.Errorf("line %d: failed to resolve product: %w", i+1, err)
		}
		receiveLines = append(receiveLines, ReceiveLine{
			ProductID:  line.ProductID,
			SKU:        sku,
			LocationID: line.LocationID,
			Quantity:   line.Quantity,
		})
	}

	receiptNumber, err := NextDocumentNumberTx(ctx, tx, ownerID, DocTypeReceipt)
	if err != nil {
		return nil, err
	}

	var receiptID int
	err = tx.QueryRow(ctx, `
		INSERT INTO receipts (owner_id, receipt_number, order_id, warehouse_id, receipt_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		ownerID, receiptNumber, orderID, input.WarehouseID, receiptDate, input.Notes,
	).Scan(&receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert receipt: %w", err)
	}

	for i, line := range input.Lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO receipt_items (receipt_id, product_id, location_id, quantity)
			VALUES ($1, $2, $3, $4)`,
			receiptID, line.ProductID, line.LocationID, line.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert receipt line %d: %w", i+1, err)
		}
	}

	if err := s.stock.ReceiveStockTx(ctx, tx, ownerID, input.WarehouseID, receiveLines); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit receipt: %w", err)
	}

	return s.GetReceipt(ctx, ownerID, receiptID)
}

const receiptColumns = `
	r.id, r.owner_id, r.receipt_number, r.order_id, COALESCE(o.order_number, ''),
	r.warehouse_id, w.code, r.receipt_date::text, r.notes, r.created_at`

func (s *receiptService) GetReceipt(ctx context.Context, ownerID, receiptID int) (*Receipt, error) {
	var r Receipt
	err := s.pool.QueryRow(ctx, `
		SELECT`+receiptColumns+`
		FROM receipts r
		JOIN warehouses w ON w.id = r.warehouse_id
		LEFT JOIN orders o ON o.id = r.order_id
		WHERE r.owner_id = $1 AND r.id = $2`,
		ownerID, receiptID,
	).Scan(
		&r.ID, &r.OwnerID, &r.ReceiptNumber, &r.OrderID, &r.OrderNumber,
		&r.WarehouseID, &r.WarehouseCode, &r.ReceiptDate, &r.Notes, &r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("receipt %d not found", receiptID)
		}
		return nil, fmt.Errorf("failed to fetch receipt %d: %w", receiptID, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT ri.id, ri.receipt_id, ri.product_id, p.sku, p.name,
		       ri.location_id, COALESCE(l.aisle, ''), COALESCE(l.rack, ''), COALESCE(l.shelf, ''),
		       ri.quantity
		FROM receipt_items ri
		JOIN products p ON p.id = ri.product_id
		LEFT JOIN locations l ON l.id = ri.location_id
		WHERE ri.receipt_id = $1
		ORDER BY ri.id`,
		receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipt items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item ReceiptItem
		var loc Location
		if err := rows.Scan(
			&item.ID, &item.ReceiptID, &item.ProductID, &item.SKU, &item.ProductName,
			&item.LocationID, &loc.Aisle, &loc.Rack, &loc.Shelf,
			&item.Quantity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan receipt item: %w", err)
		}
		item.LocationLabel = loc.Label()
		r.Items = append(r.Items, item)
	}
	return &r, rows.Err()
}

func (s *receiptService) GetReceipts(ctx context.Context, ownerID int) ([]Receipt, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT`+receiptColumns+`
		FROM receipts r
		JOIN warehouses w ON w.id = r.warehouse_id
		LEFT JOIN orders o ON o.id = r.order_id
		WHERE r.owner_id = $1
		ORDER BY r.id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	var receipts []Receipt
	for rows.Next() {
		var r Receipt
		if err := rows.Scan(
			&r.ID, &r.OwnerID, &r.ReceiptNumber, &r.OrderID, &r.OrderNumber,
			&r.WarehouseID, &r.WarehouseCode, &r.ReceiptDate, &r.Notes, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipts = append(receipts, r)
	}
	return receipts, rows.Err()
}
