package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransferService records inter-warehouse transfers and moves the stock they
// describe. Both sides of every move land in the transfer's transaction: a
// transfer never exists as paperwork only.
type TransferService interface {
	CreateTransfer(ctx context.Context, ownerID int, input TransferInput) (*Transfer, error)
	GetTransfers(ctx context.Context, ownerID int) ([]Transfer, error)
	GetTransfer(ctx context.Context, ownerID, transferID int) (*Transfer, error)
}

type transferService struct {
	pool  *pgxpool.Pool
	stock StockService
}

// NewTransferService constructs a TransferService backed by PostgreSQL.
func NewTransferService(pool *pgxpool.Pool, stock StockService) TransferService {
	return &transferService{pool: pool, stock: stock}
}

func (s *transferService) CreateTransfer(ctx context.Context, ownerID int, input TransferInput) (*Transfer, error) {
	if input.FromWarehouseID == 0 || input.ToWarehouseID == 0 {
		return nil, validationf("source and destination warehouses are required")
	}
	if input.FromWarehouseID == input.ToWarehouseID {
		return nil, validationf("source and destination warehouses must differ")
	}
	if len(input.Lines) == 0 {
		return nil, validationf("transfer must have at least one line")
	}
	transferDate := input.TransferDate
	if transferDate == "" {
		transferDate = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", transferDate); err != nil {
		return nil, validationf("invalid transfer_date %q (expected YYYY-MM-DD)", transferDate)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	moveLines := make([]MoveLine, 0, len(input.Lines))
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
		moveLines = append(moveLines, MoveLine{
			ProductID:      line.ProductID,
			SKU:            sku,
			FromLocationID: line.FromLocationID,
			ToLocationID:   line.ToLocationID,
			Quantity:       line.Quantity,
		})
	}

	transferNumber, err := NextDocumentNumberTx(ctx, tx, ownerID, DocTypeTransfer)
	if err != nil {
		return nil, err
	}

	var transferID int
	err = tx.QueryRow(ctx, `
		INSERT INTO transfers (owner_id, transfer_number, from_warehouse_id, to_warehouse_id, status, transfer_date, notes)
		VALUES ($1, $2, $3, $4, 'completed', $5, $6)
		RETURNING id`,
		ownerID, transferNumber, input.FromWarehouseID, input.ToWarehouseID, transferDate, input.Notes,
	).Scan(&transferID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transfer: %w", err)
	}

	for i, line := range input.Lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO transfer_items (transfer_id, product_id, from_location_id, to_location_id, quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			transferID, line.ProductID, line.FromLocationID, line.ToLocationID, line.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert transfer line %d: %w", i+1, err)
		}
	}

	if err := s.stock.TransferStockTx(ctx, tx, ownerID, input.FromWarehouseID, input.ToWarehouseID, moveLines); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}

	return s.GetTransfer(ctx, ownerID, transferID)
}

const transferColumns = `
	t.id, t.owner_id, t.transfer_number,
	t.from_warehouse_id, wf.code, t.to_warehouse_id, wt.code,
	t.status, t.transfer_date::text, t.notes, t.created_at`

func (s *transferService) GetTransfer(ctx context.Context, ownerID, transferID int) (*Transfer, error) {
	var t Transfer
	err := s.pool.QueryRow(ctx, `
		SELECT`+transferColumns+`
		FROM transfers t
		JOIN warehouses wf ON wf.id = t.from_warehouse_id
		JOIN warehouses wt ON wt.id = t.to_warehouse_id
		WHERE t.owner_id = $1 AND t.id = $2`,
		ownerID, transferID,
	).Scan(
		&t.ID, &t.OwnerID, &t.TransferNumber,
		&t.FromWarehouseID, &t.FromWarehouseCode, &t.ToWarehouseID, &t.ToWarehouseCode,
		&t.Status, &t.TransferDate, &t.Notes, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("transfer %d not found", transferID)
		}
		return nil, fmt.Errorf("failed to fetch transfer %d: %w", transferID, err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT ti.id, ti.transfer_id, ti.product_id, p.sku, p.name,
		       ti.from_location_id, COALESCE(lf.aisle, ''), COALESCE(lf.rack, ''), COALESCE(lf.shelf, ''),
		       ti.to_location_id, COALESCE(lt.aisle, ''), COALESCE(lt.rack, ''), COALESCE(lt.shelf, ''),
		       ti.quantity
		FROM transfer_items ti
		JOIN products p ON p.id = ti.product_id
		LEFT JOIN locations lf ON lf.id = ti.from_location_id
		LEFT JOIN locations lt ON lt.id = ti.to_location_id
		WHERE ti.transfer_id = $1
		ORDER BY ti.id`,
		transferID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item TransferItem
		var from, to Location
		if err := rows.Scan(
			&item.ID, &item.TransferID, &item.ProductID, &item.SKU, &item.ProductName,
			&item.FromLocationID, &from.Aisle, &from.Rack, &from.Shelf,
			&item.ToLocationID, &to.Aisle, &to.Rack, &to.Shelf,
			&item.Quantity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transfer item: %w", err)
		}
		item.FromLocationLabel = from.Label()
		item.ToLocationLabel = to.Label()
		t.Items = append(t.Items, item)
	}
	return &t, rows.Err()
}

func (s *transferService) GetTransfers(ctx context.Context, ownerID int) ([]Transfer, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT`+transferColumns+`
		FROM transfers t
		JOIN warehouses wf ON wf.id = t.from_warehouse_id
		JOIN warehouses wt ON wt.id = t.to_warehouse_id
		WHERE t.owner_id = $1
		ORDER BY t.id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	var transfers []Transfer
	for rows.Next() {
		var t Transfer
		if err := rows.Scan(
			&t.ID, &t.OwnerID, &t.TransferNumber,
			&t.FromWarehouseID, &t.FromWarehouseCode, &t.ToWarehouseID, &t.ToWarehouseCode,
			&t.Status, &t.TransferDate, &t.Notes, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}
