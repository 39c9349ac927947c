package core

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var stockDialect = goqu.Dialect("postgres")

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared query helpers.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgxRowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgxRowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// StockService owns the stock ledger: the browsable stock-level view and the
// movement primitives every document submission runs through.
type StockService interface {
	// Standalone operations (manage their own reads).
	ListStock(ctx context.Context, ownerID int, filter StockFilter) ([]StockRow, int, error)

	// TX-scoped operations: work within a caller-provided transaction.
	// Used by the document services so that ledger writes land atomically
	// with the document they belong to.

	// ReceiveStockTx adds quantity to the (product, warehouse, location) slot
	// of each line, creating the stock row on first receipt.
	ReceiveStockTx(ctx context.Context, tx pgx.Tx, ownerID, warehouseID int, lines []ReceiveLine) error
	// DeductStockTx removes quantity for each line. Lines without a location
	// walk the product's slots in the warehouse in row order, draining each
	// before moving to the next; a shortfall rejects the whole transaction.
	DeductStockTx(ctx context.Context, tx pgx.Tx, ownerID, warehouseID int, lines []DeductLine) error
	// TransferStockTx deducts each line at the source warehouse and adds it
	// at the destination. Both warehouses must belong to the owner and differ.
	TransferStockTx(ctx context.Context, tx pgx.Tx, ownerID, fromWarehouseID, toWarehouseID int, lines []MoveLine) error
}

type stockService struct {
	pool *pgxpool.Pool
}

// NewStockService constructs a StockService backed by PostgreSQL.
func NewStockService(pool *pgxpool.Pool) StockService {
	return &stockService{pool: pool}
}

// ── Stock browsing ────────────────────────────────────────────────────────────

func (s *stockService) ListStock(ctx context.Context, ownerID int, filter StockFilter) ([]StockRow, int, error) {
	base := stockDialect.From(goqu.T("stock").As("s")).
		Join(goqu.T("products").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("s.product_id")))).
		Join(goqu.T("warehouses").As("w"), goqu.On(goqu.I("w.id").Eq(goqu.I("s.warehouse_id")))).
		LeftJoin(goqu.T("locations").As("l"), goqu.On(goqu.I("l.id").Eq(goqu.I("s.location_id")))).
		Where(goqu.I("w.owner_id").Eq(ownerID))

	if filter.ProductID != 0 {
		base = base.Where(goqu.I("s.product_id").Eq(filter.ProductID))
	}
	if filter.WarehouseID != 0 {
		base = base.Where(goqu.I("s.warehouse_id").Eq(filter.WarehouseID))
	}
	if filter.LocationID != 0 {
		base = base.Where(goqu.I("s.location_id").Eq(filter.LocationID))
	}
	if filter.SKU != "" {
		base = base.Where(goqu.I("p.sku").Eq(filter.SKU))
	}
	if filter.BelowReorder {
		base = base.Where(
			goqu.I("p.reorder_level").Gt(0),
			goqu.L("s.quantity - s.reserved_quantity").Lt(goqu.I("p.reorder_level")),
		)
	}

	countSQL, countArgs, err := base.Select(goqu.COUNT("*")).Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build stock count query: %w", err)
	}
	var total int
	if err := s.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count stock: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultStockPageSize
	}
	if limit > MaxStockPageSize {
		limit = MaxStockPageSize
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}

	listSQL, listArgs, err := base.Select(
		goqu.I("s.id"), goqu.I("s.product_id"), goqu.I("p.sku"), goqu.I("p.name"),
		goqu.I("s.warehouse_id"), goqu.I("w.code"), goqu.I("w.name"),
		goqu.I("s.location_id"),
		goqu.L("COALESCE(l.aisle, '')"), goqu.L("COALESCE(l.rack, '')"), goqu.L("COALESCE(l.shelf, '')"),
		goqu.I("s.quantity"), goqu.I("s.reserved_quantity"),
		goqu.L("s.quantity - s.reserved_quantity").As("available"),
		goqu.I("s.updated_at"),
	).
		Order(goqu.I("p.sku").Asc(), goqu.I("w.code").Asc(), goqu.I("s.id").Asc()).
		Limit(uint(limit)).
		Offset(uint((page - 1) * limit)).
		Prepared(true).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build stock list query: %w", err)
	}

	rows, err := s.pool.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()

	var result []StockRow
	for rows.Next() {
		var r StockRow
		var loc Location
		if err := rows.Scan(
			&r.ID, &r.ProductID, &r.SKU, &r.ProductName,
			&r.WarehouseID, &r.WarehouseCode, &r.WarehouseName,
			&r.LocationID,
			&loc.Aisle, &loc.Rack, &loc.Shelf,
			&r.Quantity, &r.Reserved, &r.Available,
			&r.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan stock row: %w", err)
		}
		r.LocationLabel = loc.Label()
		result = append(result, r)
	}
	return result, total, rows.Err()
}

// ── TX-scoped movements ───────────────────────────────────────────────────────

func (s *stockService) ReceiveStockTx(ctx context.Context, tx pgx.Tx, ownerID, warehouseID int, lines []ReceiveLine) error {
	if len(lines) == 0 {
		return validationf("at least one line item is required")
	}
	w, err := getWarehouse(ctx, tx, ownerID, warehouseID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if !line.Quantity.IsPositive() {
			return validationf("quantity for product %s must be positive", line.SKU)
		}
		if err := addStockTx(ctx, tx, w.ID, line.ProductID, line.SKU, line.LocationID, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *stockService) DeductStockTx(ctx context.Context, tx pgx.Tx, ownerID, warehouseID int, lines []DeductLine) error {
	if len(lines) == 0 {
		return validationf("at least one line item is required")
	}
	w, err := getWarehouse(ctx, tx, ownerID, warehouseID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if !line.Quantity.IsPositive() {
			return validationf("quantity for product %s must be positive", line.SKU)
		}
		if err := deductStockTx(ctx, tx, w.ID, line.ProductID, line.SKU, line.LocationID, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (s *stockService) TransferStockTx(ctx context.Context, tx pgx.Tx, ownerID, fromWarehouseID, toWarehouseID int, lines []MoveLine) error {
	if fromWarehouseID == toWarehouseID {
		return validationf("source and destination warehouses must differ")
	}
	if len(lines) == 0 {
		return validationf("at least one line item is required")
	}
	from, err := getWarehouse(ctx, tx, ownerID, fromWarehouseID)
	if err != nil {
		return err
	}
	to, err := getWarehouse(ctx, tx, ownerID, toWarehouseID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if !line.Quantity.IsPositive() {
			return validationf("quantity for product %s must be positive", line.SKU)
		}
		if err := deductStockTx(ctx, tx, from.ID, line.ProductID, line.SKU, line.FromLocationID, line.Quantity); err != nil {
			return err
		}
		if err := addStockTx(ctx, tx, to.ID, line.ProductID, line.SKU, line.ToLocationID, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// addStockTx upserts quantity onto one slot. The conflict target matches the
// unique index on (product_id, warehouse_id, COALESCE(location_id, 0)).
func addStockTx(ctx context.Context, tx pgx.Tx, warehouseID, productID int, sku string, locationID *int, qty decimal.Decimal) error {
	if locationID != nil {
		if err := locationInWarehouse(ctx, tx, *locationID, warehouseID); err != nil {
			return err
		}
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO stock (product_id, warehouse_id, location_id, quantity, reserved_quantity)
		VALUES ($1, $2, $3, $4, 0)
		ON CONFLICT (product_id, warehouse_id, (COALESCE(location_id, 0)))
		DO UPDATE SET quantity = stock.quantity + EXCLUDED.quantity, updated_at = NOW()`,
		productID, warehouseID, locationID, qty,
	)
	if err != nil {
		return fmt.Errorf("failed to add stock for product %s: %w", sku, err)
	}
	return nil
}

// deductStockTx removes qty from the product's slots in one warehouse. With a
// location only that slot is eligible; without one every slot of the product
// is, drained in row order. Rows are locked before the availability check so
// concurrent sells cannot both pass it.
func deductStockTx(ctx context.Context, tx pgx.Tx, warehouseID, productID int, sku string, locationID *int, qty decimal.Decimal) error {
	if locationID != nil {
		if err := locationInWarehouse(ctx, tx, *locationID, warehouseID); err != nil {
			return err
		}
	}
	slots, err := lockSlots(ctx, tx, productID, warehouseID, locationID)
	if err != nil {
		return fmt.Errorf("failed to lock stock for product %s: %w", sku, err)
	}

	plan, shortfall := PlanDeduction(slots, qty)
	if shortfall.IsPositive() {
		return conflictf("insufficient stock for product %s: available %s, required %s",
			sku, TotalAvailable(slots).StringFixed(4), qty.StringFixed(4))
	}

	for _, d := range plan {
		_, err := tx.Exec(ctx, `
			UPDATE stock SET quantity = quantity - $1, updated_at = NOW()
			WHERE id = $2`,
			d.Take, d.StockID,
		)
		if err != nil {
			return fmt.Errorf("failed to deduct stock for product %s: %w", sku, err)
		}
	}
	return nil
}

// lockSlots fetches and row-locks the stock rows a deduction may touch.
// The id ordering fixes which slot drains first and gives concurrent
// transactions a consistent lock order.
func lockSlots(ctx context.Context, tx pgx.Tx, productID, warehouseID int, locationID *int) ([]StockSlot, error) {
	query := `
		SELECT id, quantity - reserved_quantity
		FROM stock
		WHERE product_id = $1 AND warehouse_id = $2`
	args := []any{productID, warehouseID}
	if locationID != nil {
		args = append(args, *locationID)
		query += ` AND location_id = $3`
	}
	query += `
		ORDER BY id
		FOR UPDATE`

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []StockSlot
	for rows.Next() {
		var slot StockSlot
		if err := rows.Scan(&slot.StockID, &slot.Available); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func locationInWarehouse(ctx context.Context, q pgxQuerier, locationID, warehouseID int) error {
	var exists bool
	err := q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM locations WHERE id = $1 AND warehouse_id = $2)`,
		locationID, warehouseID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check location %d: %w", locationID, err)
	}
	if !exists {
		return validationf("location %d does not belong to warehouse %d", locationID, warehouseID)
	}
	return nil
}
