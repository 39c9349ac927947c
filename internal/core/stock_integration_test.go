package core_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"stockmaster/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Seed ids are deterministic: TRUNCATE ... RESTART IDENTITY makes the rows
// below land on ids 1, 2, 3 in insert order.
const (
	ownerID     = 1
	otherUserID = 2

	widgetID   = 1 // SKU-1, reorder level 10
	gadgetID   = 2 // SKU-2, no reorder level
	sprocketID = 3 // SKU-3, reorder level 5

	mainWarehouseID  = 1 // MAIN, locations 1 (A1/R1) and 2 (A1/R2)
	northWarehouseID = 2 // NORTH, location 3 (B1)

	locA1R1 = 1
	locA1R2 = 2
	locB1   = 3
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE transfer_items, transfers, receipt_items, receipts,
		               order_items, orders, document_sequences, stock,
		               locations, warehouses, products, users
		RESTART IDENTITY CASCADE;

		INSERT INTO users (email, password_hash, display_name) VALUES
		('owner@stockmaster.test', 'not-a-real-hash', 'Test Owner'),
		('other@stockmaster.test', 'not-a-real-hash', 'Other User');

		INSERT INTO products (owner_id, sku, name, category, unit_of_measure, reorder_level, cost_price, selling_price) VALUES
		(1, 'SKU-1', 'Widget',   'Tools', 'unit', 10, 40, 100),
		(1, 'SKU-2', 'Gadget',   'Tools', 'unit', 0,  60, 150),
		(1, 'SKU-3', 'Sprocket', 'Parts', 'unit', 5,  10, 25);

		INSERT INTO warehouses (owner_id, code, name, address) VALUES
		(1, 'MAIN',  'Main Warehouse',  '12 Dock Road'),
		(1, 'NORTH', 'North Warehouse', '');

		INSERT INTO locations (warehouse_id, aisle, rack, shelf) VALUES
		(1, 'A1', 'R1', ''),
		(1, 'A1', 'R2', ''),
		(2, 'B1', '',   '');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func intPtr(v int) *int { return &v }

// receiveStock pushes quantity into one slot through the ledger, committing
// its own transaction.
func receiveStock(t *testing.T, ctx context.Context, pool *pgxpool.Pool, stockSvc core.StockService,
	warehouseID, productID int, sku string, locationID *int, qty int64) {
	t.Helper()
	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	defer tx.Rollback(ctx)

	err = stockSvc.ReceiveStockTx(ctx, tx, ownerID, warehouseID, []core.ReceiveLine{
		{ProductID: productID, SKU: sku, LocationID: locationID, Quantity: decimal.NewFromInt(qty)},
	})
	if err != nil {
		t.Fatalf("ReceiveStockTx failed: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
}

// slotQuantity reads the raw quantity of one slot; missing slots read as 0.
func slotQuantity(t *testing.T, ctx context.Context, pool *pgxpool.Pool, productID, warehouseID int, locationID *int) decimal.Decimal {
	t.Helper()
	var qty decimal.Decimal
	err := pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM stock
		WHERE product_id = $1 AND warehouse_id = $2
		  AND COALESCE(location_id, 0) = COALESCE($3::int, 0)`,
		productID, warehouseID, locationID,
	).Scan(&qty)
	if err != nil {
		t.Fatalf("Failed to read slot quantity: %v", err)
	}
	return qty
}

// warehouseQuantity sums a product's quantity across every slot of a warehouse.
func warehouseQuantity(t *testing.T, ctx context.Context, pool *pgxpool.Pool, productID, warehouseID int) decimal.Decimal {
	t.Helper()
	var qty decimal.Decimal
	err := pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(quantity), 0) FROM stock WHERE product_id = $1 AND warehouse_id = $2",
		productID, warehouseID,
	).Scan(&qty)
	if err != nil {
		t.Fatalf("Failed to read warehouse quantity: %v", err)
	}
	return qty
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestStockService_ReceiveUpsertsSlot(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	stockSvc := core.NewStockService(pool)

	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", intPtr(locA1R1), 5)
	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", intPtr(locA1R1), 7)

	var rows int
	if err := pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM stock WHERE product_id = $1 AND warehouse_id = $2",
		widgetID, mainWarehouseID,
	).Scan(&rows); err != nil {
		t.Fatalf("Failed to count stock rows: %v", err)
	}
	if rows != 1 {
		t.Errorf("Expected a single slot row after two receipts, got %d", rows)
	}

	qty := slotQuantity(t, ctx, pool, widgetID, mainWarehouseID, intPtr(locA1R1))
	if !qty.Equal(decimal.NewFromInt(12)) {
		t.Errorf("Expected quantity 12, got %s", qty)
	}
}

func TestStockService_LocationlessAndLocatedSlotsAreDistinct(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	stockSvc := core.NewStockService(pool)

	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", nil, 5)
	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", intPtr(locA1R1), 3)

	if qty := slotQuantity(t, ctx, pool, widgetID, mainWarehouseID, nil); !qty.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected 5 in the warehouse-level slot, got %s", qty)
	}
	if qty := slotQuantity(t, ctx, pool, widgetID, mainWarehouseID, intPtr(locA1R1)); !qty.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected 3 in the located slot, got %s", qty)
	}
}

func TestStockService_DeductDrainsSlotsInRowOrder(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	stockSvc := core.NewStockService(pool)

	// locA holds 5, locB holds 3. Selling 6 must drain locA and take 1 from
	// locB, leaving 0 and 2.
	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", intPtr(locA1R1), 5)
	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", intPtr(locA1R2), 3)

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	defer tx.Rollback(ctx)
	err = stockSvc.DeductStockTx(ctx, tx, ownerID, mainWarehouseID, []core.DeductLine{
		{ProductID: widgetID, SKU: "SKU-1", Quantity: decimal.NewFromInt(6)},
	})
	if err != nil {
		t.Fatalf("DeductStockTx failed: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if qty := slotQuantity(t, ctx, pool, widgetID, mainWarehouseID, intPtr(locA1R1)); !qty.IsZero() {
		t.Errorf("Expected locA drained to 0, got %s", qty)
	}
	if qty := slotQuantity(t, ctx, pool, widgetID, mainWarehouseID, intPtr(locA1R2)); !qty.Equal(decimal.NewFromInt(2)) {
		t.Errorf("Expected locB left with 2, got %s", qty)
	}
}

func TestStockService_InsufficientStockRejected(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	stockSvc := core.NewStockService(pool)

	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", intPtr(locA1R1), 5)

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	err = stockSvc.DeductStockTx(ctx, tx, ownerID, mainWarehouseID, []core.DeductLine{
		{ProductID: widgetID, SKU: "SKU-1", Quantity: decimal.NewFromInt(8)},
	})
	tx.Rollback(ctx)
	if err == nil {
		t.Fatal("Expected insufficient stock error, got nil")
	}
	var conflict *core.ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("Expected ConflictError, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "SKU-1") || !strings.Contains(err.Error(), "5.0000") {
		t.Errorf("Error should name the product and the available quantity: %v", err)
	}

	// Nothing moved.
	if qty := slotQuantity(t, ctx, pool, widgetID, mainWarehouseID, intPtr(locA1R1)); !qty.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected quantity unchanged at 5, got %s", qty)
	}
}

func TestStockService_TargetedDeductIgnoresOtherSlots(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	stockSvc := core.NewStockService(pool)

	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", intPtr(locA1R1), 5)
	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", intPtr(locA1R2), 9)

	// Asking locA for 6 must fail even though the warehouse holds 14.
	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	err = stockSvc.DeductStockTx(ctx, tx, ownerID, mainWarehouseID, []core.DeductLine{
		{ProductID: widgetID, SKU: "SKU-1", LocationID: intPtr(locA1R1), Quantity: decimal.NewFromInt(6)},
	})
	tx.Rollback(ctx)
	if err == nil {
		t.Fatal("Expected insufficient stock error for the targeted slot, got nil")
	}
}

func TestStockService_TransferMovesStock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	stockSvc := core.NewStockService(pool)

	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", intPtr(locA1R1), 10)

	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	defer tx.Rollback(ctx)
	err = stockSvc.TransferStockTx(ctx, tx, ownerID, mainWarehouseID, northWarehouseID, []core.MoveLine{
		{ProductID: widgetID, SKU: "SKU-1", ToLocationID: intPtr(locB1), Quantity: decimal.NewFromInt(4)},
	})
	if err != nil {
		t.Fatalf("TransferStockTx failed: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if qty := warehouseQuantity(t, ctx, pool, widgetID, mainWarehouseID); !qty.Equal(decimal.NewFromInt(6)) {
		t.Errorf("Expected 6 left at source, got %s", qty)
	}
	if qty := slotQuantity(t, ctx, pool, widgetID, northWarehouseID, intPtr(locB1)); !qty.Equal(decimal.NewFromInt(4)) {
		t.Errorf("Expected 4 at destination, got %s", qty)
	}
}

func TestStockService_TransferIntoForeignLocationRejected(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	stockSvc := core.NewStockService(pool)

	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", nil, 10)

	// locA1R1 belongs to MAIN, not to the destination NORTH.
	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	err = stockSvc.TransferStockTx(ctx, tx, ownerID, mainWarehouseID, northWarehouseID, []core.MoveLine{
		{ProductID: widgetID, SKU: "SKU-1", ToLocationID: intPtr(locA1R1), Quantity: decimal.NewFromInt(4)},
	})
	tx.Rollback(ctx)
	if err == nil {
		t.Fatal("Expected error for destination location outside the destination warehouse, got nil")
	}
	var validation *core.ValidationError
	if !errors.As(err, &validation) {
		t.Errorf("Expected ValidationError, got %T: %v", err, err)
	}
}

func TestStockService_ListStock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	stockSvc := core.NewStockService(pool)

	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", intPtr(locA1R1), 4) // below reorder 10
	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, gadgetID, "SKU-2", nil, 2)            // no reorder level
	receiveStock(t, ctx, pool, stockSvc, northWarehouseID, sprocketID, "SKU-3", intPtr(locB1), 50)

	rows, total, err := stockSvc.ListStock(ctx, ownerID, core.StockFilter{})
	if err != nil {
		t.Fatalf("ListStock failed: %v", err)
	}
	if total != 3 || len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got total=%d len=%d", total, len(rows))
	}
	// Ordered by SKU: the widget row comes first, joined and labelled.
	if rows[0].SKU != "SKU-1" || rows[0].WarehouseCode != "MAIN" || rows[0].LocationLabel != "A1/R1" {
		t.Errorf("Unexpected first row: %+v", rows[0])
	}
	if !rows[0].Available.Equal(decimal.NewFromInt(4)) {
		t.Errorf("Expected available 4, got %s", rows[0].Available)
	}

	_, total, err = stockSvc.ListStock(ctx, ownerID, core.StockFilter{WarehouseID: mainWarehouseID})
	if err != nil {
		t.Fatalf("ListStock by warehouse failed: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected 2 rows in MAIN, got %d", total)
	}

	rows, total, err = stockSvc.ListStock(ctx, ownerID, core.StockFilter{BelowReorder: true})
	if err != nil {
		t.Fatalf("ListStock below reorder failed: %v", err)
	}
	if total != 1 || rows[0].SKU != "SKU-1" {
		t.Errorf("Expected only SKU-1 below its reorder level, got total=%d", total)
	}

	// Another user sees nothing.
	_, total, err = stockSvc.ListStock(ctx, otherUserID, core.StockFilter{})
	if err != nil {
		t.Fatalf("ListStock for other user failed: %v", err)
	}
	if total != 0 {
		t.Errorf("Expected no rows for another user, got %d", total)
	}
}

func TestStockService_OwnershipEnforcedOnMovement(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	stockSvc := core.NewStockService(pool)

	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", nil, 10)

	// Another user cannot deduct from a warehouse they do not own; the
	// warehouse resolves as not found for them.
	tx, err := pool.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	err = stockSvc.DeductStockTx(ctx, tx, otherUserID, mainWarehouseID, []core.DeductLine{
		{ProductID: widgetID, SKU: "SKU-1", Quantity: decimal.NewFromInt(1)},
	})
	tx.Rollback(ctx)
	if err == nil {
		t.Fatal("Expected not-found error for foreign warehouse, got nil")
	}
	var notFound *core.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Expected NotFoundError, got %T: %v", err, err)
	}
}
