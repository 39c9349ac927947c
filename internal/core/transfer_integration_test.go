package core_test

import (
	"context"
	"errors"
	"testing"

	"stockmaster/internal/core"

	"github.com/shopspring/decimal"
)

func TestTransferService_CreateTransferMovesStock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	stockSvc := core.NewStockService(pool)
	transferSvc := core.NewTransferService(pool, stockSvc)

	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", intPtr(locA1R1), 10)

	transfer, err := transferSvc.CreateTransfer(ctx, ownerID, core.TransferInput{
		FromWarehouseID: mainWarehouseID,
		ToWarehouseID:   northWarehouseID,
		TransferDate:    "2026-08-12",
		Lines: []core.TransferLineInput{
			{ProductID: widgetID, ToLocationID: intPtr(locB1), Quantity: decimal.NewFromInt(4)},
		},
	})
	if err != nil {
		t.Fatalf("CreateTransfer failed: %v", err)
	}

	if transfer.TransferNumber != "TR-00001" {
		t.Errorf("Expected transfer number TR-00001, got %s", transfer.TransferNumber)
	}
	if transfer.Status != core.TransferStatusCompleted {
		t.Errorf("Expected status completed, got %s", transfer.Status)
	}
	if transfer.FromWarehouseCode != "MAIN" || transfer.ToWarehouseCode != "NORTH" {
		t.Errorf("Expected MAIN → NORTH, got %s → %s", transfer.FromWarehouseCode, transfer.ToWarehouseCode)
	}
	if len(transfer.Items) != 1 || transfer.Items[0].ToLocationLabel != "B1" {
		t.Errorf("Unexpected items: %+v", transfer.Items)
	}

	if qty := warehouseQuantity(t, ctx, pool, widgetID, mainWarehouseID); !qty.Equal(decimal.NewFromInt(6)) {
		t.Errorf("Expected 6 left at source, got %s", qty)
	}
	if qty := slotQuantity(t, ctx, pool, widgetID, northWarehouseID, intPtr(locB1)); !qty.Equal(decimal.NewFromInt(4)) {
		t.Errorf("Expected 4 at destination, got %s", qty)
	}
}

func TestTransferService_SameWarehouseRejected(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	stockSvc := core.NewStockService(pool)
	transferSvc := core.NewTransferService(pool, stockSvc)

	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", nil, 10)

	_, err := transferSvc.CreateTransfer(ctx, ownerID, core.TransferInput{
		FromWarehouseID: mainWarehouseID,
		ToWarehouseID:   mainWarehouseID,
		Lines:           []core.TransferLineInput{{ProductID: widgetID, Quantity: decimal.NewFromInt(1)}},
	})
	if err == nil {
		t.Fatal("Expected rejection of same-warehouse transfer, got nil")
	}
	var validation *core.ValidationError
	if !errors.As(err, &validation) {
		t.Errorf("Expected ValidationError, got %T: %v", err, err)
	}

	// Nothing was written.
	var transfers int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM transfers").Scan(&transfers); err != nil {
		t.Fatalf("Failed to count transfers: %v", err)
	}
	if transfers != 0 {
		t.Errorf("Expected no transfer rows, got %d", transfers)
	}
	if qty := warehouseQuantity(t, ctx, pool, widgetID, mainWarehouseID); !qty.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected stock untouched at 10, got %s", qty)
	}
}

func TestTransferService_InsufficientStockRejected(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	stockSvc := core.NewStockService(pool)
	transferSvc := core.NewTransferService(pool, stockSvc)

	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", nil, 2)

	_, err := transferSvc.CreateTransfer(ctx, ownerID, core.TransferInput{
		FromWarehouseID: mainWarehouseID,
		ToWarehouseID:   northWarehouseID,
		Lines:           []core.TransferLineInput{{ProductID: widgetID, Quantity: decimal.NewFromInt(5)}},
	})
	if err == nil {
		t.Fatal("Expected insufficient stock error, got nil")
	}
	var conflict *core.ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("Expected ConflictError, got %T: %v", err, err)
	}

	// Neither side moved and no document was written.
	if qty := warehouseQuantity(t, ctx, pool, widgetID, mainWarehouseID); !qty.Equal(decimal.NewFromInt(2)) {
		t.Errorf("Expected source untouched at 2, got %s", qty)
	}
	if qty := warehouseQuantity(t, ctx, pool, widgetID, northWarehouseID); !qty.IsZero() {
		t.Errorf("Expected destination untouched at 0, got %s", qty)
	}
}

func TestTransferService_SourceLocationTargeted(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	stockSvc := core.NewStockService(pool)
	transferSvc := core.NewTransferService(pool, stockSvc)

	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", intPtr(locA1R1), 5)
	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", intPtr(locA1R2), 5)

	// Pinning the source to A1/R2 must leave A1/R1 untouched.
	_, err := transferSvc.CreateTransfer(ctx, ownerID, core.TransferInput{
		FromWarehouseID: mainWarehouseID,
		ToWarehouseID:   northWarehouseID,
		Lines: []core.TransferLineInput{
			{ProductID: widgetID, FromLocationID: intPtr(locA1R2), Quantity: decimal.NewFromInt(3)},
		},
	})
	if err != nil {
		t.Fatalf("CreateTransfer failed: %v", err)
	}

	if qty := slotQuantity(t, ctx, pool, widgetID, mainWarehouseID, intPtr(locA1R1)); !qty.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected A1/R1 untouched at 5, got %s", qty)
	}
	if qty := slotQuantity(t, ctx, pool, widgetID, mainWarehouseID, intPtr(locA1R2)); !qty.Equal(decimal.NewFromInt(2)) {
		t.Errorf("Expected A1/R2 drained to 2, got %s", qty)
	}
	if qty := slotQuantity(t, ctx, pool, widgetID, northWarehouseID, nil); !qty.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected 3 at the destination warehouse-level slot, got %s", qty)
	}
}

func TestTransferService_GetTransfersOwnership(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	stockSvc := core.NewStockService(pool)
	transferSvc := core.NewTransferService(pool, stockSvc)

	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", nil, 10)

	transfer, err := transferSvc.CreateTransfer(ctx, ownerID, core.TransferInput{
		FromWarehouseID: mainWarehouseID,
		ToWarehouseID:   northWarehouseID,
		Lines:           []core.TransferLineInput{{ProductID: widgetID, Quantity: decimal.NewFromInt(1)}},
	})
	if err != nil {
		t.Fatalf("CreateTransfer failed: %v", err)
	}

	mine, err := transferSvc.GetTransfers(ctx, ownerID)
	if err != nil {
		t.Fatalf("GetTransfers failed: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("Expected 1 transfer, got %d", len(mine))
	}

	var notFound *core.NotFoundError
	if _, err := transferSvc.GetTransfer(ctx, otherUserID, transfer.ID); !errors.As(err, &notFound) {
		t.Errorf("Expected NotFoundError for foreign transfer, got %v", err)
	}
}
