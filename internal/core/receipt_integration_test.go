package core_test

import (
	"context"
	"errors"
	"testing"

	"stockmaster/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func setupReceiptTest(t *testing.T) (*pgxpool.Pool, core.OrderService, core.ReceiptService, context.Context) {
	t.Helper()
	pool := setupTestDB(t)
	stockSvc := core.NewStockService(pool)
	return pool, core.NewOrderService(pool, stockSvc), core.NewReceiptService(pool, stockSvc), context.Background()
}

func TestReceiptService_CreateReceiptAddsStock(t *testing.T) {
	pool, _, receiptSvc, ctx := setupReceiptTest(t)
	defer pool.Close()

	receipt, err := receiptSvc.CreateReceipt(ctx, ownerID, core.ReceiptInput{
		WarehouseID: mainWarehouseID,
		ReceiptDate: "2026-08-10",
		Notes:       "initial delivery",
		Lines: []core.ReceiptLineInput{
			{ProductID: widgetID, LocationID: intPtr(locA1R1), Quantity: decimal.NewFromInt(12)},
			{ProductID: gadgetID, Quantity: decimal.NewFromInt(5)},
		},
	})
	if err != nil {
		t.Fatalf("CreateReceipt failed: %v", err)
	}

	if receipt.ReceiptNumber != "GR-00001" {
		t.Errorf("Expected receipt number GR-00001, got %s", receipt.ReceiptNumber)
	}
	if receipt.WarehouseCode != "MAIN" {
		t.Errorf("Expected warehouse code MAIN, got %s", receipt.WarehouseCode)
	}
	if len(receipt.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(receipt.Items))
	}
	if receipt.Items[0].LocationLabel != "A1/R1" {
		t.Errorf("Expected location label A1/R1, got %q", receipt.Items[0].LocationLabel)
	}
	if receipt.Items[1].LocationID != nil {
		t.Errorf("Expected warehouse-level second line, got location %v", receipt.Items[1].LocationID)
	}

	if qty := slotQuantity(t, ctx, pool, widgetID, mainWarehouseID, intPtr(locA1R1)); !qty.Equal(decimal.NewFromInt(12)) {
		t.Errorf("Expected 12 widgets in A1/R1, got %s", qty)
	}
	if qty := slotQuantity(t, ctx, pool, gadgetID, mainWarehouseID, nil); !qty.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected 5 gadgets in the warehouse-level slot, got %s", qty)
	}
}

func TestReceiptService_ReceiptAgainstPurchaseOrder(t *testing.T) {
	pool, orderSvc, receiptSvc, ctx := setupReceiptTest(t)
	defer pool.Close()

	po, err := orderSvc.CreateOrder(ctx, ownerID, core.OrderInput{
		OrderType:    core.OrderTypePurchase,
		Counterparty: "Acme Supply Co",
		Lines:        []core.OrderLineInput{{ProductID: widgetID, Quantity: decimal.NewFromInt(10)}},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	receipt, err := receiptSvc.CreateReceipt(ctx, ownerID, core.ReceiptInput{
		OrderID:     po.ID,
		WarehouseID: mainWarehouseID,
		Lines:       []core.ReceiptLineInput{{ProductID: widgetID, Quantity: decimal.NewFromInt(10)}},
	})
	if err != nil {
		t.Fatalf("CreateReceipt failed: %v", err)
	}

	if receipt.OrderID == nil || *receipt.OrderID != po.ID {
		t.Errorf("Expected receipt linked to order %d, got %v", po.ID, receipt.OrderID)
	}
	if receipt.OrderNumber != po.OrderNumber {
		t.Errorf("Expected joined order number %s, got %s", po.OrderNumber, receipt.OrderNumber)
	}
	if qty := warehouseQuantity(t, ctx, pool, widgetID, mainWarehouseID); !qty.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected 10 received, got %s", qty)
	}
}

func TestReceiptService_ParentOrderRules(t *testing.T) {
	pool, orderSvc, receiptSvc, ctx := setupReceiptTest(t)
	defer pool.Close()

	stockSvc := core.NewStockService(pool)
	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", nil, 20)

	sales, err := orderSvc.CreateOrder(ctx, ownerID, core.OrderInput{
		OrderType:    core.OrderTypeSales,
		Counterparty: "Beta Retail",
		WarehouseID:  mainWarehouseID,
		Lines:        []core.OrderLineInput{{ProductID: widgetID, Quantity: decimal.NewFromInt(1)}},
	})
	if err != nil {
		t.Fatalf("CreateOrder (sales) failed: %v", err)
	}
	cancelled, err := orderSvc.CreateOrder(ctx, ownerID, core.OrderInput{
		OrderType:    core.OrderTypePurchase,
		Counterparty: "Acme Supply Co",
		Lines:        []core.OrderLineInput{{ProductID: widgetID, Quantity: decimal.NewFromInt(5)}},
	})
	if err != nil {
		t.Fatalf("CreateOrder (purchase) failed: %v", err)
	}
	if _, err := orderSvc.UpdateOrderStatus(ctx, ownerID, cancelled.ID, core.OrderStatusCancelled); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	line := []core.ReceiptLineInput{{ProductID: widgetID, Quantity: decimal.NewFromInt(1)}}

	// Receiving against a sales order is a validation failure.
	_, err = receiptSvc.CreateReceipt(ctx, ownerID, core.ReceiptInput{
		OrderID: sales.ID, WarehouseID: mainWarehouseID, Lines: line,
	})
	var validation *core.ValidationError
	if !errors.As(err, &validation) {
		t.Errorf("Expected ValidationError for sales parent, got %v", err)
	}

	// Receiving against a cancelled purchase order is a conflict.
	_, err = receiptSvc.CreateReceipt(ctx, ownerID, core.ReceiptInput{
		OrderID: cancelled.ID, WarehouseID: mainWarehouseID, Lines: line,
	})
	var conflict *core.ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("Expected ConflictError for cancelled parent, got %v", err)
	}

	// A parent owned by someone else reads as missing.
	_, err = receiptSvc.CreateReceipt(ctx, otherUserID, core.ReceiptInput{
		OrderID: cancelled.ID, WarehouseID: mainWarehouseID, Lines: line,
	})
	var notFound *core.NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("Expected NotFoundError for foreign parent, got %v", err)
	}
}

func TestReceiptService_LocationMustBelongToWarehouse(t *testing.T) {
	pool, _, receiptSvc, ctx := setupReceiptTest(t)
	defer pool.Close()

	// locB1 sits in NORTH; receiving into MAIN with it must fail, leaving
	// no receipt and no stock behind.
	_, err := receiptSvc.CreateReceipt(ctx, ownerID, core.ReceiptInput{
		WarehouseID: mainWarehouseID,
		Lines:       []core.ReceiptLineInput{{ProductID: widgetID, LocationID: intPtr(locB1), Quantity: decimal.NewFromInt(3)}},
	})
	if err == nil {
		t.Fatal("Expected error for location outside the warehouse, got nil")
	}
	var validation *core.ValidationError
	if !errors.As(err, &validation) {
		t.Errorf("Expected ValidationError, got %T: %v", err, err)
	}

	var receipts, stockRows int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM receipts").Scan(&receipts); err != nil {
		t.Fatalf("Failed to count receipts: %v", err)
	}
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM stock").Scan(&stockRows); err != nil {
		t.Fatalf("Failed to count stock rows: %v", err)
	}
	if receipts != 0 || stockRows != 0 {
		t.Errorf("Expected full rollback, got %d receipts and %d stock rows", receipts, stockRows)
	}
}

func TestReceiptService_GetReceipts(t *testing.T) {
	pool, _, receiptSvc, ctx := setupReceiptTest(t)
	defer pool.Close()

	for i := 0; i < 2; i++ {
		if _, err := receiptSvc.CreateReceipt(ctx, ownerID, core.ReceiptInput{
			WarehouseID: mainWarehouseID,
			Lines:       []core.ReceiptLineInput{{ProductID: widgetID, Quantity: decimal.NewFromInt(1)}},
		}); err != nil {
			t.Fatalf("CreateReceipt failed: %v", err)
		}
	}

	receipts, err := receiptSvc.GetReceipts(ctx, ownerID)
	if err != nil {
		t.Fatalf("GetReceipts failed: %v", err)
	}
	if len(receipts) != 2 {
		t.Fatalf("Expected 2 receipts, got %d", len(receipts))
	}
	// Newest first.
	if receipts[0].ReceiptNumber != "GR-00002" {
		t.Errorf("Expected GR-00002 first, got %s", receipts[0].ReceiptNumber)
	}

	foreign, err := receiptSvc.GetReceipts(ctx, otherUserID)
	if err != nil {
		t.Fatalf("GetReceipts for other user failed: %v", err)
	}
	if len(foreign) != 0 {
		t.Errorf("Expected no receipts for another user, got %d", len(foreign))
	}
}
