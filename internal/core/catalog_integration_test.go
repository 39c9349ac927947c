package core_test

import (
	"context"
	"errors"
	"testing"

	"stockmaster/internal/core"

	"github.com/shopspring/decimal"
)

func TestProductService_CreateAndFetch(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	productSvc := core.NewProductService(pool)

	created, err := productSvc.CreateProduct(ctx, ownerID, core.ProductInput{
		SKU:           "SKU-9",
		Name:          "Flange",
		Category:      "Parts",
		UnitOfMeasure: "unit",
		ReorderLevel:  decimal.NewFromInt(2),
		CostPrice:     decimal.NewFromInt(7),
		SellingPrice:  decimal.NewFromInt(19),
	})
	if err != nil {
		t.Fatalf("CreateProduct failed: %v", err)
	}
	if created.ID == 0 || created.SKU != "SKU-9" {
		t.Errorf("Unexpected created product: %+v", created)
	}
	if !created.OnHand.IsZero() {
		t.Errorf("Expected on-hand 0 for a new product, got %s", created.OnHand)
	}

	byID, err := productSvc.GetProduct(ctx, ownerID, created.ID)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	bySKU, err := productSvc.GetProductBySKU(ctx, ownerID, "SKU-9")
	if err != nil {
		t.Fatalf("GetProductBySKU failed: %v", err)
	}
	if byID.ID != bySKU.ID || bySKU.Name != "Flange" {
		t.Errorf("ID and SKU lookups disagree: %+v vs %+v", byID, bySKU)
	}

	var notFound *core.NotFoundError
	if _, err := productSvc.GetProduct(ctx, otherUserID, created.ID); !errors.As(err, &notFound) {
		t.Errorf("Expected NotFoundError for foreign product, got %v", err)
	}
}

func TestProductService_DuplicateSKUPerOwner(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	productSvc := core.NewProductService(pool)

	// SKU-1 is already seeded for the owner.
	_, err := productSvc.CreateProduct(ctx, ownerID, core.ProductInput{SKU: "SKU-1", Name: "Duplicate"})
	if err == nil {
		t.Fatal("Expected duplicate SKU conflict, got nil")
	}
	var conflict *core.ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("Expected ConflictError, got %T: %v", err, err)
	}

	// SKUs are unique per owner, not globally.
	if _, err := productSvc.CreateProduct(ctx, otherUserID, core.ProductInput{SKU: "SKU-1", Name: "Their Widget"}); err != nil {
		t.Errorf("Expected another user to reuse the SKU, got %v", err)
	}
}

func TestProductService_GetProductsFilters(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	productSvc := core.NewProductService(pool)
	stockSvc := core.NewStockService(pool)

	all, err := productSvc.GetProducts(ctx, ownerID, core.ProductFilter{})
	if err != nil {
		t.Fatalf("GetProducts failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected the 3 seeded products, got %d", len(all))
	}

	tools, err := productSvc.GetProducts(ctx, ownerID, core.ProductFilter{Category: "Tools"})
	if err != nil {
		t.Fatalf("GetProducts by category failed: %v", err)
	}
	if len(tools) != 2 {
		t.Errorf("Expected 2 Tools products, got %d", len(tools))
	}

	matches, err := productSvc.GetProducts(ctx, ownerID, core.ProductFilter{Search: "wid"})
	if err != nil {
		t.Fatalf("GetProducts by search failed: %v", err)
	}
	if len(matches) != 1 || matches[0].Name != "Widget" {
		t.Errorf("Expected the Widget for search %q, got %d rows", "wid", len(matches))
	}

	// With empty shelves both the widget (reorder 10) and the sprocket
	// (reorder 5) sit below their levels; the gadget has no level at all.
	low, err := productSvc.GetProducts(ctx, ownerID, core.ProductFilter{LowStock: true})
	if err != nil {
		t.Fatalf("GetProducts low stock failed: %v", err)
	}
	if len(low) != 2 {
		t.Fatalf("Expected 2 low-stock products, got %d", len(low))
	}

	// Stocking sprockets past their level leaves only the widget short.
	receiveStock(t, ctx, pool, stockSvc, northWarehouseID, sprocketID, "SKU-3", nil, 50)
	low, err = productSvc.GetProducts(ctx, ownerID, core.ProductFilter{LowStock: true})
	if err != nil {
		t.Fatalf("GetProducts low stock failed: %v", err)
	}
	if len(low) != 1 || low[0].SKU != "SKU-1" {
		t.Errorf("Expected only SKU-1 low after restocking sprockets, got %d rows", len(low))
	}

	// Stock exactly at the reorder level does not count as low.
	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", nil, 10)
	low, err = productSvc.GetProducts(ctx, ownerID, core.ProductFilter{LowStock: true})
	if err != nil {
		t.Fatalf("GetProducts low stock failed: %v", err)
	}
	if len(low) != 0 {
		t.Errorf("Expected no low-stock products at exactly the reorder level, got %d", len(low))
	}
}

func TestProductService_OnHandSumsAcrossWarehouses(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	productSvc := core.NewProductService(pool)
	stockSvc := core.NewStockService(pool)

	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", intPtr(locA1R1), 4)
	receiveStock(t, ctx, pool, stockSvc, northWarehouseID, widgetID, "SKU-1", intPtr(locB1), 6)

	product, err := productSvc.GetProduct(ctx, ownerID, widgetID)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}
	if !product.OnHand.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected on-hand 10 across warehouses, got %s", product.OnHand)
	}
}

func TestProductService_UpdateProduct(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	productSvc := core.NewProductService(pool)

	updated, err := productSvc.UpdateProduct(ctx, ownerID, widgetID, core.ProductInput{
		SKU:          "SKU-1",
		Name:         "Widget Mk II",
		Category:     "Tools",
		SellingPrice: decimal.NewFromInt(120),
	})
	if err != nil {
		t.Fatalf("UpdateProduct failed: %v", err)
	}
	if updated.Name != "Widget Mk II" || !updated.SellingPrice.Equal(decimal.NewFromInt(120)) {
		t.Errorf("Update not reflected: %+v", updated)
	}

	var notFound *core.NotFoundError
	if _, err := productSvc.UpdateProduct(ctx, otherUserID, widgetID, core.ProductInput{SKU: "X", Name: "X"}); !errors.As(err, &notFound) {
		t.Errorf("Expected NotFoundError updating a foreign product, got %v", err)
	}
}

func TestProductService_DeleteRemovesProductAndStock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	productSvc := core.NewProductService(pool)
	stockSvc := core.NewStockService(pool)

	// Stock rows alone do not block deletion; they are removed with the
	// product.
	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, gadgetID, "SKU-2", nil, 9)

	if err := productSvc.DeleteProduct(ctx, ownerID, gadgetID); err != nil {
		t.Fatalf("DeleteProduct failed: %v", err)
	}

	var notFound *core.NotFoundError
	if _, err := productSvc.GetProduct(ctx, ownerID, gadgetID); !errors.As(err, &notFound) {
		t.Errorf("Expected product gone, got %v", err)
	}
	var stockRows int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM stock WHERE product_id = $1", gadgetID).Scan(&stockRows); err != nil {
		t.Fatalf("Failed to count stock rows: %v", err)
	}
	if stockRows != 0 {
		t.Errorf("Expected stock rows removed with the product, got %d", stockRows)
	}
}

func TestProductService_DeleteBlockedByDocuments(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	productSvc := core.NewProductService(pool)
	stockSvc := core.NewStockService(pool)
	receiptSvc := core.NewReceiptService(pool, stockSvc)

	if _, err := receiptSvc.CreateReceipt(ctx, ownerID, core.ReceiptInput{
		WarehouseID: mainWarehouseID,
		Lines:       []core.ReceiptLineInput{{ProductID: widgetID, Quantity: decimal.NewFromInt(3)}},
	}); err != nil {
		t.Fatalf("CreateReceipt failed: %v", err)
	}

	err := productSvc.DeleteProduct(ctx, ownerID, widgetID)
	if err == nil {
		t.Fatal("Expected delete blocked by the receipt line, got nil")
	}
	var conflict *core.ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("Expected ConflictError, got %T: %v", err, err)
	}

	// The product survived.
	if _, err := productSvc.GetProduct(ctx, ownerID, widgetID); err != nil {
		t.Errorf("Expected product still present, got %v", err)
	}
}

func TestWarehouseService_CreateAndDuplicateCode(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	warehouseSvc := core.NewWarehouseService(pool)

	created, err := warehouseSvc.CreateWarehouse(ctx, ownerID, core.WarehouseInput{Code: "SOUTH", Name: "South Warehouse"})
	if err != nil {
		t.Fatalf("CreateWarehouse failed: %v", err)
	}
	if created.Code != "SOUTH" {
		t.Errorf("Unexpected warehouse: %+v", created)
	}

	_, err = warehouseSvc.CreateWarehouse(ctx, ownerID, core.WarehouseInput{Code: "MAIN", Name: "Clone"})
	if err == nil {
		t.Fatal("Expected duplicate code conflict, got nil")
	}
	var conflict *core.ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("Expected ConflictError, got %T: %v", err, err)
	}

	// Codes are scoped per owner.
	if _, err := warehouseSvc.CreateWarehouse(ctx, otherUserID, core.WarehouseInput{Code: "MAIN", Name: "Their Main"}); err != nil {
		t.Errorf("Expected another user to reuse the code, got %v", err)
	}
}

func TestWarehouseService_DeleteBlockedWhileReferenced(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	warehouseSvc := core.NewWarehouseService(pool)
	stockSvc := core.NewStockService(pool)

	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", intPtr(locA1R1), 5)

	err := warehouseSvc.DeleteWarehouse(ctx, ownerID, mainWarehouseID)
	if err == nil {
		t.Fatal("Expected delete blocked while stock remains, got nil")
	}
	var conflict *core.ConflictError
	if !errors.As(err, &conflict) {
		t.Errorf("Expected ConflictError, got %T: %v", err, err)
	}

	// NORTH is empty: deleting it removes the warehouse and its locations.
	if err := warehouseSvc.DeleteWarehouse(ctx, ownerID, northWarehouseID); err != nil {
		t.Fatalf("DeleteWarehouse failed: %v", err)
	}
	var notFound *core.NotFoundError
	if _, err := warehouseSvc.GetWarehouse(ctx, ownerID, northWarehouseID); !errors.As(err, &notFound) {
		t.Errorf("Expected warehouse gone, got %v", err)
	}
	var locs int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM locations WHERE warehouse_id = $1", northWarehouseID).Scan(&locs); err != nil {
		t.Fatalf("Failed to count locations: %v", err)
	}
	if locs != 0 {
		t.Errorf("Expected locations removed with their warehouse, got %d", locs)
	}
}

func TestWarehouseService_Locations(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	warehouseSvc := core.NewWarehouseService(pool)
	stockSvc := core.NewStockService(pool)

	created, err := warehouseSvc.CreateLocation(ctx, ownerID, mainWarehouseID, core.LocationInput{Aisle: "A2", Rack: "R1", Shelf: "S3"})
	if err != nil {
		t.Fatalf("CreateLocation failed: %v", err)
	}
	if created.Label() != "A2/R1/S3" {
		t.Errorf("Expected label A2/R1/S3, got %q", created.Label())
	}

	// A location needs at least one descriptor.
	var validation *core.ValidationError
	if _, err := warehouseSvc.CreateLocation(ctx, ownerID, mainWarehouseID, core.LocationInput{}); !errors.As(err, &validation) {
		t.Errorf("Expected ValidationError for empty location, got %v", err)
	}

	locations, err := warehouseSvc.GetLocations(ctx, ownerID, mainWarehouseID)
	if err != nil {
		t.Fatalf("GetLocations failed: %v", err)
	}
	if len(locations) != 3 {
		t.Errorf("Expected the 2 seeded locations plus the new one, got %d", len(locations))
	}

	// Occupied locations cannot be removed.
	receiveStock(t, ctx, pool, stockSvc, mainWarehouseID, widgetID, "SKU-1", intPtr(locA1R1), 1)
	var conflict *core.ConflictError
	if err := warehouseSvc.DeleteLocation(ctx, ownerID, mainWarehouseID, locA1R1); !errors.As(err, &conflict) {
		t.Errorf("Expected ConflictError deleting an occupied location, got %v", err)
	}

	if err := warehouseSvc.DeleteLocation(ctx, ownerID, mainWarehouseID, created.ID); err != nil {
		t.Fatalf("DeleteLocation failed: %v", err)
	}

	// Locations resolve through their warehouse's owner.
	var notFound *core.NotFoundError
	if _, err := warehouseSvc.GetLocations(ctx, otherUserID, mainWarehouseID); !errors.As(err, &notFound) {
		t.Errorf("Expected NotFoundError listing foreign locations, got %v", err)
	}
}
