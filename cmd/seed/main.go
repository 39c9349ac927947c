// seed is a one-shot tool that loads a demo dataset through the service
// layer: an account, two warehouses with locations, a small catalog, and a
// handful of documents so the dashboard and analytics pages have something
// to show.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"stockmaster/internal/core"
	"stockmaster/internal/db"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const demoEmail = "demo@stockmaster.dev"

func main() {
	_ = godotenv.Load()

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "demo-pass-123"
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	users := core.NewUserService(pool)
	products := core.NewProductService(pool)
	warehouses := core.NewWarehouseService(pool)
	stock := core.NewStockService(pool)
	orders := core.NewOrderService(pool, stock)
	receipts := core.NewReceiptService(pool, stock)
	transfers := core.NewTransferService(pool, stock)

	log.Println("Creating demo account...")
	user, err := users.Register(ctx, core.RegisterInput{
		Email:       demoEmail,
		Password:    password,
		DisplayName: "Demo User",
	})
	var conflict *core.ConflictError
	if errors.As(err, &conflict) {
		user, err = users.Authenticate(ctx, demoEmail, password)
		if err != nil {
			log.Fatalf("Demo account exists but SEED_PASSWORD does not match: %v", err)
		}
	} else if err != nil {
		log.Fatalf("Failed to create demo account: %v", err)
	}

	existing, err := products.GetProducts(ctx, user.ID, core.ProductFilter{})
	if err != nil {
		log.Fatalf("Failed to check existing catalog: %v", err)
	}
	if len(existing) > 0 {
		log.Printf("Demo account already has %d products, nothing to do.", len(existing))
		return
	}

	log.Println("Creating warehouses and locations...")
	mainWh, err := warehouses.CreateWarehouse(ctx, user.ID, core.WarehouseInput{
		Code: "MAIN", Name: "Main Distribution Center", Address: "12 Dockside Road",
	})
	if err != nil {
		log.Fatalf("Failed to create warehouse: %v", err)
	}
	north, err := warehouses.CreateWarehouse(ctx, user.ID, core.WarehouseInput{
		Code: "NORTH", Name: "North Fulfillment Hub", Address: "4 Mill Lane",
	})
	if err != nil {
		log.Fatalf("Failed to create warehouse: %v", err)
	}

	locA1R1 := mustLocation(ctx, warehouses, user.ID, mainWh.ID, "A1", "R1", "")
	locA1R2 := mustLocation(ctx, warehouses, user.ID, mainWh.ID, "A1", "R2", "")
	mustLocation(ctx, warehouses, user.ID, mainWh.ID, "B2", "R1", "S3")
	mustLocation(ctx, warehouses, user.ID, north.ID, "A1", "", "")

	log.Println("Creating catalog...")
	widget := mustProduct(ctx, products, user.ID, "WID-100", "Widget, standard", "Widgets", "pcs", "15", "4.20", "9.99")
	gadget := mustProduct(ctx, products, user.ID, "GAD-200", "Gadget, heavy duty", "Gadgets", "pcs", "10", "11.80", "24.50")
	sprocket := mustProduct(ctx, products, user.ID, "SPR-300", "Sprocket 42T", "Parts", "pcs", "25", "1.75", "4.25")
	flange := mustProduct(ctx, products, user.ID, "FLG-400", "Flange plate", "Parts", "pcs", "0", "3.10", "7.80")
	mustProduct(ctx, products, user.ID, "CBL-500", "Cable drum 50m", "Consumables", "m", "5", "18.00", "39.00")

	log.Println("Recording initial goods receipts...")
	po, err := orders.CreateOrder(ctx, user.ID, core.OrderInput{
		OrderType:    core.OrderTypePurchase,
		Counterparty: "Acme Supply Co.",
		WarehouseID:  mainWh.ID,
		Notes:        "Initial stock intake",
		Lines: []core.OrderLineInput{
			{ProductID: widget.ID, Quantity: decimal.NewFromInt(40)},
			{ProductID: gadget.ID, Quantity: decimal.NewFromInt(25)},
			{ProductID: sprocket.ID, Quantity: decimal.NewFromInt(60)},
		},
	})
	if err != nil {
		log.Fatalf("Failed to create purchase order: %v", err)
	}
	if _, err := orders.UpdateOrderStatus(ctx, user.ID, po.ID, core.OrderStatusConfirmed); err != nil {
		log.Fatalf("Failed to confirm purchase order: %v", err)
	}

	if _, err := receipts.CreateReceipt(ctx, user.ID, core.ReceiptInput{
		OrderID:     po.ID,
		WarehouseID: mainWh.ID,
		Notes:       "Delivery against " + po.OrderNumber,
		Lines: []core.ReceiptLineInput{
			{ProductID: widget.ID, LocationID: &locA1R1.ID, Quantity: decimal.NewFromInt(40)},
			{ProductID: gadget.ID, LocationID: &locA1R2.ID, Quantity: decimal.NewFromInt(25)},
			{ProductID: sprocket.ID, Quantity: decimal.NewFromInt(60)},
		},
	}); err != nil {
		log.Fatalf("Failed to create receipt: %v", err)
	}
	if _, err := orders.UpdateOrderStatus(ctx, user.ID, po.ID, core.OrderStatusCompleted); err != nil {
		log.Fatalf("Failed to complete purchase order: %v", err)
	}

	if _, err := receipts.CreateReceipt(ctx, user.ID, core.ReceiptInput{
		WarehouseID: north.ID,
		Notes:       "Unreferenced drop shipment",
		Lines: []core.ReceiptLineInput{
			{ProductID: flange.ID, Quantity: decimal.NewFromInt(30)},
		},
	}); err != nil {
		log.Fatalf("Failed to create receipt: %v", err)
	}

	log.Println("Recording sales orders...")
	so, err := orders.CreateOrder(ctx, user.ID, core.OrderInput{
		OrderType:    core.OrderTypeSales,
		Counterparty: "Brightside Retail",
		WarehouseID:  mainWh.ID,
		Lines: []core.OrderLineInput{
			{ProductID: widget.ID, Quantity: decimal.NewFromInt(5)},
			{ProductID: gadget.ID, Quantity: decimal.NewFromInt(4)},
		},
	})
	if err != nil {
		log.Fatalf("Failed to create sales order: %v", err)
	}
	if _, err := orders.UpdateOrderStatus(ctx, user.ID, so.ID, core.OrderStatusConfirmed); err != nil {
		log.Fatalf("Failed to confirm sales order: %v", err)
	}
	if _, err := orders.UpdateOrderStatus(ctx, user.ID, so.ID, core.OrderStatusCompleted); err != nil {
		log.Fatalf("Failed to complete sales order: %v", err)
	}

	if _, err := orders.CreateOrder(ctx, user.ID, core.OrderInput{
		OrderType:    core.OrderTypeSales,
		Counterparty: "Harbor Works Ltd",
		WarehouseID:  mainWh.ID,
		Lines: []core.OrderLineInput{
			{ProductID: sprocket.ID, Quantity: decimal.NewFromInt(12)},
		},
	}); err != nil {
		log.Fatalf("Failed to create sales order: %v", err)
	}

	log.Println("Recording an inter-warehouse transfer...")
	if _, err := transfers.CreateTransfer(ctx, user.ID, core.TransferInput{
		FromWarehouseID: mainWh.ID,
		ToWarehouseID:   north.ID,
		Notes:           "Rebalance sprockets north",
		Lines: []core.TransferLineInput{
			{ProductID: sprocket.ID, Quantity: decimal.NewFromInt(10)},
		},
	}); err != nil {
		log.Fatalf("Failed to create transfer: %v", err)
	}

	log.Printf("Done. Sign in as %s with the seed password.", demoEmail)
}

func mustLocation(ctx context.Context, svc core.WarehouseService, ownerID, warehouseID int, aisle, rack, shelf string) *core.Location {
	loc, err := svc.CreateLocation(ctx, ownerID, warehouseID, core.LocationInput{Aisle: aisle, Rack: rack, Shelf: shelf})
	if err != nil {
		log.Fatalf("Failed to create location: %v", err)
	}
	return loc
}

func mustProduct(ctx context.Context, svc core.ProductService, ownerID int, sku, name, category, uom, reorder, cost, sell string) *core.Product {
	product, err := svc.CreateProduct(ctx, ownerID, core.ProductInput{
		SKU:           sku,
		Name:          name,
		Category:      category,
		UnitOfMeasure: uom,
		ReorderLevel:  decimal.RequireFromString(reorder),
		CostPrice:     decimal.RequireFromString(cost),
		SellingPrice:  decimal.RequireFromString(sell),
	})
	if err != nil {
		log.Fatalf("Failed to create product %s: %v", sku, err)
	}
	return product
}
