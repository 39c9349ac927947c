package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProductFilter narrows GetProducts. Zero values mean "no filter".
type ProductFilter struct {
	// Search matches name or SKU, case-insensitive substring.
	Search   string
	Category string
	// LowStock keeps only products whose total on-hand quantity is below
	// their reorder level. Products without a reorder level never match.
	LowStock bool
}

// ProductService manages the catalog. All operations are scoped to the owner.
type ProductService interface {
	CreateProduct(ctx context.Context, ownerID int, input ProductInput) (*Product, error)
	GetProducts(ctx context.Context, ownerID int, filter ProductFilter) ([]Product, error)
	GetProduct(ctx context.Context, ownerID, productID int) (*Product, error)
	GetProductBySKU(ctx context.Context, ownerID int, sku string) (*Product, error)
	UpdateProduct(ctx context.Context, ownerID, productID int, input ProductInput) (*Product, error)
	// DeleteProduct removes a product and its stock rows. Products referenced
	// by any order, receipt, or transfer line cannot be deleted.
	DeleteProduct(ctx context.Context, ownerID, productID int) error
}

type productService struct {
	pool *pgxpool.Pool
}

// NewProductService constructs a ProductService backed by PostgreSQL.
func NewProductService(pool *pgxpool.Pool) ProductService {
	return &productService{pool: pool}
}

func validateProductInput(input *ProductInput) error {
	input.SKU = strings.TrimSpace(input.SKU)
	input.Name = strings.TrimSpace(input.Name)
	if input.SKU == "" {
		return validationf("sku is required")
	}
	if input.Name == "" {
		return validationf("name is required")
	}
	if input.ReorderLevel.IsNegative() {
		return validationf("reorder_level cannot be negative")
	}
	if input.CostPrice.IsNegative() || input.SellingPrice.IsNegative() {
		return validationf("prices cannot be negative")
	}
	return nil
}

func (s *productService) CreateProduct(ctx context.Context, ownerID int, input ProductInput) (*Product, error) {
	if err := validateProductInput(&input); err != nil {
		return nil, err
	}

	p := &Product{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO products (owner_id, sku, name, category, unit_of_measure,
		                      reorder_level, cost_price, selling_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, owner_id, sku, name, category, unit_of_measure,
		          reorder_level, cost_price, selling_price, created_at, updated_at`,
		ownerID, input.SKU, input.Name, input.Category, input.UnitOfMeasure,
		input.ReorderLevel, input.CostPrice, input.SellingPrice,
	).Scan(
		&p.ID, &p.OwnerID, &p.SKU, &p.Name, &p.Category, &p.UnitOfMeasure,
		&p.ReorderLevel, &p.CostPrice, &p.SellingPrice, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflictf("product with SKU %s already exists", input.SKU)
		}
		return nil, fmt.Errorf("create product %q: %w", input.SKU, err)
	}
	return p, nil
}

// productColumns is the select list shared by every product query: catalog
// fields plus the summed on-hand quantity across all stock rows.
const productColumns = `
	p.id, p.owner_id, p.sku, p.name, p.category, p.unit_of_measure,
	p.reorder_level, p.cost_price, p.selling_price,
	COALESCE(SUM(st.quantity), 0) AS on_hand,
	p.created_at, p.updated_at`

const productGroupBy = `
	GROUP BY p.id, p.owner_id, p.sku, p.name, p.category, p.unit_of_measure,
	         p.reorder_level, p.cost_price, p.selling_price, p.created_at, p.updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	p := &Product{}
	err := row.Scan(
		&p.ID, &p.OwnerID, &p.SKU, &p.Name, &p.Category, &p.UnitOfMeasure,
		&p.ReorderLevel, &p.CostPrice, &p.SellingPrice, &p.OnHand,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *productService) GetProducts(ctx context.Context, ownerID int, filter ProductFilter) ([]Product, error) {
	query := `
		SELECT` + productColumns + `
		FROM products p
		LEFT JOIN stock st ON st.product_id = p.id
		WHERE p.owner_id = $1`
	args := []any{ownerID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.sku ILIKE $%d)", len(args), len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND p.category = $%d", len(args))
	}

	query += productGroupBy
	if filter.LowStock {
		query += `
		HAVING p.reorder_level > 0 AND COALESCE(SUM(st.quantity), 0) < p.reorder_level`
	}
	query += `
		ORDER BY p.sku`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, nil
}

func (s *productService) GetProduct(ctx context.Context, ownerID, productID int) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, `
		SELECT`+productColumns+`
		FROM products p
		LEFT JOIN stock st ON st.product_id = p.id
		WHERE p.owner_id = $1 AND p.id = $2`+productGroupBy,
		ownerID, productID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("product %d not found", productID)
		}
		return nil, fmt.Errorf("get product %d: %w", productID, err)
	}
	return p, nil
}

func (s *productService) GetProductBySKU(ctx context.Context, ownerID int, sku string) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, `
		SELECT`+productColumns+`
		FROM products p
		LEFT JOIN stock st ON st.product_id = p.id
		WHERE p.owner_id = $1 AND p.sku = $2`+productGroupBy,
		ownerID, sku,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("product %s not found", sku)
		}
		return nil, fmt.Errorf("get product %q: %w", sku, err)
	}
	return p, nil
}

func (s *productService) UpdateProduct(ctx context.Context, ownerID, productID int, input ProductInput) (*Product, error) {
	if err := validateProductInput(&input); err != nil {
		return nil, err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE products
		SET sku = $1, name = $2, category = $3, unit_of_measure = $4,
		    reorder_level = $5, cost_price = $6, selling_price = $7, updated_at = NOW()
		WHERE owner_id = $8 AND id = $9`,
		input.SKU, input.Name, input.Category, input.UnitOfMeasure,
		input.ReorderLevel, input.CostPrice, input.SellingPrice,
		ownerID, productID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflictf("product with SKU %s already exists", input.SKU)
		}
		return nil, fmt.Errorf("update product %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, notFoundf("product %d not found", productID)
	}
	return s.GetProduct(ctx, ownerID, productID)
}

func (s *productService) DeleteProduct(ctx context.Context, ownerID, productID int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var sku string
	err = tx.QueryRow(ctx, `
		SELECT sku FROM products
		WHERE owner_id = $1 AND id = $2
		FOR UPDATE`,
		ownerID, productID,
	).Scan(&sku)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFoundf("product %d not found", productID)
		}
		return fmt.Errorf("lock product %d: %w", productID, err)
	}

	var referenced bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM order_items WHERE product_id = $1)
		    OR EXISTS (SELECT 1 FROM receipt_items WHERE product_id = $1)
		    OR EXISTS (SELECT 1 FROM transfer_items WHERE product_id = $1)`,
		productID,
	).Scan(&referenced)
	if err != nil {
		return fmt.Errorf("check product references: %w", err)
	}
	if referenced {
		return conflictf("product %s cannot be deleted: it is referenced by existing documents", sku)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM stock WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("delete stock for product %d: %w", productID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID); err != nil {
		return fmt.Errorf("delete product %d: %w", productID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit product deletion: %w", err)
	}
	return nil
}
