package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WarehouseService manages warehouses and the locations inside them.
type WarehouseService interface {
	CreateWarehouse(ctx context.Context, ownerID int, input WarehouseInput) (*Warehouse, error)
	GetWarehouses(ctx context.Context, ownerID int) ([]Warehouse, error)
	GetWarehouse(ctx context.Context, ownerID, warehouseID int) (*Warehouse, error)
	UpdateWarehouse(ctx context.Context, ownerID, warehouseID int, input WarehouseInput) (*Warehouse, error)
	// DeleteWarehouse removes an empty warehouse. Warehouses holding stock or
	// referenced by orders, receipts, or transfers cannot be deleted.
	DeleteWarehouse(ctx context.Context, ownerID, warehouseID int) error

	CreateLocation(ctx context.Context, ownerID, warehouseID int, input LocationInput) (*Location, error)
	GetLocations(ctx context.Context, ownerID, warehouseID int) ([]Location, error)
	DeleteLocation(ctx context.Context, ownerID, warehouseID, locationID int) error
}

type warehouseService struct {
	pool *pgxpool.Pool
}

// NewWarehouseService constructs a WarehouseService backed by PostgreSQL.
func NewWarehouseService(pool *pgxpool.Pool) WarehouseService {
	return &warehouseService{pool: pool}
}

// getWarehouse resolves a warehouse scoped to its owner. Warehouses belonging
// to other users are reported as not found, never as forbidden.
func getWarehouse(ctx context.Context, q pgxQuerier, ownerID, warehouseID int) (*Warehouse, error) {
	w := &Warehouse{}
	err := q.QueryRow(ctx, `
		SELECT id, owner_id, code, name, address, created_at
		FROM warehouses
		WHERE owner_id = $1 AND id = $2`,
		ownerID, warehouseID,
	).Scan(&w.ID, &w.OwnerID, &w.Code, &w.Name, &w.Address, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("warehouse %d not found", warehouseID)
		}
		return nil, fmt.Errorf("get warehouse %d: %w", warehouseID, err)
	}
	return w, nil
}

func (s *warehouseService) CreateWarehouse(ctx context.Context, ownerID int, input WarehouseInput) (*Warehouse, error) {
	input.Code = strings.TrimSpace(input.Code)
	input.Name = strings.TrimSpace(input.Name)
	if input.Code == "" {
		return nil, validationf("code is required")
	}
	if input.Name == "" {
		return nil, validationf("name is required")
	}

	w := &Warehouse{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO warehouses (owner_id, code, name, address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, owner_id, code, name, address, created_at`,
		ownerID, input.Code, input.Name, input.Address,
	).Scan(&w.ID, &w.OwnerID, &w.Code, &w.Name, &w.Address, &w.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflictf("warehouse with code %s already exists", input.Code)
		}
		return nil, fmt.Errorf("create warehouse %q: %w", input.Code, err)
	}
	return w, nil
}

func (s *warehouseService) GetWarehouses(ctx context.Context, ownerID int) ([]Warehouse, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, owner_id, code, name, address, created_at
		FROM warehouses
		WHERE owner_id = $1
		ORDER BY code`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("get warehouses: %w", err)
	}
	defer rows.Close()

	var warehouses []Warehouse
	for rows.Next() {
		var w Warehouse
		if err := rows.Scan(&w.ID, &w.OwnerID, &w.Code, &w.Name, &w.Address, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, nil
}

func (s *warehouseService) GetWarehouse(ctx context.Context, ownerID, warehouseID int) (*Warehouse, error) {
	return getWarehouse(ctx, s.pool, ownerID, warehouseID)
}

func (s *warehouseService) UpdateWarehouse(ctx context.Context, ownerID, warehouseID int, input WarehouseInput) (*Warehouse, error) {
	input.Code = strings.TrimSpace(input.Code)
	input.Name = strings.TrimSpace(input.Name)
	if input.Code == "" {
		return nil, validationf("code is required")
	}
	if input.Name == "" {
		return nil, validationf("name is required")
	}

	w := &Warehouse{}
	err := s.pool.QueryRow(ctx, `
		UPDATE warehouses
		SET code = $1, name = $2, address = $3
		WHERE owner_id = $4 AND id = $5
		RETURNING id, owner_id, code, name, address, created_at`,
		input.Code, input.Name, input.Address, ownerID, warehouseID,
	).Scan(&w.ID, &w.OwnerID, &w.Code, &w.Name, &w.Address, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundf("warehouse %d not found", warehouseID)
		}
		if isUniqueViolation(err) {
			return nil, conflictf("warehouse with code %s already exists", input.Code)
		}
		return nil, fmt.Errorf("update warehouse %d: %w", warehouseID, err)
	}
	return w, nil
}

func (s *warehouseService) DeleteWarehouse(ctx context.Context, ownerID, warehouseID int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	w, err := getWarehouse(ctx, tx, ownerID, warehouseID)
	if err != nil {
		return err
	}

	var referenced bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM stock WHERE warehouse_id = $1)
		    OR EXISTS (SELECT 1 FROM orders WHERE warehouse_id = $1)
		    OR EXISTS (SELECT 1 FROM receipts WHERE warehouse_id = $1)
		    OR EXISTS (SELECT 1 FROM transfers WHERE from_warehouse_id = $1 OR to_warehouse_id = $1)`,
		warehouseID,
	).Scan(&referenced)
	if err != nil {
		return fmt.Errorf("check warehouse references: %w", err)
	}
	if referenced {
		return conflictf("warehouse %s cannot be deleted: it holds stock or is referenced by existing documents", w.Code)
	}

	// Locations cascade with the warehouse row.
	if _, err := tx.Exec(ctx, `DELETE FROM warehouses WHERE id = $1`, warehouseID); err != nil {
		return fmt.Errorf("delete warehouse %d: %w", warehouseID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit warehouse deletion: %w", err)
	}
	return nil
}

func (s *warehouseService) CreateLocation(ctx context.Context, ownerID, warehouseID int, input LocationInput) (*Location, error) {
	input.Aisle = strings.TrimSpace(input.Aisle)
	input.Rack = strings.TrimSpace(input.Rack)
	input.Shelf = strings.TrimSpace(input.Shelf)
	if input.Aisle == "" && input.Rack == "" && input.Shelf == "" {
		return nil, validationf("at least one of aisle, rack, shelf is required")
	}

	if _, err := getWarehouse(ctx, s.pool, ownerID, warehouseID); err != nil {
		return nil, err
	}

	l := &Location{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO locations (warehouse_id, aisle, rack, shelf)
		VALUES ($1, $2, $3, $4)
		RETURNING id, warehouse_id, aisle, rack, shelf, created_at`,
		warehouseID, input.Aisle, input.Rack, input.Shelf,
	).Scan(&l.ID, &l.WarehouseID, &l.Aisle, &l.Rack, &l.Shelf, &l.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	return l, nil
}

func (s *warehouseService) GetLocations(ctx context.Context, ownerID, warehouseID int) ([]Location, error) {
	if _, err := getWarehouse(ctx, s.pool, ownerID, warehouseID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, warehouse_id, aisle, rack, shelf, created_at
		FROM locations
		WHERE warehouse_id = $1
		ORDER BY aisle, rack, shelf, id`,
		warehouseID,
	)
	if err != nil {
		return nil, fmt.Errorf("get locations: %w", err)
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.WarehouseID, &l.Aisle, &l.Rack, &l.Shelf, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, l)
	}
	return locations, nil
}

func (s *warehouseService) DeleteLocation(ctx context.Context, ownerID, warehouseID, locationID int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := getWarehouse(ctx, tx, ownerID, warehouseID); err != nil {
		return err
	}

	var exists bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM locations WHERE id = $1 AND warehouse_id = $2)`,
		locationID, warehouseID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check location %d: %w", locationID, err)
	}
	if !exists {
		return notFoundf("location %d not found", locationID)
	}

	var referenced bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM stock WHERE location_id = $1)
		    OR EXISTS (SELECT 1 FROM receipt_items WHERE location_id = $1)
		    OR EXISTS (SELECT 1 FROM transfer_items WHERE from_location_id = $1 OR to_location_id = $1)`,
		locationID,
	).Scan(&referenced)
	if err != nil {
		return fmt.Errorf("check location references: %w", err)
	}
	if referenced {
		return conflictf("location %d cannot be deleted: it holds stock or is referenced by existing documents", locationID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM locations WHERE id = $1`, locationID); err != nil {
		return fmt.Errorf("delete location %d: %w", locationID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit location deletion: %w", err)
	}
	return nil
}
