package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Chart sizes for the analytics page.
const (
	trendMonths        = 6
	topProductsLimit   = 10
	topCategoriesLimit = 6
)

// Dashboard is the KPI snapshot shown on the landing page. The app layer
// caches it; GeneratedAt tells the client how fresh the numbers are.
type Dashboard struct {
	TotalProducts   int             `json:"total_products"`
	TotalWarehouses int             `json:"total_warehouses"`
	StockValuation  decimal.Decimal `json:"stock_valuation"` // Σ on-hand × cost price
	LowStockCount   int             `json:"low_stock_count"`
	OutOfStockCount int             `json:"out_of_stock_count"`
	PendingOrders   int             `json:"pending_orders"`
	MonthRevenue    decimal.Decimal `json:"month_revenue"` // current calendar month
	GeneratedAt     time.Time       `json:"generated_at"`
}

// SalesAnalytics bundles the chart series for the analytics page.
type SalesAnalytics struct {
	MonthlyTrend      []MonthlyPoint    `json:"monthly_trend"`
	TopProducts       []ProductSales    `json:"top_products"`
	RevenueByCategory []CategoryRevenue `json:"revenue_by_category"`
}

// AnalyticsService computes reporting aggregates for one owner. Sales series
// are aggregated in Go from the owner's sold items (cancelled orders never
// contribute); stock figures come straight from the ledger.
type AnalyticsService interface {
	GetDashboard(ctx context.Context, ownerID int) (*Dashboard, error)
	GetSalesAnalytics(ctx context.Context, ownerID int) (*SalesAnalytics, error)
}

type analyticsService struct {
	pool *pgxpool.Pool
}

// NewAnalyticsService constructs an AnalyticsService backed by PostgreSQL.
func NewAnalyticsService(pool *pgxpool.Pool) AnalyticsService {
	return &analyticsService{pool: pool}
}

func (s *analyticsService) GetDashboard(ctx context.Context, ownerID int) (*Dashboard, error) {
	d := &Dashboard{GeneratedAt: time.Now().UTC()}

	err := s.pool.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM products WHERE owner_id = $1),
		       (SELECT COUNT(*) FROM warehouses WHERE owner_id = $1),
		       (SELECT COUNT(*) FROM orders WHERE owner_id = $1 AND status = 'pending')`,
		ownerID,
	).Scan(&d.TotalProducts, &d.TotalWarehouses, &d.PendingOrders)
	if err != nil {
		return nil, fmt.Errorf("failed to query dashboard counts: %w", err)
	}

	// Valuation and threshold counts over per-product on-hand totals.
	err = s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(t.on_hand * t.cost_price), 0),
		       COUNT(*) FILTER (WHERE t.reorder_level > 0 AND t.on_hand < t.reorder_level),
		       COUNT(*) FILTER (WHERE t.on_hand <= 0)
		FROM (
		    SELECT p.cost_price, p.reorder_level, COALESCE(SUM(st.quantity), 0) AS on_hand
		    FROM products p
		    LEFT JOIN stock st ON st.product_id = p.id
		    WHERE p.owner_id = $1
		    GROUP BY p.id, p.cost_price, p.reorder_level
		) t`,
		ownerID,
	).Scan(&d.StockValuation, &d.LowStockCount, &d.OutOfStockCount)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock metrics: %w", err)
	}

	items, err := s.fetchSoldItems(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if points := MonthlyTrend(items, 1, d.GeneratedAt); len(points) == 1 {
		d.MonthRevenue = points[0].Revenue
	}

	return d, nil
}

func (s *analyticsService) GetSalesAnalytics(ctx context.Context, ownerID int) (*SalesAnalytics, error) {
	items, err := s.fetchSoldItems(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &SalesAnalytics{
		MonthlyTrend:      MonthlyTrend(items, trendMonths, time.Now().UTC()),
		TopProducts:       TopProducts(items, topProductsLimit),
		RevenueByCategory: RevenueByCategory(items, topCategoriesLimit),
	}, nil
}

// fetchSoldItems loads every non-cancelled sales order line for the owner.
func (s *analyticsService) fetchSoldItems(ctx context.Context, ownerID int) ([]SoldItem, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT o.id, o.order_date, oi.product_id, p.sku, p.name, p.category,
		       oi.quantity, oi.unit_price
		FROM order_items oi
		JOIN orders o   ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.owner_id = $1
		  AND o.order_type = 'sales'
		  AND o.status <> 'cancelled'`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sold items: %w", err)
	}
	defer rows.Close()

	var items []SoldItem
	for rows.Next() {
		var item SoldItem
		if err := rows.Scan(
			&item.OrderID, &item.OrderDate, &item.ProductID, &item.SKU,
			&item.ProductName, &item.Category, &item.Quantity, &item.UnitPrice,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sold item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
