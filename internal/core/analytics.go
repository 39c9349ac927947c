package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// SoldItem is one sales order line joined with its order header and catalog
// product: the raw material for every sales aggregate. Lines of cancelled
// orders are excluded at fetch time.
type SoldItem struct {
	OrderID     int
	OrderDate   time.Time
	ProductID   int
	SKU         string
	ProductName string
	Category    string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// MonthlyPoint is one month of sales history.
type MonthlyPoint struct {
	Month   string          `json:"month"` // YYYY-MM
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// ProductSales ranks one product by units sold.
type ProductSales struct {
	ProductID int             `json:"product_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Units     decimal.Decimal `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// CategoryRevenue is the revenue attributed to one product category.
type CategoryRevenue struct {
	Category string          `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// MonthlyTrend buckets items into the last months calendar months ending at
// now's month, oldest first. Months without sales yield zero-valued points.
// Revenue is the sum of quantity × unit price; Orders counts distinct orders.
func MonthlyTrend(items []SoldItem, months int, now time.Time) []MonthlyPoint {
	if months <= 0 {
		return nil
	}

	points := make([]MonthlyPoint, months)
	index := make(map[string]int, months)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	for i := range points {
		key := first.AddDate(0, i, 0).Format("2006-01")
		points[i].Month = key
		index[key] = i
	}

	counted := make(map[string]map[int]struct{}, months)
	for _, item := range items {
		key := item.OrderDate.Format("2006-01")
		i, ok := index[key]
		if !ok {
			continue
		}
		points[i].Revenue = points[i].Revenue.Add(item.Quantity.Mul(item.UnitPrice))
		if counted[key] == nil {
			counted[key] = make(map[int]struct{})
		}
		if _, seen := counted[key][item.OrderID]; !seen {
			counted[key][item.OrderID] = struct{}{}
			points[i].Orders++
		}
	}
	return points
}

// TopProducts ranks products by units sold, descending, keeping the first n.
// Ties break on product id ascending so the ranking is stable.
func TopProducts(items []SoldItem, n int) []ProductSales {
	byProduct := make(map[int]*ProductSales)
	for _, item := range items {
		ps := byProduct[item.ProductID]
		if ps == nil {
			ps = &ProductSales{ProductID: item.ProductID, SKU: item.SKU, Name: item.ProductName}
			byProduct[item.ProductID] = ps
		}
		ps.Units = ps.Units.Add(item.Quantity)
		ps.Revenue = ps.Revenue.Add(item.Quantity.Mul(item.UnitPrice))
	}

	ranked := make([]ProductSales, 0, len(byProduct))
	for _, ps := range byProduct {
		ranked = append(ranked, *ps)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].Units.Equal(ranked[j].Units) {
			return ranked[i].Units.GreaterThan(ranked[j].Units)
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// RevenueByCategory sums revenue per product category, descending, keeping
// the first n. Items without a category fall under "Uncategorized".
func RevenueByCategory(items []SoldItem, n int) []CategoryRevenue {
	byCategory := make(map[string]decimal.Decimal)
	for _, item := range items {
		cat := item.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		byCategory[cat] = byCategory[cat].Add(item.Quantity.Mul(item.UnitPrice))
	}

	ranked := make([]CategoryRevenue, 0, len(byCategory))
	for cat, revenue := range byCategory {
		ranked = append(ranked, CategoryRevenue{Category: cat, Revenue: revenue})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].Revenue.Equal(ranked[j].Revenue) {
			return ranked[i].Revenue.GreaterThan(ranked[j].Revenue)
		}
		return ranked[i].Category < ranked[j].Category
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
