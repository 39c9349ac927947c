package web

import (
	"net/http"
	"strconv"

	"stockmaster/internal/app"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// stockRequestFromQuery reads the shared stock filter parameters. Page and
// limit are only meaningful for the listing; the export ignores them.
func stockRequestFromQuery(r *http.Request) app.StockBrowseRequest {
	q := r.URL.Query()
	productID, _ := strconv.Atoi(q.Get("product_id"))
	warehouseID, _ := strconv.Atoi(q.Get("warehouse_id"))
	locationID, _ := strconv.Atoi(q.Get("location_id"))
	belowReorder, _ := strconv.ParseBool(q.Get("below_reorder"))
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	return app.StockBrowseRequest{
		ProductID:    productID,
		WarehouseID:  warehouseID,
		LocationID:   locationID,
		SKU:          q.Get("sku"),
		BelowReorder: belowReorder,
		Page:         page,
		Limit:        limit,
	}
}

// listStock handles GET /api/v1/stock — one page of stock rows plus the
// total row count.
func (h *Handler) listStock(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	result, err := h.svc.BrowseStock(r.Context(), claims.UserID, stockRequestFromQuery(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// exportStock handles GET /api/v1/stock/export — every matching row as an
// XLSX workbook, same filters as the listing.
func (h *Handler) exportStock(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())

	rows, err := h.svc.ExportStock(r.Context(), claims.UserID, stockRequestFromQuery(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Stock"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"SKU", "Product", "Warehouse", "Location", "Quantity", "Reserved", "Available"}
	for i, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, title)
	}
	for i, row := range rows {
		values := []any{
			row.SKU,
			row.ProductName,
			row.WarehouseCode,
			row.LocationLabel,
			row.Quantity.InexactFloat64(),
			row.Reserved.InexactFloat64(),
			row.Available.InexactFloat64(),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="stock_export.xlsx"`)
	if err := f.Write(w); err != nil {
		logrus.WithError(err).WithField("request_id", requestIDFromContext(r.Context())).
			Error("stock export write failed")
	}
}
