package core

import "github.com/shopspring/decimal"

// PlanDeduction walks slots in the given order and greedily takes from each
// until needed is covered: take = min(remaining, slot.Available). Slots with
// nothing available are skipped. It returns the per-row deductions and the
// shortfall; a zero shortfall means the plan fully covers needed, and a
// non-zero shortfall means the caller must reject the whole submission
// without applying any part of the plan.
func PlanDeduction(slots []StockSlot, needed decimal.Decimal) ([]Deduction, decimal.Decimal) {
	remaining := needed
	var plan []Deduction
	for _, slot := range slots {
		if remaining.IsZero() {
			break
		}
		if !slot.Available.IsPositive() {
			continue
		}
		take := slot.Available
		if remaining.LessThan(take) {
			take = remaining
		}
		plan = append(plan, Deduction{StockID: slot.StockID, Take: take})
		remaining = remaining.Sub(take)
	}
	return plan, remaining
}

// TotalAvailable sums the available quantity across slots.
func TotalAvailable(slots []StockSlot) decimal.Decimal {
	total := decimal.Zero
	for _, slot := range slots {
		total = total.Add(slot.Available)
	}
	return total
}
