package model

import "github.com/shopspring/decimal"

// moneyPlaces is the precision totals are rounded to.
const moneyPlaces = 2

// LineTotal returns price x quantity for the item.
func (i *ShoppingItem) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TotalValue sums price x quantity over items, rounded to cents.
func TotalValue(items []ShoppingItem) float64 {
	return sumLines(items, func(ShoppingItem) bool { return true })
}

// CompletedValue sums price x quantity over completed items, rounded to cents.
func CompletedValue(items []ShoppingItem) float64 {
	return sumLines(items, func(i ShoppingItem) bool { return i.IsCompleted })
}

func sumLines(items []ShoppingItem, keep func(ShoppingItem) bool) float64 {
	total := decimal.Zero
	for i := range items {
		if keep(items[i]) {
			total = total.Add(items[i].LineTotal())
		}
	}
	f, _ := total.Round(moneyPlaces).Float64()
	return f
}

// CompletionPercentage returns completed/total x 100, or 0 for no items.
func CompletionPercentage(items []ShoppingItem) float64 {
	if len(items) == 0 {
		return 0
	}
	completed := 0
	for i := range items {
		if items[i].IsCompleted {
			completed++
		}
	}
	return float64(completed) / float64(len(items)) * 100
}
