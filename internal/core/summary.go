package core

// CategoryTotal is the sum of amounts for one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// TotalSummary is the sum of all expense amounts.
type TotalSummary struct {
	TotalExpense float64 `json:"total_expense"`
}
