package dto

type StatsResponse struct {
	TotalProducts int             `json:"total_products"`
	TotalUnits    int             `json:"total_units"`
	LowStockCount int             `json:"low_stock_count"`
	Categories    int             `json:"categories"`
	TopProducts   []TopProduct    `json:"top_products"`
	ByCategory    []CategoryStats `json:"by_category"`
}

type TopProduct struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

type CategoryStats struct {
	Name     string `json:"name"`
	Products int    `json:"products"`
	Units    int    `json:"units"`
}
