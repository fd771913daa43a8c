package dto

// Settings are the per-warehouse toggles from the Ajustes view, persisted in
// Redis. Pointers on the update request distinguish "absent" from "false".
type Settings struct {
	Notifications bool   `json:"notifications"`
	LowStockAlert bool   `json:"low_stock_alert"`
	OperatorName  string `json:"operator_name"`
}

type UpdateSettingsRequest struct {
	Notifications *bool   `json:"notifications"`
	LowStockAlert *bool   `json:"low_stock_alert"`
	OperatorName  *string `json:"operator_name" validate:"omitempty,min=1,max=60"`
}
