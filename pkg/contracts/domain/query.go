package domain

// Query carries the selection for one engine pass. The zero Date means
// "latest available". An empty Contract selects the first loaded contract in
// lexical order, except for cross-period queries where it spans every
// loaded product.
type Query struct {
	Date     Date       `json:"date,omitempty" validate:"omitempty,yyyymmdd"`
	Contract string     `json:"contract,omitempty" validate:"omitempty,max=64"`
	Window   WindowKind `json:"window,omitempty" validate:"omitempty,oneof=week month quarter"`
	EndDate  Date       `json:"end_date,omitempty" validate:"omitempty,yyyymmdd"`
	Broker   string     `json:"broker,omitempty" validate:"omitempty,max=128"`
}
