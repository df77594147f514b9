package dto

type AddPartyRequest struct {
	UserID    string  `json:"user_id"    validate:"required,uuid"`
	Role      string  `json:"role"       validate:"required,oneof=client supplier partner other"`
	IsPrimary bool    `json:"is_primary"`
	Notes     *string `json:"notes"`
}

type UpdatePartyRequest struct {
	Role      *string `json:"role"       validate:"omitempty,oneof=client supplier partner other"`
	IsPrimary *bool   `json:"is_primary"`
	Notes     *string `json:"notes"`
}

type PartyResponse struct {
	ID         string      `json:"id"`
	ContractID string      `json:"contract_id"`
	User       RefResponse `json:"user"`
	Role       string      `json:"role"`
	IsPrimary  bool        `json:"is_primary"`
	Notes      *string     `json:"notes"`
	CreatedAt  string      `json:"created_at"`
}
