package dto

// ─── Status ──────────────────────────────────────────────────────────────────

type CreateStatusRequest struct {
	Name        string  `json:"name"        validate:"required,min=2,max=50"`
	Description *string `json:"description"`
	Color       string  `json:"color"       validate:"omitempty,hexcolor"`
	SortOrder   int     `json:"sort_order"  validate:"min=0"`
	Active      *bool   `json:"active"`
}

type UpdateStatusRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=2,max=50"`
	Description *string `json:"description"`
	Color       *string `json:"color"       validate:"omitempty,hexcolor"`
	SortOrder   *int    `json:"sort_order"  validate:"omitempty,min=0"`
	Active      *bool   `json:"active"`
}

type StatusResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Color       string  `json:"color"`
	SortOrder   int     `json:"sort_order"`
	Active      bool    `json:"active"`
}

// ─── Type ────────────────────────────────────────────────────────────────────

type CreateTypeRequest struct {
	Name        string  `json:"name"        validate:"required,min=2,max=100"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

type UpdateTypeRequest struct {
	Name        *string `json:"name"        validate:"omitempty,min=2,max=100"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

type TypeResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Active      bool    `json:"active"`
}
