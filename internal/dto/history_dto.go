package dto

// FieldChangeItem mirrors one entry of changed_fields.
type FieldChangeItem struct {
	Old *string `json:"old"`
	New *string `json:"new"`
}

type HistoryItem struct {
	ID                string                     `json:"id"`
	ContractID        string                     `json:"contract_id"`
	ContractNumber    string                     `json:"contract_number,omitempty"`
	ChangedByID       *string                    `json:"changed_by_id"`
	ChangedBy         *string                    `json:"changed_by,omitempty"`
	ChangeDate        string                     `json:"change_date"`
	ChangeDescription string                     `json:"change_description"`
	ChangedFields     map[string]FieldChangeItem `json:"changed_fields"`
}

type HistoryFilter struct {
	ContractID string `form:"contract_id"`
	UserID     string `form:"user_id"`
	DateFrom   string `form:"date_from"`
	DateTo     string `form:"date_to"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type HistoryListResponse struct {
	Data  []HistoryItem `json:"data"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}
