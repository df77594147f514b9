package dto

type CreateReminderRequest struct {
	ContractID   string  `json:"contract_id"    validate:"required,uuid"`
	Title        string  `json:"title"          validate:"required,min=2,max=200"`
	Description  *string `json:"description"`
	DueDate      string  `json:"due_date"       validate:"required,datetime=2006-01-02"`
	AssignedToID *string `json:"assigned_to_id" validate:"omitempty,uuid"`
}

type UpdateReminderRequest struct {
	Title        *string `json:"title"          validate:"omitempty,min=2,max=200"`
	Description  *string `json:"description"`
	DueDate      *string `json:"due_date"       validate:"omitempty,datetime=2006-01-02"`
	AssignedToID *string `json:"assigned_to_id"`
}

type ReminderFilter struct {
	ContractID string `form:"contract_id"`
	State      string `form:"state"` // pending | completed | overdue | "" (all)
	AssignedTo string `form:"assigned_to"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type ReminderResponse struct {
	ID             string       `json:"id"`
	ContractID     string       `json:"contract_id"`
	ContractNumber string       `json:"contract_number,omitempty"`
	Title          string       `json:"title"`
	Description    *string      `json:"description"`
	DueDate        string       `json:"due_date"`
	IsCompleted    bool         `json:"is_completed"`
	IsOverdue      bool         `json:"is_overdue"`
	CompletedDate  *string      `json:"completed_date"`
	AssignedTo     *RefResponse `json:"assigned_to"`
	CreatedAt      string       `json:"created_at"`
}

type ReminderListResponse struct {
	Data  []ReminderResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
