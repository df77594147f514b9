package dto

import "github.com/shopspring/decimal"

// ContractSummary is a compact row used by dashboards and reports.
type ContractSummary struct {
	ID                  string          `json:"id"`
	ContractNumber      string          `json:"contract_number"`
	Company             string          `json:"company"`
	EndDate             string          `json:"end_date"`
	DaysUntilExpiration int             `json:"days_until_expiration"`
	Value               decimal.Decimal `json:"value"`
	Currency            string          `json:"currency"`
}

// CountItem is one bucket of a grouped count.
type CountItem struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// ValueItem is one bucket of a grouped sum.
type ValueItem struct {
	Key   string          `json:"key"`
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type DashboardResponse struct {
	TotalContracts   int64              `json:"total_contracts"`
	ActiveContracts  int64              `json:"active_contracts"`
	ExpiringSoon     int64              `json:"expiring_soon"`
	Expired          int64              `json:"expired"`
	ExpiringList     []ContractSummary  `json:"expiring_list"`
	ExpiredList      []ContractSummary  `json:"expired_list"`
	ByStatus         []CountItem        `json:"by_status"`
	ByType           []CountItem        `json:"by_type"`
	PendingReminders []ReminderResponse `json:"pending_reminders"`
	RecentActivity   []HistoryItem      `json:"recent_activity"`
	GeneratedAt      string             `json:"generated_at"`
}

type ExpirationReportResponse struct {
	Days     int               `json:"days"`
	Expiring []ContractSummary `json:"expiring"`
	Expired  []ContractSummary `json:"expired"`
	ByMonth  []CountItem       `json:"by_month"`
}

type ValueReportResponse struct {
	TotalValue decimal.Decimal   `json:"total_value"`
	ByType     []ValueItem       `json:"by_type"`
	ByYear     []ValueItem       `json:"by_year"`
	Top        []ContractSummary `json:"top"`
}
