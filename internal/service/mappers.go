package service

import (
	"time"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/dto"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"
)

const timestampLayout = time.RFC3339

func toContractResponse(c *model.Contract, now time.Time) dto.ContractResponse {
	resp := dto.ContractResponse{
		ID:                          c.ID.String(),
		ContractNumber:              c.ContractNumber,
		Title:                       c.Title,
		Company:                     c.Company,
		FiscalName:                  c.FiscalName,
		FiscalRegistration:          c.FiscalRegistration,
		AlternateFiscalName:         c.AlternateFiscalName,
		AlternateFiscalRegistration: c.AlternateFiscalRegistration,
		ContractTerm:                c.ContractTerm,
		Notes:                       c.Notes,
		StartDate:                   c.StartDate.Format(dateLayout),
		EndDate:                     c.EndDate.Format(dateLayout),
		Value:                       c.Value,
		Currency:                    c.Currency,
		IsActive:                    c.IsActive,
		IsExpired:                   c.IsExpired(now),
		DaysUntilExpiration:         c.DaysUntilExpiration(now),
		Documents: map[string]bool{
			"contract_document": c.ContractDocument != nil,
			"fiscal_portaria":   c.FiscalPortaria != nil,
			"additive_term":     c.AdditiveTerm != nil,
			"document":          c.Document != nil,
		},
		CreatedAt: c.CreatedAt.Format(timestampLayout),
		UpdatedAt: c.UpdatedAt.Format(timestampLayout),
	}
	if c.Status != nil {
		color := c.Status.Color
		resp.Status = &dto.RefResponse{ID: c.Status.ID.String(), Name: c.Status.Name, Color: &color}
	}
	if c.ContractType != nil {
		resp.ContractType = &dto.RefResponse{ID: c.ContractType.ID.String(), Name: c.ContractType.Name}
	}
	if c.Responsible != nil {
		resp.Responsible = userRef(c.Responsible)
	}
	if c.CreatedByID != nil {
		id := c.CreatedByID.String()
		resp.CreatedByID = &id
	}
	return resp
}

func toContractSummary(c *model.Contract, now time.Time) dto.ContractSummary {
	return dto.ContractSummary{
		ID:                  c.ID.String(),
		ContractNumber:      c.ContractNumber,
		Company:             c.Company,
		EndDate:             c.EndDate.Format(dateLayout),
		DaysUntilExpiration: c.DaysUntilExpiration(now),
		Value:               c.Value,
		Currency:            c.Currency,
	}
}

func toContractSummaries(list []model.Contract, now time.Time) []dto.ContractSummary {
	out := make([]dto.ContractSummary, len(list))
	for i := range list {
		out[i] = toContractSummary(&list[i], now)
	}
	return out
}

func userRef(u *model.User) *dto.RefResponse {
	return &dto.RefResponse{ID: u.ID.String(), Name: u.Name}
}

func toHistoryItem(h *model.ContractHistory) dto.HistoryItem {
	changes := h.Changes()
	fields := make(map[string]dto.FieldChangeItem, len(changes))
	for k, v := range changes {
		fields[k] = dto.FieldChangeItem{Old: v.Old, New: v.New}
	}
	item := dto.HistoryItem{
		ID:                h.ID.String(),
		ContractID:        h.ContractID.String(),
		ChangeDate:        h.ChangeDate.UTC().Format(timestampLayout),
		ChangeDescription: h.ChangeDescription,
		ChangedFields:     fields,
	}
	if h.Contract != nil {
		item.ContractNumber = h.Contract.ContractNumber
	}
	if h.ChangedByID != nil {
		id := h.ChangedByID.String()
		item.ChangedByID = &id
	}
	if h.ChangedBy != nil {
		name := h.ChangedBy.Username
		item.ChangedBy = &name
	}
	return item
}

func toReminderResponse(r *model.ContractReminder, now time.Time) dto.ReminderResponse {
	resp := dto.ReminderResponse{
		ID:          r.ID.String(),
		ContractID:  r.ContractID.String(),
		Title:       r.Title,
		Description: r.Description,
		DueDate:     r.DueDate.Format(dateLayout),
		IsCompleted: r.IsCompleted,
		IsOverdue:   r.IsOverdue(now),
		CreatedAt:   r.CreatedAt.Format(timestampLayout),
	}
	if r.Contract != nil {
		resp.ContractNumber = r.Contract.ContractNumber
	}
	if r.CompletedDate != nil {
		d := r.CompletedDate.UTC().Format(timestampLayout)
		resp.CompletedDate = &d
	}
	if r.AssignedTo != nil {
		resp.AssignedTo = userRef(r.AssignedTo)
	}
	return resp
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID: u.ID.String(), Username: u.Username, Name: u.Name,
		Email: u.Email, Phone: u.Phone, Role: u.Role, Active: u.Active,
	}
}
