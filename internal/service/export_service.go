package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/clock"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/dto"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/infra"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"
	"github.com/PauloRoberto1224/gestaocontratopy/internal/repository"

	"github.com/google/uuid"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"

	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypePDF  = "application/pdf"
)

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ExportService interface {
	// Contracts renders every contract matching filter, ordered by end date.
	Contracts(ctx context.Context, filter dto.ContractFilter, format string) (*ExportFile, error)
	ContractPDF(ctx context.Context, id uuid.UUID) (*ExportFile, error)
}

var exportHeaders = []string{
	"Number", "Company", "Fiscal name", "Fiscal registration", "Term", "Type", "Status",
	"Responsible", "Start date", "End date", "Days remaining", "Value", "Currency", "Active", "Notes",
}

type exportService struct {
	contracts repository.ContractRepository
	history   repository.HistoryRepository
	clock     clock.Clock
}

func NewExportService(contracts repository.ContractRepository, history repository.HistoryRepository, clk clock.Clock) ExportService {
	if clk == nil {
		clk = clock.System()
	}
	return &exportService{contracts: contracts, history: history, clock: clk}
}

func (s *exportService) Contracts(ctx context.Context, filter dto.ContractFilter, format string) (*ExportFile, error) {
	if format == "" {
		format = FormatXLSX
	}
	if format != FormatXLSX && format != FormatCSV {
		return nil, &ValidationError{Fields: map[string]string{"format": "must be xlsx or csv"}}
	}

	now := s.clock.Now()
	list, err := s.contracts.ListAll(ctx, filter, now)
	if err != nil {
		return nil, err
	}
	table := infra.Table{Sheet: "Contracts", Headers: exportHeaders, Rows: make([][]string, len(list))}
	for i := range list {
		table.Rows[i] = exportRow(&list[i], now)
	}

	stamp := now.Format("20060102")
	if format == FormatCSV {
		data, err := infra.WriteCSV(table)
		if err != nil {
			return nil, err
		}
		return &ExportFile{Filename: "contracts-" + stamp + ".csv", ContentType: contentTypeCSV, Data: data}, nil
	}
	data, err := infra.WriteXLSX(table)
	if err != nil {
		return nil, err
	}
	return &ExportFile{Filename: "contracts-" + stamp + ".xlsx", ContentType: contentTypeXLSX, Data: data}, nil
}

func (s *exportService) ContractPDF(ctx context.Context, id uuid.UUID) (*ExportFile, error) {
	c, err := s.contracts.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "contract")
	}
	history, _, err := s.history.List(ctx, repository.HistoryQuery{ContractID: &id, Page: 1, Limit: 200})
	if err != nil {
		return nil, err
	}
	data, err := infra.ContractSheetPDF(c, history, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return &ExportFile{Filename: fmt.Sprintf("%s.pdf", c.ContractNumber), ContentType: contentTypePDF, Data: data}, nil
}

func exportRow(c *model.Contract, now time.Time) []string {
	var typ, status, responsible string
	if c.ContractType != nil {
		typ = c.ContractType.Name
	}
	if c.Status != nil {
		status = c.Status.Name
	}
	if c.Responsible != nil {
		responsible = c.Responsible.Name
	}
	return []string{
		c.ContractNumber,
		c.Company,
		c.FiscalName,
		c.FiscalRegistration,
		c.ContractTerm,
		typ,
		status,
		responsible,
		c.StartDate.Format(dateLayout),
		c.EndDate.Format(dateLayout),
		strconv.Itoa(c.DaysUntilExpiration(now)),
		c.Value.StringFixed(2),
		c.Currency,
		strconv.FormatBool(c.IsActive),
		deref(c.Notes),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
