package infra

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/PauloRoberto1224/gestaocontratopy/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

func sampleTable() Table {
	return Table{
		Sheet:   "Contracts",
		Headers: []string{"Number", "Company", "Value"},
		Rows: [][]string{
			{"CTR-2025-001", "Acme, Ltda", "1000.00"},
			{"CTR-2025-002", "Globex", "250.50"},
		},
	}
}

func TestWriteXLSX(t *testing.T) {
	data, err := WriteXLSX(sampleTable())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Contracts")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Number", "Company", "Value"}, rows[0])
	assert.Equal(t, "CTR-2025-002", rows[2][0])
}

func TestWriteCSV_QuotesCommas(t *testing.T) {
	data, err := WriteCSV(sampleTable())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Acme, Ltda", records[1][1])
}

func TestContractSheetPDF(t *testing.T) {
	notes := "Renovação pendente"
	c := &model.Contract{
		ID:                 uuid.New(),
		ContractNumber:     "CTR-2025-001",
		Company:            "Acme",
		FiscalName:         "João Silva",
		FiscalRegistration: "1234567",
		ContractTerm:       model.TermInitial,
		Notes:              &notes,
		StartDate:          time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:            time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		Value:              decimal.RequireFromString("1000"),
		Currency:           "BRL",
		IsActive:           true,
		Status:             &model.ContractStatus{Name: "Active"},
	}
	old, nw := "1000.00", "1500.00"
	history := []model.ContractHistory{{
		ChangeDate:        time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC),
		ChangeDescription: "Contract updated.",
		ChangedFields:     datatypes.NewJSONType(model.FieldChanges{"value": {Old: &old, New: &nw}}),
	}}

	data, err := ContractSheetPDF(c, history, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
