package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func strptr(s string) *string { return &s }

func TestContract_DaysUntilExpiration(t *testing.T) {
	now := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	c := &Contract{EndDate: time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)}

	assert.Equal(t, 10, c.DaysUntilExpiration(now))
	assert.False(t, c.IsExpired(now))

	c.EndDate = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, c.DaysUntilExpiration(now))
	assert.False(t, c.IsExpired(now), "a contract ending today is still valid")

	c.EndDate = time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, -2, c.DaysUntilExpiration(now))
	assert.True(t, c.IsExpired(now))
}

func TestContractReminder_IsOverdue(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	r := &ContractReminder{DueDate: time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)}
	assert.True(t, r.IsOverdue(now))

	r.IsCompleted = true
	assert.False(t, r.IsOverdue(now))
}

func TestContractHistory_ChangedFieldsSurviveDriverRoundTrip(t *testing.T) {
	original := FieldChanges{
		"value":   {Old: strptr("1000.00"), New: strptr("1500.00")},
		"notes":   {Old: nil, New: strptr("renewed")},
		"company": {Old: strptr("ACME"), New: nil},
	}
	h := ContractHistory{ChangedFields: datatypes.NewJSONType(original)}

	raw, err := h.ChangedFields.Value()
	require.NoError(t, err)

	var back ContractHistory
	require.NoError(t, back.ChangedFields.Scan(raw))

	assert.Equal(t, original, back.Changes())
}

func TestContractHistory_ChangesNeverNil(t *testing.T) {
	var h ContractHistory
	assert.NotNil(t, h.Changes())
}

func TestContractHistory_HooksRejectMutation(t *testing.T) {
	h := &ContractHistory{}
	assert.ErrorIs(t, h.BeforeUpdate(nil), ErrHistoryImmutable)
	assert.ErrorIs(t, h.BeforeDelete(nil), ErrHistoryImmutable)
}
