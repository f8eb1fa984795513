package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"id":     "0b0c2f0e-1a4f-4d0e-9a57-5f4b0e1a0a01",
		"amount": "100.00",
	}

	before := time.Now()
	evt := NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
	after := time.Now()

	assert.Equal(t, "transaction.created", evt.Type)
	assert.Equal(t, EntityTypeTransaction, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before.UTC().Add(-time.Second)) && !evt.Timestamp.After(after.UTC()))
}

func TestEvent_ToJSON(t *testing.T) {
	evt := ViewUpdated(map[string]interface{}{"month": "2024-03", "total": "60.00"})

	data, err := evt.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "view.updated", decoded["type"])
	assert.Equal(t, "view", decoded["entity"])
	payload, ok := decoded["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "60.00", payload["total"])
	assert.NotNil(t, decoded["timestamp"])
}

func TestEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{"id": "x"}

	tests := []struct {
		name     string
		evt      Event
		expected string
		entity   EntityType
	}{
		{"TransactionCreated", TransactionCreated(payload), "transaction.created", EntityTypeTransaction},
		{"TransactionUpdated", TransactionUpdated(payload), "transaction.updated", EntityTypeTransaction},
		{"TransactionDeleted", TransactionDeleted(payload), "transaction.deleted", EntityTypeTransaction},
		{"CategoryCreated", CategoryCreated(payload), "category.created", EntityTypeCategory},
		{"CategoryUpdated", CategoryUpdated(payload), "category.updated", EntityTypeCategory},
		{"CategoryDeleted", CategoryDeleted(payload), "category.deleted", EntityTypeCategory},
		{"BudgetUpdated", BudgetUpdated(payload), "budget.updated", EntityTypeBudget},
		{"MonthlyReportUpdated", MonthlyReportUpdated(payload), "monthly_report.updated", EntityTypeMonthlyReport},
		{"ViewUpdated", ViewUpdated(payload), "view.updated", EntityTypeView},
		{"ViewError", ViewError(payload), "view.error", EntityTypeView},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.evt.Type)
			assert.Equal(t, tt.entity, tt.evt.Entity)
			assert.Equal(t, payload, tt.evt.Payload)
		})
	}
}

func TestEvent_InvalidatesViews(t *testing.T) {
	assert.True(t, TransactionCreated(nil).InvalidatesViews())
	assert.True(t, CategoryDeleted(nil).InvalidatesViews())
	assert.False(t, BudgetUpdated(nil).InvalidatesViews())
	assert.False(t, ViewUpdated(nil).InvalidatesViews())
}
