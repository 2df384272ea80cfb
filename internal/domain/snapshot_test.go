package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sitebook/sitebook-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodedList_Unmarshal(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantText  string
		wantErr   bool
	}{
		{name: "null", input: `null`},
		{name: "encoded string kept verbatim", input: `"[{\"id\": \"a\"}]"`, wantValid: true, wantText: `[{"id": "a"}]`},
		{name: "array compacted", input: `[ {"id": "a", "completed": true} ]`, wantValid: true, wantText: `[{"id":"a","completed":true}]`},
		{name: "empty array", input: `[]`, wantValid: true, wantText: `[]`},
		{name: "object rejected", input: `{"id": "a"}`, wantErr: true},
		{name: "number rejected", input: `42`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l domain.EncodedList
			err := json.Unmarshal([]byte(tt.input), &l)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrMalformedRecord)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, l.Valid)
			assert.Equal(t, tt.wantText, l.Text)
		})
	}
}

func TestEncodedList_RoundTripThroughRecord(t *testing.T) {
	var rec domain.TaskRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"projectId":2,"checklist":[{"id":"a","text":"x","completed":false}]}`), &rec))

	out, err := json.Marshal(rec)
	require.NoError(t, err)

	var again domain.TaskRecord
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, rec.Checklist, again.Checklist)
	assert.False(t, again.Subtasks.Valid)
	assert.Nil(t, again.Subtasks.Ptr())
}

func TestDate_Unmarshal(t *testing.T) {
	want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		input     string
		wantValid bool
		wantTime  time.Time
		wantErr   bool
	}{
		{name: "null", input: `null`},
		{name: "empty string", input: `""`},
		{name: "plain date", input: `"2024-03-01"`, wantValid: true, wantTime: want},
		{name: "rfc3339", input: `"2024-03-01T00:00:00Z"`, wantValid: true, wantTime: want},
		{name: "epoch millis", input: `1709251200000`, wantValid: true, wantTime: want},
		{name: "garbage", input: `"not a date"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d domain.Date
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrMalformedRecord)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, d.Valid)
			if tt.wantValid {
				assert.True(t, tt.wantTime.Equal(d.Time), "got %s", d.Time)
			}
		})
	}
}

func TestDate_Marshal(t *testing.T) {
	out, err := json.Marshal(domain.Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	out, err = json.Marshal(domain.NewDate(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T12:00:00Z"`, string(out))
}

func TestDecodeList(t *testing.T) {
	items, err := domain.DecodeList[domain.ChecklistItem](nil)
	assert.NoError(t, err)
	assert.Nil(t, items)

	text := `[{"id":"a","text":"bring ladder","completed":true}]`
	items, err = domain.DecodeList[domain.ChecklistItem](&text)
	require.NoError(t, err)
	assert.Equal(t, []domain.ChecklistItem{{ID: "a", Text: "bring ladder", Completed: true}}, items)

	bad := `{"id":"a"}`
	_, err = domain.DecodeList[domain.ChecklistItem](&bad)
	assert.Error(t, err)
}

func TestSnapshot_Counts(t *testing.T) {
	snap := domain.Snapshot{
		Clients:  []domain.ClientRecord{{ID: 1}, {ID: 2}},
		Projects: []domain.ProjectRecord{{ID: 10, ClientID: 1}},
	}

	counts := snap.Counts()
	assert.Len(t, counts, 17)
	assert.Equal(t, domain.EntityClientCategories, counts[0].Entity)
	assert.Equal(t, domain.EntityExpenses, counts[len(counts)-1].Entity)
	assert.Equal(t, 3, snap.TotalRecords())
}
