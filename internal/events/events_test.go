package events

import (
	"strings"
	"testing"
	"time"

	"expensetracker/internal/core"
)

func TestNew(t *testing.T) {
	evt := New(ExpenseCreated, core.Expense{ID: 4, Date: "d", Category: "food", Amount: 3})

	if evt.ID == "" {
		t.Fatal("expected generated id")
	}
	if evt.Type != ExpenseCreated {
		t.Fatalf("type = %s", evt.Type)
	}
	if time.Since(evt.Timestamp) > time.Second {
		t.Fatalf("timestamp not recent: %v", evt.Timestamp)
	}
	if other := New(ExpenseCreated, evt.Expense); other.ID == evt.ID {
		t.Fatal("ids should be unique")
	}
}

func TestDecode(t *testing.T) {
	orig := New(ExpenseUpdated, core.Expense{ID: 9, Date: "2024-05-01", Category: "fuel", Amount: 50})
	data, err := orig.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != orig.ID || got.Type != orig.Type || got.Expense != orig.Expense {
		t.Fatalf("decoded %+v, want %+v", got, orig)
	}
	if !got.Timestamp.Equal(orig.Timestamp) {
		t.Fatalf("timestamp %v, want %v", got.Timestamp, orig.Timestamp)
	}
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"not json", `nope`, "unmarshal event"},
		{"unknown type", `{"id":"1","type":"expense.archived","expense":{"id":1}}`, "unknown event type"},
		{"missing expense id", `{"id":"1","type":"expense.deleted","expense":{}}`, "no expense id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Decode() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestDeleted(t *testing.T) {
	evt := Deleted(12)
	if evt.Type != ExpenseDeleted || evt.Expense.ID != 12 {
		t.Fatalf("unexpected event %+v", evt)
	}
}
