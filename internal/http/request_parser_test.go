package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeExpenseInput(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"full payload", `{"date":"2024-01-01","category":"food","amount":3.5,"description":"x"}`, false},
		{"unknown fields ignored", `{"date":"d","category":"c","amount":1,"extra":true}`, false},
		{"missing fields decode fine", `{}`, false},
		{"malformed", `{"date":`, true},
		{"amount as string", `{"date":"d","category":"c","amount":"ten"}`, true},
		{"empty body", ``, true},
		{"array", `[1,2]`, true},
		{"trailing whitespace", "{\"date\":\"d\",\"category\":\"c\",\"amount\":1}\n  ", false},
		{"trailing object", `{"date":"d","category":"food","amount":-2.5,"description":"x"}{"junk":1}`, true},
		{"trailing garbage", `{"date":"d","category":"c","amount":1} x`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(tt.body))
			_, err := decodeExpenseInput(httptest.NewRecorder(), req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeExpenseInput() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeExpenseInput_TooLarge(t *testing.T) {
	big := `{"date":"d","category":"c","amount":1,"description":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(big))
	if _, err := decodeExpenseInput(httptest.NewRecorder(), req); err == nil {
		t.Fatal("expected error for oversized body")
	}
}

func TestParseExpenseID(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"1.5", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/expenses/x", nil)
			req.SetPathValue("id", tt.raw)
			got, err := parseExpenseID(req)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Fatalf("parseExpenseID(%q) = %d, %v", tt.raw, got, err)
			}
		})
	}
}
