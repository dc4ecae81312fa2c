package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONResponseBuilder(t *testing.T) {
	rr := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/expenses/1").
		Body(map[string]int{"id": 1}).
		Write(rr)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("content type = %q", got)
	}
	if got := rr.Header().Get("Location"); got != "/expenses/1" {
		t.Fatalf("location = %q", got)
	}
	var body map[string]int
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body["id"] != 1 {
		t.Fatalf("body = %s (err %v)", rr.Body.String(), err)
	}
}

func TestJSONResponseBuilder_NoBody(t *testing.T) {
	rr := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(rr)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rr.Body.String())
	}
	if rr.Header().Get("Content-Type") != "" {
		t.Fatalf("unexpected content type %q", rr.Header().Get("Content-Type"))
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name      string
		builder   *JSONResponseBuilder
		wantCode  int
		wantError string
		wantField string
	}{
		{"bad request", BadRequestError("invalid request body"), 400, "invalid request body", ""},
		{"missing field", MissingFieldError("date", "missing field 'date'"), 400, "missing field 'date'", "date"},
		{"not found", NotFoundError("expense not found"), 404, "expense not found", ""},
		{"internal", InternalServerError("disk full"), 500, "disk full", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tt.builder.Write(rr)

			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			var body map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body["error"] != tt.wantError {
				t.Errorf("error = %q, want %q", body["error"], tt.wantError)
			}
			if body["field"] != tt.wantField {
				t.Errorf("field = %q, want %q", body["field"], tt.wantField)
			}
		})
	}
}
