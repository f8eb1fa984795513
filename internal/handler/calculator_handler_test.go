package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantResult string
		wantType   string
	}{
		{"addition", `{"expression": "12.50 + 3"}`, http.StatusOK, "15.50", ""},
		{"precedence", `{"expression": "2 + 3 * 4"}`, http.StatusOK, "14.00", ""},
		{"rounded division", `{"expression": "10 / 3"}`, http.StatusOK, "3.33", ""},
		{"negative result", `{"expression": "2 - 5"}`, http.StatusOK, "-3.00", ""},
		{"division by zero", `{"expression": "1 / 0"}`, http.StatusBadRequest, "", ErrorTypeParse},
		{"garbage", `{"expression": "1 + x"}`, http.StatusBadRequest, "", ErrorTypeParse},
		{"missing", `{}`, http.StatusBadRequest, "", ErrorTypeValidation},
		{"too long", `{"expression": "` + strings.Repeat("1", 300) + `"}`, http.StatusBadRequest, "", ErrorTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho()
			handler := NewCalculatorHandler()

			c, rec := newJSONContext(e, http.MethodPost, "/api/v1/calculator/evaluate", tt.body)

			if err := handler.Evaluate(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}

			if tt.wantStatus == http.StatusOK {
				var response EvaluateResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
					t.Fatalf("Failed to unmarshal response: %v", err)
				}
				if response.Result != tt.wantResult {
					t.Errorf("Expected %s, got %s", tt.wantResult, response.Result)
				}
				return
			}

			problem := decodeProblem(t, rec)
			if problem.Type != tt.wantType {
				t.Errorf("Expected problem type %s, got %s", tt.wantType, problem.Type)
			}
			if !hasFieldError(problem, "expression") {
				t.Errorf("Expected an expression field error, got %s", rec.Body.String())
			}
		})
	}
}
