package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mlegall/tabletop-sync/internal/dice"
)

func newRollRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/roll", RollDice(dice.DefaultLimits))
	return r
}

func TestRollEndpoint(t *testing.T) {
	router := newRollRouter()

	w := postJSON(t, router, "/api/roll", RollRequest{Command: "/roll 2d6+3"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var result dice.Result
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if len(result.Rolls) != 2 {
		t.Errorf("got %d rolls, want 2", len(result.Rolls))
	}
	sum := 0
	for _, v := range result.Rolls {
		if v < 1 || v > 6 {
			t.Errorf("roll %d outside [1, 6]", v)
		}
		sum += v
	}
	if result.Total != sum+3 {
		t.Errorf("Total = %d, want %d", result.Total, sum+3)
	}
	if result.Detail == "" {
		t.Error("Detail is empty")
	}
}

func TestRollEndpointErrors(t *testing.T) {
	router := newRollRouter()

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing command", map[string]string{}},
		{"invalid notation", RollRequest{Command: "hello"}},
		{"too many dice", RollRequest{Command: "200d6"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, "/api/roll", tt.body, "")
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}
