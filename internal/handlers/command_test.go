package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"brewctl/internal/engine"
	"brewctl/internal/models"
)

func newTestHandler() *Handler {
	gin.SetMode(gin.TestMode)
	core := engine.NewCore(nil, nil, nil, nil, nil, nil, nil, nil, models.PIDSettings{}, models.SystemSettings{})
	return NewHandler(core, nil, nil)
}

func TestHealth_ReturnsOK(t *testing.T) {
	h := newTestHandler()
	router := gin.New()
	router.GET("/health", h.health)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != statusOK {
		t.Fatalf("got status=%q, want %q", body["status"], statusOK)
	}
}

func TestDispatchCommand_InvalidBody_Returns400(t *testing.T) {
	h := newTestHandler()
	router := gin.New()
	router.POST("/command", h.dispatchCommand)

	req := httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400 (missing required command field)", rec.Code)
	}
}

func TestDispatchCommand_UnknownCommand_Returns200WithFailureEnvelope(t *testing.T) {
	h := newTestHandler()
	router := gin.New()
	router.POST("/command", h.dispatchCommand)

	body := `{"command":"NotACommand"}`
	req := httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200 (command result is always 200, success flag carries the outcome)", rec.Code)
	}
	var result engine.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if result.Success {
		t.Fatalf("expected Success=false for an unknown command")
	}
}

func TestDispatchCommand_GetPIDSettings_RoutesToCore(t *testing.T) {
	h := newTestHandler()
	router := gin.New()
	router.POST("/command", h.dispatchCommand)

	body := `{"command":"GetPIDSettings"}`
	req := httptest.NewRequest(http.MethodPost, "/command", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var result engine.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected Success=true, got %+v", result)
	}
}
