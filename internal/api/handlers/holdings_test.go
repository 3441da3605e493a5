package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/avanzatt/portfolio-tracker-backend/internal/testutil"
)

// withURLParam attaches a chi route parameter to the request, mimicking what
// the router does when a pattern like /holdings/{id} matches.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestHoldingsHandler_SetHolding(t *testing.T) {
	t.Run("stores a valid holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewHoldingsHandler(testutil.NewTestHoldingsService(t, db))

		req := httptest.NewRequest(http.MethodPut, "/api/holdings/5361", strings.NewReader(`{"quantity": 10}`))
		req = withURLParam(req, "id", "5361")
		w := httptest.NewRecorder()

		handler.SetHolding(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response HoldingResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.InstrumentID != 5361 || response.Quantity != 10 {
			t.Errorf("Unexpected response: %+v", response)
		}
	})

	t.Run("rejects a non-positive quantity", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewHoldingsHandler(testutil.NewTestHoldingsService(t, db))

		req := httptest.NewRequest(http.MethodPut, "/api/holdings/5361", strings.NewReader(`{"quantity": 0}`))
		req = withURLParam(req, "id", "5361")
		w := httptest.NewRecorder()

		handler.SetHolding(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("rejects a malformed instrument id", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewHoldingsHandler(testutil.NewTestHoldingsService(t, db))

		req := httptest.NewRequest(http.MethodPut, "/api/holdings/abc", strings.NewReader(`{"quantity": 10}`))
		req = withURLParam(req, "id", "abc")
		w := httptest.NewRecorder()

		handler.SetHolding(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestHoldingsHandler_DeleteHolding(t *testing.T) {
	t.Run("deletes an existing holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewHoldingsHandler(testutil.NewTestHoldingsService(t, db))
		testutil.InsertHolding(t, db, 5361, 10)

		req := httptest.NewRequest(http.MethodDelete, "/api/holdings/5361", nil)
		req = withURLParam(req, "id", "5361")
		w := httptest.NewRecorder()

		handler.DeleteHolding(w, req)

		if w.Code != http.StatusNoContent {
			t.Errorf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 for an unknown holding", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewHoldingsHandler(testutil.NewTestHoldingsService(t, db))

		req := httptest.NewRequest(http.MethodDelete, "/api/holdings/9999", nil)
		req = withURLParam(req, "id", "9999")
		w := httptest.NewRecorder()

		handler.DeleteHolding(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestHoldingsHandler_CurrencyPairs(t *testing.T) {
	t.Run("lists configured pairs", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewHoldingsHandler(testutil.NewTestHoldingsService(t, db))
		testutil.InsertCurrencyPair(t, db, 19000, "USD/SEK")

		req := httptest.NewRequest(http.MethodGet, "/api/currency-pairs", nil)
		w := httptest.NewRecorder()

		handler.CurrencyPairs(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []CurrencyPairResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 1 || response[0].Name != "USD/SEK" {
			t.Errorf("Unexpected response: %+v", response)
		}
	})

	t.Run("rejects a pair without a name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		handler := NewHoldingsHandler(testutil.NewTestHoldingsService(t, db))

		req := httptest.NewRequest(http.MethodPut, "/api/currency-pairs/19000", strings.NewReader(`{}`))
		req = withURLParam(req, "id", "19000")
		w := httptest.NewRecorder()

		handler.SetCurrencyPair(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}
