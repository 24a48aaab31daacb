package handler

import (
	"net/http"
	"testing"

	"github.com/dafibh/fortuna/fortuna-ledger/internal/domain"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/service"
	"github.com/dafibh/fortuna/fortuna-ledger/internal/testutil"
)

func newCategoryHandler(store *testutil.MockLedgerStore) *CategoryHandler {
	return NewCategoryHandler(service.NewCategoryService(store.Categories()))
}

func TestCreateCategory(t *testing.T) {
	store := testutil.NewSeededMockLedgerStore()
	handler := newCategoryHandler(store)

	rec := serve(t, handler.CreateCategory, http.MethodPost, "/api/v1/categories",
		`{"name": "Pet Care", "color": "#AABBCC", "defaultBudget": "120"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response CategoryResponse
	decode(t, rec, &response)
	if response.Name != "Pet Care" || response.Color != "#aabbcc" {
		t.Errorf("Unexpected category %+v", response)
	}
	if response.DefaultBudget == nil || *response.DefaultBudget != "120.00" {
		t.Errorf("Expected default budget 120.00, got %v", response.DefaultBudget)
	}

	rec = serve(t, handler.CreateCategory, http.MethodPost, "/api/v1/categories", `{"name": "pet CARE"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for duplicate name, got %d", rec.Code)
	}
}

func TestCreateCategory_Validation(t *testing.T) {
	handler := newCategoryHandler(testutil.NewMockLedgerStore())

	for _, body := range []string{
		`{"name": ""}`,
		`{"name": "Pets", "color": "blue"}`,
		`{"name": "Pets", "defaultBudget": "-1"}`,
		`{"name": `,
	} {
		rec := serve(t, handler.CreateCategory, http.MethodPost, "/api/v1/categories", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", body, rec.Code)
		}
	}
}

func TestGetCategories(t *testing.T) {
	handler := newCategoryHandler(testutil.NewSeededMockLedgerStore())

	rec := serve(t, handler.GetCategories, http.MethodGet, "/api/v1/categories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response []CategoryResponse
	decode(t, rec, &response)
	if len(response) != len(domain.DefaultCategories) {
		t.Errorf("Expected %d categories, got %d", len(domain.DefaultCategories), len(response))
	}
}

func TestUpdateCategory(t *testing.T) {
	store := testutil.NewSeededMockLedgerStore()
	handler := newCategoryHandler(store)

	rec := serve(t, handler.UpdateCategory, http.MethodPut, "/api/v1/categories/travel",
		`{"name": "Trips", "color": "#101010"}`, "name", "travel")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response CategoryResponse
	decode(t, rec, &response)
	if response.Name != "Trips" {
		t.Errorf("Expected name Trips, got %s", response.Name)
	}

	rec = serve(t, handler.UpdateCategory, http.MethodPut, "/api/v1/categories/trips",
		`{"name": "Health"}`, "name", "trips")
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}

	rec = serve(t, handler.UpdateCategory, http.MethodPut, "/api/v1/categories/travel",
		`{"name": "Again"}`, "name", "travel")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for the old name, got %d", rec.Code)
	}
}

func TestDeleteCategory_Reassign(t *testing.T) {
	store := testutil.NewSeededMockLedgerStore()
	store.AddExpense("5", "Shopping", day(2024, 1, 1))
	store.AddExpense("6", "Shopping", day(2024, 1, 2))
	handler := newCategoryHandler(store)

	rec := serve(t, handler.DeleteCategory, http.MethodDelete, "/api/v1/categories/shopping?reassignTo=Personal", "", "name", "shopping")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response DeleteCategoryResponse
	decode(t, rec, &response)
	if response.Reassigned != 2 {
		t.Errorf("Expected 2 reassigned transactions, got %d", response.Reassigned)
	}
	for _, tx := range store.TxByID {
		if tx.Category != "Personal" {
			t.Errorf("Expected transaction relabelled to Personal, got %s", tx.Category)
		}
	}

	rec = serve(t, handler.DeleteCategory, http.MethodDelete, "/api/v1/categories/shopping", "", "name", "shopping")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", rec.Code)
	}
}
