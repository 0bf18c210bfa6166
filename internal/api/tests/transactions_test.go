package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/classfund/treasury-server/internal/api/testutils"
	"github.com/classfund/treasury-server/internal/models"
)

func createRecord(t *testing.T, testCtx *testutils.TestContext, amount int64, description string, txType models.TransactionType) *models.FinancialRecord {
	record := &models.FinancialRecord{
		Amount:          decimal.NewFromInt(amount),
		Description:     description,
		TransactionType: txType,
		CreatedBy:       testCtx.Admin.ID,
	}
	err := testCtx.Repository.CreateRecord(context.Background(), record, nil)
	assert.NoError(t, err, "Failed to seed record")
	return record
}

func TestCreateTransaction(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	// Test case 1: Successful creation by an admin
	createReq := models.CreateTransactionRequest{
		Amount:          decimal.NewFromInt(100),
		Description:     "snacks",
		TransactionType: models.TransactionCredit,
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/transactions",
		createReq,
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusCreated, w.Code)

	var record models.FinancialRecord
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.NotZero(t, record.ID)
	assert.Equal(t, testCtx.Admin.ID, record.CreatedBy)
	assert.Equal(t, "admin-test", record.CreatedByUser.Username)

	// Test case 2: Viewers cannot mutate
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/transactions",
		createReq,
		testutils.AuthHeaders(testCtx.ViewerToken),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)

	// Test case 3: Negative and zero amounts are rejected
	for _, amount := range []int64{-5, 0} {
		badReq := models.CreateTransactionRequest{
			Amount:          decimal.NewFromInt(amount),
			Description:     "invalid",
			TransactionType: models.TransactionCredit,
		}

		w = testutils.PerformRequest(
			testCtx.Router,
			http.MethodPost,
			"/api/transactions",
			badReq,
			testutils.AuthHeaders(testCtx.AdminToken),
		)

		assert.Equal(t, http.StatusBadRequest, w.Code, "amount %d must be rejected", amount)
	}

	// Test case 4: Missing description
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/transactions",
		models.CreateTransactionRequest{
			Amount:          decimal.NewFromInt(10),
			TransactionType: models.TransactionDebit,
		},
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Test case 5: Unauthenticated
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPost,
		"/api/transactions",
		createReq,
		nil,
	)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListTransactionsPagination(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	for i := 1; i <= 25; i++ {
		createRecord(t, testCtx, int64(i), fmt.Sprintf("entry %d", i), models.TransactionCredit)
	}

	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/transactions?page=2&per_page=10",
		nil,
		testutils.AuthHeaders(testCtx.ViewerToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var page models.PaginatedRecords
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Items, 10)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.PerPage)
	assert.Equal(t, 3, page.Pages)
}

func TestListTransactionsFilters(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	createRecord(t, testCtx, 50, "pizza party", models.TransactionDebit)
	createRecord(t, testCtx, 200, "bake sale income", models.TransactionCredit)
	createRecord(t, testCtx, 30, "Pizza boxes", models.TransactionDebit)

	// Filter by type
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/transactions?transaction_type=credit",
		nil,
		testutils.AuthHeaders(testCtx.ViewerToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var page models.PaginatedRecords
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, models.TransactionCredit, page.Items[0].TransactionType)

	// Case-insensitive description search
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/transactions?search=pizza",
		nil,
		testutils.AuthHeaders(testCtx.ViewerToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Total)

	// Sorting by amount ascending
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/transactions?sort_by=amount&sort_direction=asc",
		nil,
		testutils.AuthHeaders(testCtx.ViewerToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 3, page.Total)
	assert.True(t, page.Items[0].Amount.LessThan(page.Items[1].Amount))

	// Unknown sort fields fall back to the default ordering rather than erroring
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/transactions?sort_by=password_hash;DROP",
		nil,
		testutils.AuthHeaders(testCtx.ViewerToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateTransaction(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	record := createRecord(t, testCtx, 40, "field trip", models.TransactionDebit)

	// Test case 1: Partial update
	newDescription := "field trip bus"
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		fmt.Sprintf("/api/transactions/%d", record.ID),
		models.UpdateTransactionRequest{Description: &newDescription},
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.FinancialRecord
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, newDescription, updated.Description)
	assert.True(t, updated.Amount.Equal(decimal.NewFromInt(40)))

	// Test case 2: Viewers cannot update
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		fmt.Sprintf("/api/transactions/%d", record.ID),
		models.UpdateTransactionRequest{Description: &newDescription},
		testutils.AuthHeaders(testCtx.ViewerToken),
	)

	assert.Equal(t, http.StatusForbidden, w.Code)

	// Test case 3: Unknown id
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		"/api/transactions/99999",
		models.UpdateTransactionRequest{Description: &newDescription},
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusNotFound, w.Code)

	// Test case 4: Non-positive amount
	negative := decimal.NewFromInt(-1)
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodPut,
		fmt.Sprintf("/api/transactions/%d", record.ID),
		models.UpdateTransactionRequest{Amount: &negative},
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteTransaction(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	record := createRecord(t, testCtx, 75, "decorations", models.TransactionDebit)

	// Test case 1: Soft delete succeeds
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		fmt.Sprintf("/api/transactions/%d", record.ID),
		nil,
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	// Test case 2: The record disappears from listings and reads
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/transactions",
		nil,
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var page models.PaginatedRecords
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 0, page.Total)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		fmt.Sprintf("/api/transactions/%d", record.ID),
		nil,
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusNotFound, w.Code)

	// Test case 3: A second delete fails with NotFound
	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		fmt.Sprintf("/api/transactions/%d", record.ID),
		nil,
		testutils.AuthHeaders(testCtx.AdminToken),
	)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBalance(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	defer testutils.CleanupTestContext(testCtx)

	createRecord(t, testCtx, 100, "dues", models.TransactionCredit)
	createRecord(t, testCtx, 250, "fundraiser", models.TransactionCredit)
	createRecord(t, testCtx, 80, "supplies", models.TransactionDebit)
	deleted := createRecord(t, testCtx, 999, "mistake", models.TransactionCredit)

	// Soft-deleted records must not count
	w := testutils.PerformRequest(
		testCtx.Router,
		http.MethodDelete,
		fmt.Sprintf("/api/transactions/%d", deleted.ID),
		nil,
		testutils.AuthHeaders(testCtx.AdminToken),
	)
	assert.Equal(t, http.StatusOK, w.Code)

	w = testutils.PerformRequest(
		testCtx.Router,
		http.MethodGet,
		"/api/transactions/balance",
		nil,
		testutils.AuthHeaders(testCtx.ViewerToken),
	)

	assert.Equal(t, http.StatusOK, w.Code)

	var balance models.BalanceResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &balance))
	assert.True(t, balance.TotalCredits.Equal(decimal.NewFromInt(350)), "credits = %s", balance.TotalCredits)
	assert.True(t, balance.TotalDebits.Equal(decimal.NewFromInt(80)), "debits = %s", balance.TotalDebits)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(270)), "balance = %s", balance.Balance)
}
