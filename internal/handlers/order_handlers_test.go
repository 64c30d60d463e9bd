package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderDetailRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "payment_session_id", "item_id", "renter_id", "owner_id",
		"amount", "duration", "currency", "status", "created_at",
		"title", "image_urls",
	})
}

func TestGetMyRentals(t *testing.T) {
	h, mock, _ := newTestHandlers(t)
	r := newTestRouter(h, 42)

	rows := orderDetailRows().
		AddRow(int64(10), "cs_1", int64(5), int64(42), int64(7),
			1500.0, 3, "inr", "paid", time.Now(),
			"DSLR Camera", `["https://img.example.com/cam.jpg"]`).
		AddRow(int64(11), "cs_2", int64(6), int64(42), int64(8),
			400.0, 2, "inr", "paid", time.Now(),
			nil, nil) // item since deleted
	mock.ExpectQuery(regexp.QuoteMeta("WHERE o.renter_id = ?")).
		WithArgs(int64(42)).
		WillReturnRows(rows)

	w := performRequest(r, http.MethodGet, "/v1/orders/rentals", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Orders []OrderDetail `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Orders, 2)
	assert.Equal(t, "DSLR Camera", resp.Orders[0].ItemTitle)
	assert.Equal(t, "https://img.example.com/cam.jpg", resp.Orders[0].ItemImage)
	// deleted items leave the order intact, just without item info
	assert.Empty(t, resp.Orders[1].ItemTitle)
	assert.Equal(t, 400.0, resp.Orders[1].Amount)
}

func TestGetMyEarnings(t *testing.T) {
	h, mock, _ := newTestHandlers(t)
	r := newTestRouter(h, 7)

	rows := orderDetailRows().
		AddRow(int64(10), "cs_1", int64(5), int64(42), int64(7),
			1500.0, 3, "inr", "paid", time.Now(),
			"DSLR Camera", `[]`)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE o.owner_id = ?")).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	w := performRequest(r, http.MethodGet, "/v1/orders/earnings", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Orders []OrderDetail `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, int64(7), resp.Orders[0].OwnerID)
}

func TestGetOrderDetailsHiddenFromStrangers(t *testing.T) {
	h, mock, _ := newTestHandlers(t)
	r := newTestRouter(h, 1000)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE o.id = ? AND (o.renter_id = ? OR o.owner_id = ?)")).
		WithArgs("10", int64(1000), int64(1000)).
		WillReturnRows(orderDetailRows())

	w := performRequest(r, http.MethodGet, "/v1/orders/10", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDashboardStats(t *testing.T) {
	h, mock, _ := newTestHandlers(t)
	r := newTestRouter(h, 7)

	mock.ExpectQuery(regexp.QuoteMeta("FROM items WHERE owner_id = ?")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "active"}).AddRow(4, 3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM orders WHERE renter_id = ?")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT SUM(amount) FROM orders WHERE owner_id = ?")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(1900.0))

	w := performRequest(r, http.MethodGet, "/v1/dashboard-stats", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats DashboardStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 4, stats.Listings)
	assert.Equal(t, 3, stats.ActiveListings)
	assert.Equal(t, 2, stats.Rentals)
	assert.Equal(t, 1900.0, stats.TotalEarnings)
}

func TestGetDashboardStatsNoEarnings(t *testing.T) {
	h, mock, _ := newTestHandlers(t)
	r := newTestRouter(h, 7)

	mock.ExpectQuery(regexp.QuoteMeta("FROM items WHERE owner_id = ?")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "active"}).AddRow(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM orders WHERE renter_id = ?")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT SUM(amount) FROM orders WHERE owner_id = ?")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(nil))

	w := performRequest(r, http.MethodGet, "/v1/dashboard-stats", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stats DashboardStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Zero(t, stats.TotalEarnings)
}
