package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/rentmystuff/rentmystuff-golang/internal/payments"
)

// fakeGateway implements payments.Gateway in memory for handler tests.
type fakeGateway struct {
	createCalls int
	lastCreate  payments.CreateSessionInput
	createErr   error
	getErr      error
	sessions    map[string]*payments.Session
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sessions: map[string]*payments.Session{}}
}

func (f *fakeGateway) CreateSession(ctx context.Context, in payments.CreateSessionInput) (*payments.Session, error) {
	f.createCalls++
	f.lastCreate = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	s := &payments.Session{
		ID:            fmt.Sprintf("cs_test_%d", f.createCalls),
		URL:           fmt.Sprintf("https://pay.example.com/c/cs_test_%d", f.createCalls),
		Status:        payments.StatusOpen,
		AmountTotal:   in.UnitAmount * in.Quantity,
		Currency:      payments.Currency,
		Metadata:      in.Metadata,
		CustomerEmail: in.CustomerEmail,
	}
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeGateway) GetSession(ctx context.Context, id string) (*payments.Session, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no such session: %s", id)
	}
	return s, nil
}

// completeSession seeds the fake with an already-paid session.
func (f *fakeGateway) completeSession(id string, amountTotal int64, metadata map[string]string) *payments.Session {
	s := &payments.Session{
		ID:          id,
		Status:      payments.StatusComplete,
		AmountTotal: amountTotal,
		Currency:    payments.Currency,
		Metadata:    metadata,
	}
	f.sessions[id] = s
	return s
}

// newTestHandlers returns Handlers backed by a sqlmock database and a
// fake payment gateway.
func newTestHandlers(t *testing.T) (*Handlers, sqlmock.Sqlmock, *fakeGateway) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gw := newFakeGateway()
	h := &Handlers{DB: db, Payments: gw, BaseURL: "http://localhost:3000"}
	return h, mock, gw
}

// newTestRouter registers the handler routes behind a stub auth
// middleware that authenticates every request as userID.
func newTestRouter(h *Handlers, userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	})

	v1 := r.Group("/v1")
	v1.POST("/register", h.Register)
	v1.POST("/login", h.Login)
	v1.GET("/items", h.GetAllItems)
	v1.GET("/items/:id", h.GetItem)
	v1.POST("/items", h.CreateItem)
	v1.GET("/items/mine", h.GetMyItems)
	v1.PATCH("/items/:id/availability", h.ToggleItemAvailability)
	v1.DELETE("/items/:id", h.DeleteItem)
	v1.GET("/cart", h.GetCart)
	v1.POST("/cart/items", h.AddToCart)
	v1.PUT("/cart/items/:item_id", h.UpdateCartItem)
	v1.DELETE("/cart/items/:item_id", h.DeleteCartItem)
	v1.DELETE("/cart", h.ClearCart)
	v1.POST("/checkout", h.CreateCheckoutSession)
	v1.GET("/checkout/session", h.GetCheckoutSession)
	v1.POST("/checkout/finalize", h.FinalizeOrder)
	v1.GET("/orders/rentals", h.GetMyRentals)
	v1.GET("/orders/earnings", h.GetMyEarnings)
	v1.GET("/orders/:id", h.GetOrderDetails)
	v1.GET("/dashboard-stats", h.GetDashboardStats)
	v1.GET("/notifications", h.GetMyNotifications)
	v1.PATCH("/notifications/:id/read", h.MarkNotificationAsRead)
	return r
}

func performRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
