// Package stripe implements the payments.Gateway interface against the
// Stripe hosted Checkout API.
package stripe

import (
	"context"
	"fmt"

	stripeapi "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/rentmystuff/rentmystuff-golang/internal/payments"
)

type Gateway struct {
	api *client.API
}

// New creates a Gateway bound to the given secret key.
func New(secretKey string) *Gateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &Gateway{api: api}
}

func (g *Gateway) CreateSession(ctx context.Context, in payments.CreateSessionInput) (*payments.Session, error) {
	params := &stripeapi.CheckoutSessionParams{
		Mode: stripeapi.String(string(stripeapi.CheckoutSessionModePayment)),
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{
				PriceData: &stripeapi.CheckoutSessionLineItemPriceDataParams{
					Currency: stripeapi.String(payments.Currency),
					ProductData: &stripeapi.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripeapi.String(in.ProductName),
					},
					UnitAmount: stripeapi.Int64(in.UnitAmount),
				},
				Quantity: stripeapi.Int64(in.Quantity),
			},
		},
		SuccessURL: stripeapi.String(in.SuccessURL),
		CancelURL:  stripeapi.String(in.CancelURL),
	}
	params.Context = ctx

	if in.CustomerEmail != "" {
		params.CustomerEmail = stripeapi.String(in.CustomerEmail)
	}
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return normalize(s), nil
}

func (g *Gateway) GetSession(ctx context.Context, id string) (*payments.Session, error) {
	params := &stripeapi.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items")

	s, err := g.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}

	return normalize(s), nil
}

func normalize(s *stripeapi.CheckoutSession) *payments.Session {
	out := &payments.Session{
		ID:          s.ID,
		URL:         s.URL,
		Status:      string(s.Status),
		AmountTotal: s.AmountTotal,
		Currency:    string(s.Currency),
		Metadata:    s.Metadata,
	}
	// The email entered on the hosted page wins over the one we seeded
	// at creation time.
	if s.CustomerDetails != nil && s.CustomerDetails.Email != "" {
		out.CustomerEmail = s.CustomerDetails.Email
	} else {
		out.CustomerEmail = s.CustomerEmail
	}
	return out
}
