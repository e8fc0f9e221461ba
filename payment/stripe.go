// Package payment settles booking totals with Stripe.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"

	"github.com/warp/campsite-engine/campground"
)

var (
	ErrNoPaymentMethod = errors.New("no payment method supplied")
	ErrNotSettled      = errors.New("payment not settled")
	ErrUnavailable     = errors.New("payment provider unavailable")
)

type intentCreator func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)

// Stripe creates and confirms a PaymentIntent per reservation. The
// reservation id is the idempotency key, so a retried booking never charges
// twice. Calls go through a circuit breaker.
type Stripe struct {
	create  intentCreator
	breaker *gobreaker.CircuitBreaker
	log     logrus.FieldLogger
}

func NewStripe(secretKey string, log logrus.FieldLogger) *Stripe {
	client := &paymentintent.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey}
	return newStripe(client.New, log)
}

func newStripe(create intentCreator, log logrus.FieldLogger) *Stripe {
	if log == nil {
		log = logrus.StandardLogger()
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "stripe",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("circuit breaker state changed")
		},
	})
	return &Stripe{create: create, breaker: breaker, log: log}
}

// Settle charges req.Amount. Only a succeeded PaymentIntent counts as settled.
func (s *Stripe) Settle(ctx context.Context, req campground.SettlementRequest) (campground.SettlementResult, error) {
	if req.PaymentMethod == "" {
		return campground.SettlementResult{}, ErrNoPaymentMethod
	}
	if err := ctx.Err(); err != nil {
		return campground.SettlementResult{}, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(ToMinorUnits(req.Amount)),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		Description:   stripe.String(req.Description),
		PaymentMethod: stripe.String(req.PaymentMethod),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	if req.Email != "" {
		params.ReceiptEmail = stripe.String(req.Email)
	}
	params.IdempotencyKey = stripe.String("commitment-" + req.CommitmentID)
	params.AddMetadata("commitment_id", req.CommitmentID)

	out, err := s.breaker.Execute(func() (interface{}, error) {
		return s.create(params)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return campground.SettlementResult{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return campground.SettlementResult{}, fmt.Errorf("stripe payment intent: %w", err)
	}

	pi := out.(*stripe.PaymentIntent)
	result := campground.SettlementResult{Reference: pi.ID, Status: string(pi.Status)}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		s.log.WithFields(logrus.Fields{
			"commitment_id":  req.CommitmentID,
			"payment_intent": pi.ID,
			"status":         pi.Status,
		}).Warn("payment intent not settled")
		return result, fmt.Errorf("%w: status %s", ErrNotSettled, pi.Status)
	}
	return result, nil
}

// ToMinorUnits converts a decimal amount to cents.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

var _ campground.PaymentSettler = (*Stripe)(nil)
