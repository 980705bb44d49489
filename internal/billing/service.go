// Package billing sells credit packs through Stripe Checkout and settles
// them through the signed webhook. Without a Stripe key the routes stay
// mounted but answer 503.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"gorm.io/gorm"

	"github.com/nevisai/platform/internal/credits"
	"github.com/nevisai/platform/internal/models"
)

// Pack is a purchasable credit bundle.
type Pack struct {
	Name       string
	Label      string
	Credits    int
	PriceCents int64
}

var packs = map[string]Pack{
	"starter": {Name: "starter", Label: "Starter", Credits: 50, PriceCents: 999},
	"growth":  {Name: "growth", Label: "Growth", Credits: 200, PriceCents: 2999},
	"scale":   {Name: "scale", Label: "Scale", Credits: 750, PriceCents: 8999},
}

// PackByName looks up a pack from the catalog.
func PackByName(name string) (Pack, bool) {
	p, ok := packs[name]
	return p, ok
}

// Receipt is the outcome of settling a completed checkout.
type Receipt struct {
	UserID    string
	Credits   int
	Balance   int
	Duplicate bool
}

type Service struct {
	db            *gorm.DB
	secretKey     string
	webhookSecret string
	successURL    string
	cancelURL     string

	// swappable for tests
	createSession func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

func NewService(db *gorm.DB, secretKey, webhookSecret, successURL, cancelURL string) *Service {
	if secretKey != "" {
		stripe.Key = secretKey
	}
	return &Service{
		db:            db,
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		successURL:    successURL,
		cancelURL:     cancelURL,
		createSession: session.New,
	}
}

// Enabled reports whether checkout can run.
func (s *Service) Enabled() bool { return s.secretKey != "" }

// WebhookEnabled reports whether webhook signatures can be verified.
func (s *Service) WebhookEnabled() bool { return s.webhookSecret != "" }

// Checkout creates a payment-mode Checkout Session for the named pack. The
// user id and credit amount ride along in the session metadata so the
// webhook can settle without any extra lookup.
func (s *Service) Checkout(userID, email, packName string) (*stripe.CheckoutSession, error) {
	pack, ok := PackByName(packName)
	if !ok {
		return nil, fmt.Errorf("unknown credit pack %q", packName)
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("usd"),
				UnitAmount: stripe.Int64(pack.PriceCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(pack.Label + " credit pack"),
					Description: stripe.String(fmt.Sprintf("%d generation credits", pack.Credits)),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		ClientReferenceID: stripe.String(userID),
	}
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	params.AddMetadata("user_id", userID)
	params.AddMetadata("pack", pack.Name)
	params.AddMetadata("credits", strconv.Itoa(pack.Credits))

	sess, err := s.createSession(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session for %s: %w", userID, err)
	}
	log.Printf("Created checkout session %s (%s pack) for user %s", sess.ID, pack.Name, userID)
	return sess, nil
}

// RecordCheckout settles a completed session: one payments row per Stripe
// event, credits granted in the same transaction. A replayed event hits the
// unique index and reports Duplicate instead of granting twice. Sessions
// that are not paid, or that carry no user metadata, are ignored without
// error so Stripe stops retrying them.
func (s *Service) RecordCheckout(ctx context.Context, eventID string, sess *stripe.CheckoutSession) (*Receipt, error) {
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		log.Printf("Ignoring checkout session %s with payment status %s", sess.ID, sess.PaymentStatus)
		return nil, nil
	}

	userID := sess.Metadata["user_id"]
	if userID == "" {
		userID = sess.ClientReferenceID
	}
	bought, _ := strconv.Atoi(sess.Metadata["credits"])
	if userID == "" || bought <= 0 {
		log.Printf("Ignoring checkout session %s without user metadata", sess.ID)
		return nil, nil
	}

	email := sess.CustomerEmail
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		email = sess.CustomerDetails.Email
	}

	receipt := &Receipt{UserID: userID, Credits: bought}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := models.User{ID: userID, Email: email, Tier: "free"}
		if err := tx.Where(models.User{ID: userID}).FirstOrCreate(&user).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.Payment{
			ID:              uuid.NewString(),
			UserID:          userID,
			StripeSessionID: sess.ID,
			StripeEventID:   eventID,
			AmountCents:     sess.AmountTotal,
			Currency:        string(sess.Currency),
			CreditsGranted:  bought,
			Status:          "completed",
		}).Error; err != nil {
			return err
		}
		balance, err := credits.GrantTx(tx, userID, bought, "purchase", "stripe:"+sess.ID)
		if err != nil {
			return err
		}
		receipt.Balance = balance
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		log.Printf("Checkout session %s already settled, skipping", sess.ID)
		receipt.Duplicate = true
		return receipt, nil
	}
	if err != nil {
		return nil, fmt.Errorf("record checkout %s: %w", sess.ID, err)
	}

	log.Printf("Granted %d credits to user %s for checkout %s (balance now %d)",
		bought, userID, sess.ID, receipt.Balance)
	return receipt, nil
}
