// Package credits keeps the paid balance behind generation. Every balance
// change appends a ledger row, so the users.credits column can always be
// audited against credit_transactions.
package credits

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nevisai/platform/internal/metrics"
	"github.com/nevisai/platform/internal/models"
)

// What one generation costs in credits once the monthly allowance is spent.
const (
	CostText     = 1
	CostImage    = 2
	CostAnalysis = 2
)

// ErrInsufficientCredits means the balance cannot cover the requested spend.
var ErrInsufficientCredits = errors.New("insufficient credits")

// InsufficientCreditsError is the handler-facing form: the balance is
// positive but short of the price.
type InsufficientCreditsError struct {
	Balance int
	Cost    int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("Insufficient credits (%d remaining, %d needed)", e.Balance, e.Cost)
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// EnsureUser returns the user row, creating it on first sight with the free
// tier and an empty balance.
func (s *Service) EnsureUser(ctx context.Context, userID, email string) (*models.User, error) {
	user := models.User{ID: userID, Email: email, Tier: "free"}
	err := s.db.WithContext(ctx).
		Where(models.User{ID: userID}).
		Attrs(user).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, fmt.Errorf("ensure user %s: %w", userID, err)
	}
	return &user, nil
}

// Balance reads the user's current credit balance.
func (s *Service) Balance(ctx context.Context, userID string) (int, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return 0, fmt.Errorf("balance for %s: %w", userID, err)
	}
	return user.Credits, nil
}

// Spend takes amount credits from the user inside one transaction. The row is
// locked first, so two concurrent spends cannot both succeed on the last
// credit. Returns the balance after the spend, or ErrInsufficientCredits with
// the untouched balance.
func (s *Service) Spend(ctx context.Context, userID string, amount int, reason, reference string) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("spend amount must be positive, got %d", amount)
	}
	balance := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&user, "id = ?", userID).Error; err != nil {
			return err
		}
		if user.Credits < amount {
			balance = user.Credits
			return ErrInsufficientCredits
		}
		balance = user.Credits - amount
		if err := tx.Model(&user).Update("credits", balance).Error; err != nil {
			return err
		}
		return tx.Create(&models.CreditTransaction{
			ID:           uuid.NewString(),
			UserID:       userID,
			Delta:        -amount,
			BalanceAfter: balance,
			Reason:       reason,
			Reference:    reference,
		}).Error
	})
	if errors.Is(err, ErrInsufficientCredits) {
		return balance, err
	}
	if err != nil {
		return 0, fmt.Errorf("spend %d credits for %s: %w", amount, userID, err)
	}
	metrics.AddCreditsSpent(reason, amount)
	return balance, nil
}

// Grant adds amount credits to the user and appends the ledger row.
func (s *Service) Grant(ctx context.Context, userID string, amount int, reason, reference string) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("grant amount must be positive, got %d", amount)
	}
	balance := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		balance, err = GrantTx(tx, userID, amount, reason, reference)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("grant %d credits for %s: %w", amount, userID, err)
	}
	return balance, nil
}

// GrantTx applies a grant inside an existing transaction, for callers that
// need the grant atomic with their own writes (the Stripe webhook). The user
// row is locked the same way Spend locks it.
func GrantTx(tx *gorm.DB, userID string, amount int, reason, reference string) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("grant amount must be positive, got %d", amount)
	}
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", userID).Error; err != nil {
		return 0, err
	}
	balance := user.Credits + amount
	if err := tx.Model(&user).Update("credits", balance).Error; err != nil {
		return 0, err
	}
	if err := tx.Create(&models.CreditTransaction{
		ID:           uuid.NewString(),
		UserID:       userID,
		Delta:        amount,
		BalanceAfter: balance,
		Reason:       reason,
		Reference:    reference,
	}).Error; err != nil {
		return 0, err
	}
	return balance, nil
}

// Refund returns credits taken by a spend whose work then failed.
func (s *Service) Refund(ctx context.Context, userID string, amount int, reference string) (int, error) {
	return s.Grant(ctx, userID, amount, "refund", reference)
}
