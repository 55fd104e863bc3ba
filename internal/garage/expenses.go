package garage

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/Driverassistance/driveassist-app/internal/db"
	"github.com/Driverassistance/driveassist-app/internal/models"
	"github.com/Driverassistance/driveassist-app/internal/status"
)

// ExpenseInput is a new ledger entry. A zero At means now.
type ExpenseInput struct {
	Category   models.ExpenseCategory `json:"category"`
	Amount     float64                `json:"amount"`
	OdometerKm string                 `json:"odometer"`
	Note       string                 `json:"note"`
	At         time.Time              `json:"at"`
}

// PartsInput is a new parts request.
type PartsInput struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Note     string `json:"note"`
}

// Expenses returns the ledger in the order entries were added.
func (s *Service) Expenses(ctx context.Context) (models.ExpenseLedger, error) {
	raw, err := s.read(ctx, db.KeyExpenses)
	if err != nil {
		return models.ExpenseLedger{}, err
	}
	return models.DecodeExpenses(raw), nil
}

func (s *Service) expensesForUpdate(ctx context.Context) (models.ExpenseLedger, error) {
	raw, err := s.readForUpdate(ctx, db.KeyExpenses)
	if err != nil {
		return models.ExpenseLedger{}, err
	}
	return models.DecodeExpenses(raw), nil
}

// AddExpense validates and appends an entry.
func (s *Service) AddExpense(ctx context.Context, in ExpenseInput) (models.Expense, error) {
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) || in.Amount <= 0 {
		return models.Expense{}, &ValidationError{Field: "amount", Reason: "must be positive"}
	}
	if in.Category == "" {
		in.Category = models.ExpenseOther
	}
	if !models.IsValidExpenseCategory(in.Category) {
		return models.Expense{}, &ValidationError{Field: "category", Reason: "unknown category"}
	}
	exp := models.Expense{
		ID:       uuid.NewString(),
		Category: in.Category,
		Amount:   in.Amount,
		Note:     strings.TrimSpace(in.Note),
	}
	if km := strings.TrimSpace(in.OdometerKm); km != "" {
		n, ok := status.ParseKm(km)
		if !ok {
			return models.Expense{}, &ValidationError{Field: "odometer", Reason: "digits only"}
		}
		exp.OdometerKm = &n
	}
	at := in.At
	if at.IsZero() {
		at = s.now()
	}
	exp.Timestamp = at.UnixMilli()

	ledger, err := s.expensesForUpdate(ctx)
	if err != nil {
		return models.Expense{}, err
	}
	ledger = append(ledger, exp)
	if err := s.writeRecord(ctx, db.KeyExpenses, ledger); err != nil {
		return models.Expense{}, err
	}
	log.WithFields(log.Fields{"id": exp.ID, "category": exp.Category, "amount": exp.Amount}).Info("expense added")
	return exp, nil
}

// RemoveExpense deletes an entry by id.
func (s *Service) RemoveExpense(ctx context.Context, id string) error {
	ledger, err := s.expensesForUpdate(ctx)
	if err != nil {
		return err
	}
	i, ok := ledger.Index(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	ledger = append(ledger[:i:i], ledger[i+1:]...)
	return s.writeRecord(ctx, db.KeyExpenses, ledger)
}

// MonthlySummary totals the calendar month containing month. A zero month
// means the current one.
func (s *Service) MonthlySummary(ctx context.Context, month time.Time) (models.MonthlySummary, error) {
	if month.IsZero() {
		month = s.now()
	}
	ledger, err := s.Expenses(ctx)
	if err != nil {
		return models.MonthlySummary{}, err
	}
	return ledger.Monthly(month), nil
}

// PartsRequests returns the saved requests, newest first.
func (s *Service) PartsRequests(ctx context.Context) (models.PartsRequests, error) {
	raw, err := s.read(ctx, db.KeyPartsRequests)
	if err != nil {
		return models.PartsRequests{}, err
	}
	return models.DecodePartsRequests(raw), nil
}

// AddPartsRequest saves a request tagged with the current vehicle.
func (s *Service) AddPartsRequest(ctx context.Context, in PartsInput) (models.PartsRequest, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.PartsRequest{}, &ValidationError{Field: "name", Reason: "required"}
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = models.DefaultPartCategory
	}

	profile, err := s.Profile(ctx)
	if err != nil {
		return models.PartsRequest{}, err
	}
	raw, err := s.readForUpdate(ctx, db.KeyPartsRequests)
	if err != nil {
		return models.PartsRequest{}, err
	}
	req := models.PartsRequest{
		ID:        uuid.NewString(),
		Name:      name,
		Category:  category,
		Note:      strings.TrimSpace(in.Note),
		VIN:       strings.ToUpper(profile.VIN),
		Brand:     profile.Brand,
		Model:     profile.Model,
		CreatedAt: s.now().UTC(),
	}
	list := append(models.PartsRequests{req}, models.DecodePartsRequests(raw)...)
	if err := s.writeRecord(ctx, db.KeyPartsRequests, list); err != nil {
		return models.PartsRequest{}, err
	}
	log.WithFields(log.Fields{"id": req.ID, "name": req.Name}).Info("parts request saved")
	return req, nil
}

// RemovePartsRequest deletes a request by id.
func (s *Service) RemovePartsRequest(ctx context.Context, id string) error {
	raw, err := s.readForUpdate(ctx, db.KeyPartsRequests)
	if err != nil {
		return err
	}
	list, ok := models.DecodePartsRequests(raw).Without(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.writeRecord(ctx, db.KeyPartsRequests, list)
}
