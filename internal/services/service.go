package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/amanmodak98/hisaab/internal/amqp"
	"github.com/amanmodak98/hisaab/internal/backup"
	"github.com/amanmodak98/hisaab/internal/core"
	"github.com/amanmodak98/hisaab/internal/ledger"
)

// ChangePublisher pushes record change notifications to interested consumers.
type ChangePublisher interface {
	PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
	Close() error
}

// LedgerService orchestrates ledger mutations across the in-memory store,
// the slot store and the change bus.
type LedgerService struct {
	store     *ledger.Store
	publisher ChangePublisher
}

func NewLedgerService(store *ledger.Store, publisher ChangePublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
	}
}

// Store exposes the underlying store for read paths.
func (s *LedgerService) Store() *ledger.Store {
	return s.store
}

func (s *LedgerService) CreateCredit(ctx context.Context, c core.Credit) (string, error) {
	id, err := s.store.AddCredit(c)
	if err != nil {
		return "", err
	}
	if err := s.persist(ctx); err != nil {
		return "", fmt.Errorf("persist credit: %w", err)
	}
	s.publish(ctx, ledger.ColCredits, ledger.OpCreate, id)
	return id, nil
}

func (s *LedgerService) UpdateCredit(ctx context.Context, id string, c core.Credit) error {
	if err := s.store.UpdateCredit(id, c); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		return fmt.Errorf("persist credit: %w", err)
	}
	s.publish(ctx, ledger.ColCredits, ledger.OpUpdate, id)
	return nil
}

func (s *LedgerService) DeleteCredit(ctx context.Context, id string) error {
	if err := s.store.DeleteCredit(id); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		return fmt.Errorf("persist credit delete: %w", err)
	}
	s.publish(ctx, ledger.ColCredits, ledger.OpDelete, id)
	return nil
}

func (s *LedgerService) CreateExpense(ctx context.Context, e core.Expense) (string, error) {
	id, err := s.store.AddExpense(e)
	if err != nil {
		return "", err
	}
	if err := s.persist(ctx); err != nil {
		return "", fmt.Errorf("persist expense: %w", err)
	}
	s.publish(ctx, ledger.ColExpenses, ledger.OpCreate, id)
	return id, nil
}

func (s *LedgerService) UpdateExpense(ctx context.Context, id string, e core.Expense) error {
	if err := s.store.UpdateExpense(id, e); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		return fmt.Errorf("persist expense: %w", err)
	}
	s.publish(ctx, ledger.ColExpenses, ledger.OpUpdate, id)
	return nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(id); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		return fmt.Errorf("persist expense delete: %w", err)
	}
	s.publish(ctx, ledger.ColExpenses, ledger.OpDelete, id)
	return nil
}

func (s *LedgerService) CreateLoan(ctx context.Context, tx core.LoanTransaction) (string, error) {
	id, err := s.store.AddLoan(tx)
	if err != nil {
		return "", err
	}
	if err := s.persist(ctx); err != nil {
		return "", fmt.Errorf("persist loan: %w", err)
	}
	s.publish(ctx, ledger.ColUdhaar, ledger.OpCreate, id)
	return id, nil
}

func (s *LedgerService) UpdateLoan(ctx context.Context, id string, tx core.LoanTransaction) error {
	if err := s.store.UpdateLoan(id, tx); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		return fmt.Errorf("persist loan: %w", err)
	}
	s.publish(ctx, ledger.ColUdhaar, ledger.OpUpdate, id)
	return nil
}

func (s *LedgerService) DeleteLoan(ctx context.Context, id string) error {
	if err := s.store.DeleteLoan(id); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		return fmt.Errorf("persist loan delete: %w", err)
	}
	s.publish(ctx, ledger.ColUdhaar, ledger.OpDelete, id)
	return nil
}

func (s *LedgerService) CreateContact(ctx context.Context, c core.Contact) (string, error) {
	id, err := s.store.AddContact(c)
	if err != nil {
		return "", err
	}
	if err := s.persist(ctx); err != nil {
		return "", fmt.Errorf("persist contact: %w", err)
	}
	s.publish(ctx, ledger.ColContacts, ledger.OpCreate, id)
	return id, nil
}

// RenameContact renames a contact and rewrites the loan history carrying the
// old name. Returns the number of rewritten loan transactions.
func (s *LedgerService) RenameContact(ctx context.Context, id, newName, phone string) (int, error) {
	rewritten, err := s.store.RenameContact(id, newName, phone)
	if err != nil {
		return 0, err
	}
	if err := s.persist(ctx); err != nil {
		return rewritten, fmt.Errorf("persist contact rename: %w", err)
	}
	s.publish(ctx, ledger.ColContacts, ledger.OpUpdate, id)
	if rewritten > 0 {
		s.publish(ctx, ledger.ColUdhaar, ledger.OpUpdate, id)
	}
	return rewritten, nil
}

func (s *LedgerService) DeleteContact(ctx context.Context, id string) error {
	if err := s.store.DeleteContact(id); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		return fmt.Errorf("persist contact delete: %w", err)
	}
	s.publish(ctx, ledger.ColContacts, ledger.OpDelete, id)
	return nil
}

// DeleteContactCascade removes a contact together with its loan transactions.
// Returns the number of removed transactions.
func (s *LedgerService) DeleteContactCascade(ctx context.Context, id string) (int, error) {
	removed, err := s.store.DeleteContactCascade(id)
	if err != nil {
		return 0, err
	}
	if err := s.persist(ctx); err != nil {
		return removed, fmt.Errorf("persist contact cascade: %w", err)
	}
	s.publish(ctx, ledger.ColContacts, ledger.OpDelete, id)
	if removed > 0 {
		s.publish(ctx, ledger.ColUdhaar, ledger.OpDelete, id)
	}
	return removed, nil
}

// Import replaces the whole ledger with the contents of a backup document.
func (s *LedgerService) Import(ctx context.Context, r io.Reader) (backup.Document, error) {
	doc, err := backup.Import(r, s.store)
	if err != nil {
		return backup.Document{}, err
	}
	if err := s.persist(ctx); err != nil {
		return doc, fmt.Errorf("persist import: %w", err)
	}
	s.publish(ctx, ledger.ColAll, ledger.OpReplace, "")
	return doc, nil
}

// Export writes the whole ledger as a backup document.
func (s *LedgerService) Export(w io.Writer) error {
	return backup.Export(w, s.store)
}

func (s *LedgerService) persist(ctx context.Context) error {
	return s.store.Persist(ctx)
}

func (s *LedgerService) publish(ctx context.Context, col ledger.Collection, op ledger.Op, id string) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewChangeMessage(string(col), string(op), id)
	if err := s.publisher.PublishChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			"collection", col, "op", op, "id", id, "error", err)
		// The mutation is already persisted, a lost notification only
		// delays the mirror until the next periodic refresh.
	}
}

// Close closes the change publisher, if any.
func (s *LedgerService) Close() error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Close(); err != nil {
		return fmt.Errorf("close publisher: %w", err)
	}
	return nil
}
