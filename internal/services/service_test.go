package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amanmodak98/hisaab/internal/amqp"
	"github.com/amanmodak98/hisaab/internal/core"
	"github.com/amanmodak98/hisaab/internal/ledger"
)

type stubSlots struct {
	data    map[string][]byte
	saveErr error
}

func newStubSlots() *stubSlots {
	return &stubSlots{data: make(map[string][]byte)}
}

func (s *stubSlots) Load(_ context.Context, key string) ([]byte, error) {
	return s.data[key], nil
}

func (s *stubSlots) Save(_ context.Context, key string, payload []byte) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.data[key] = payload
	return nil
}

type stubPublisher struct {
	published []*amqp.ChangeMessage
	err       error
	closed    bool
}

func (p *stubPublisher) PublishChange(_ context.Context, msg *amqp.ChangeMessage) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	return nil
}

func (p *stubPublisher) Close() error {
	p.closed = true
	return nil
}

func testCredit() core.Credit {
	return core.Credit{
		Date:   core.MustParseDate("2024-03-01"),
		Amount: core.Money{Paise: 50000},
		From:   "salary",
	}
}

func TestCreateCreditPersistsAndPublishes(t *testing.T) {
	slots := newStubSlots()
	pub := &stubPublisher{}
	svc := NewLedgerService(ledger.New(slots), pub)

	id, err := svc.CreateCredit(context.Background(), testCredit())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	assert.NotEmpty(t, slots.data[ledger.SlotCredits], "credits slot should be written")
	require.Len(t, pub.published, 1)
	assert.Equal(t, "credits", pub.published[0].Collection)
	assert.Equal(t, "create", pub.published[0].Op)
	assert.Equal(t, id, pub.published[0].ID)
}

func TestCreateCreditValidationSkipsPersist(t *testing.T) {
	slots := newStubSlots()
	pub := &stubPublisher{}
	svc := NewLedgerService(ledger.New(slots), pub)

	_, err := svc.CreateCredit(context.Background(), core.Credit{})
	require.Error(t, err)

	assert.Empty(t, slots.data)
	assert.Empty(t, pub.published)
}

func TestPersistFailurePropagates(t *testing.T) {
	slots := newStubSlots()
	slots.saveErr = errors.New("disk full")
	svc := NewLedgerService(ledger.New(slots), &stubPublisher{})

	_, err := svc.CreateCredit(context.Background(), testCredit())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestPublishFailureIsNotFatal(t *testing.T) {
	slots := newStubSlots()
	pub := &stubPublisher{err: errors.New("broker down")}
	svc := NewLedgerService(ledger.New(slots), pub)

	id, err := svc.CreateCredit(context.Background(), testCredit())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestNilPublisherIsSupported(t *testing.T) {
	svc := NewLedgerService(ledger.New(newStubSlots()), nil)

	_, err := svc.CreateCredit(context.Background(), testCredit())
	require.NoError(t, err)
	require.NoError(t, svc.Close())
}

func TestRenameContactPublishesHistoryRewrite(t *testing.T) {
	slots := newStubSlots()
	pub := &stubPublisher{}
	svc := NewLedgerService(ledger.New(slots), pub)
	ctx := context.Background()

	contactID, err := svc.CreateContact(ctx, core.Contact{Name: "Rahul"})
	require.NoError(t, err)

	_, err = svc.CreateLoan(ctx, core.LoanTransaction{
		Date:          core.MustParseDate("2024-03-02"),
		Type:          core.LoanGiven,
		PersonDisplay: "Rahul",
		Amount:        core.Money{Paise: 20000},
		Purpose:       "cash",
	})
	require.NoError(t, err)

	pub.published = nil
	rewritten, err := svc.RenameContact(ctx, contactID, "Rahul Verma", "")
	require.NoError(t, err)
	assert.Equal(t, 1, rewritten)

	require.Len(t, pub.published, 2)
	assert.Equal(t, "contacts", pub.published[0].Collection)
	assert.Equal(t, "udhaar", pub.published[1].Collection)
}

func TestImportRoundTrip(t *testing.T) {
	slots := newStubSlots()
	pub := &stubPublisher{}
	svc := NewLedgerService(ledger.New(slots), pub)
	ctx := context.Background()

	_, err := svc.CreateCredit(ctx, testCredit())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(&buf))

	other := NewLedgerService(ledger.New(newStubSlots()), pub)
	pub.published = nil
	doc, err := other.Import(ctx, &buf)
	require.NoError(t, err)
	assert.Len(t, doc.Credits, 1)
	assert.Len(t, other.Store().Credits(), 1)

	require.Len(t, pub.published, 1)
	assert.Equal(t, "all", pub.published[0].Collection)
	assert.Equal(t, "replace", pub.published[0].Op)
}

func TestCloseClosesPublisher(t *testing.T) {
	pub := &stubPublisher{}
	svc := NewLedgerService(ledger.New(newStubSlots()), pub)

	require.NoError(t, svc.Close())
	assert.True(t, pub.closed)
}
