// file: internals/features/payments/service/state_machine_test.go
package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"helmetkiosk_backend/internals/features/payments/model"
	sanitizationModel "helmetkiosk_backend/internals/features/sanitization/model"
	statsModel "helmetkiosk_backend/internals/features/stats/model"
)

/* =========================================================
   Fakes in-memory (tanpa DB)
========================================================= */

type fakePaymentStore struct {
	mu       sync.Mutex
	payments map[string]*model.PaymentModel
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{payments: map[string]*model.PaymentModel{}}
}

func (s *fakePaymentStore) Create(p *model.PaymentModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.payments[p.PaymentReference]; ok {
		return ErrDuplicateReference
	}
	p.PaymentID = uuid.New()
	cp := *p
	s.payments[p.PaymentReference] = &cp
	return nil
}

func (s *fakePaymentStore) GetByReference(reference string) (*model.PaymentModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[reference]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakePaymentStore) GetByGatewayID(gatewayID string) (*model.PaymentModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payments {
		if p.PaymentGatewayID != nil && *p.PaymentGatewayID == gatewayID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakePaymentStore) GetByExternalRef(externalRef string) (*model.PaymentModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payments {
		if p.PaymentExternalRef != nil && *p.PaymentExternalRef == externalRef {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakePaymentStore) FindRecentPendingByMethodAndAmount(method model.PaymentMethod, amountCentavos int64) (*model.PaymentModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payments {
		if p.PaymentStatus == model.PaymentStatusPending && p.PaymentMethod == method && p.PaymentAmountCentavos == amountCentavos {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakePaymentStore) MarkPaidIfPending(reference string, paidAt time.Time, gatewayID *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[reference]
	if !ok || p.PaymentStatus != model.PaymentStatusPending {
		return false, nil
	}
	p.PaymentStatus = model.PaymentStatusPaid
	p.PaymentPaidAt = &paidAt
	if gatewayID != nil {
		p.PaymentGatewayID = gatewayID
	}
	return true, nil
}

func (s *fakePaymentStore) MarkFailedIfPending(reference string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[reference]
	if !ok || p.PaymentStatus != model.PaymentStatusPending {
		return false, nil
	}
	p.PaymentStatus = model.PaymentStatusFailed
	return true, nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions []*sanitizationModel.SanitizationSessionModel
}

func (s *fakeSessionStore) CreateSession(paymentID uuid.UUID, durationSeconds int) (*sanitizationModel.SanitizationSessionModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &sanitizationModel.SanitizationSessionModel{
		SessionID:              uuid.New(),
		SessionPaymentID:       paymentID,
		SessionStartedAt:       time.Now(),
		SessionDurationSeconds: durationSeconds,
	}
	s.sessions = append(s.sessions, sess)
	return sess, nil
}

func (s *fakeSessionStore) CompleteSession(sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.SessionID == sessionID {
			now := time.Now()
			sess.SessionCompletedAt = &now
			return nil
		}
	}
	return ErrNotFound
}

func (s *fakeSessionStore) LatestForPayment(paymentID uuid.UUID) (*sanitizationModel.SanitizationSessionModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.sessions) - 1; i >= 0; i-- {
		if s.sessions[i].SessionPaymentID == paymentID {
			return s.sessions[i], nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeSessionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *fakeSessionStore) completedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sess := range s.sessions {
		if sess.SessionCompletedAt != nil {
			n++
		}
	}
	return n
}

type fakeSanitizer struct {
	mu          sync.Mutex
	activations int
	delay       time.Duration
	err         error
}

func (f *fakeSanitizer) Activate(_ context.Context, _ time.Duration) error {
	f.mu.Lock()
	f.activations++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.err
}

func (f *fakeSanitizer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activations
}

type fakeStats struct {
	mu        sync.Mutex
	refreshes int
}

func (f *fakeStats) Refresh(time.Time) (*statsModel.DailyStatModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return &statsModel.DailyStatModel{}, nil
}

func newTestMachine() (*StateMachine, *fakePaymentStore, *fakeSessionStore, *fakeSanitizer, *fakeStats) {
	payments := newFakePaymentStore()
	sessions := &fakeSessionStore{}
	sanitizer := &fakeSanitizer{}
	stats := &fakeStats{}
	m := NewStateMachine(payments, sessions, sanitizer, stats, 10*time.Millisecond)
	return m, payments, sessions, sanitizer, stats
}

func mustCreatePending(t *testing.T, m *StateMachine, ref string) {
	t.Helper()
	if _, err := m.CreatePending(CreatePendingInput{
		Reference:      ref,
		Method:         model.PaymentMethodQRPH,
		AmountCentavos: 100,
	}); err != nil {
		t.Fatalf("CreatePending: %v", err)
	}
}

/* =========================================================
   Tests
========================================================= */

func TestMarkPaid_HappyPath(t *testing.T) {
	m, payments, sessions, sanitizer, stats := newTestMachine()
	mustCreatePending(t, m, "helmet-1-abc")

	sessID, err := m.MarkPaid(context.Background(), "helmet-1-abc", MarkPaidOptions{})
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if sessID == uuid.Nil {
		t.Fatal("session id kosong")
	}

	p, _ := payments.GetByReference("helmet-1-abc")
	if p.PaymentStatus != model.PaymentStatusPaid {
		t.Errorf("status = %s, want PAID", p.PaymentStatus)
	}
	if p.PaymentPaidAt == nil {
		t.Error("paid_at belum di-set")
	}
	if sanitizer.count() != 1 {
		t.Errorf("activations = %d, want 1", sanitizer.count())
	}
	if sessions.completedCount() != 1 {
		t.Errorf("completed sessions = %d, want 1", sessions.completedCount())
	}
	if stats.refreshes != 1 {
		t.Errorf("stats refreshes = %d, want 1", stats.refreshes)
	}
}

func TestMarkPaid_ConcurrentExactlyOnce(t *testing.T) {
	m, _, sessions, sanitizer, _ := newTestMachine()
	mustCreatePending(t, m, "helmet-2-abc")

	const n = 20
	results := make([]uuid.UUID, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = m.MarkPaid(context.Background(), "helmet-2-abc", MarkPaidOptions{})
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d error: %v", i, errs[i])
		}
		if results[i] == uuid.Nil {
			t.Fatalf("caller %d dapat session nil", i)
		}
		if results[i] != results[0] {
			t.Errorf("caller %d dapat session %s, caller 0 dapat %s", i, results[i], results[0])
		}
	}
	if sanitizer.count() != 1 {
		t.Errorf("activations = %d, want exactly 1", sanitizer.count())
	}
	if sessions.count() != 1 {
		t.Errorf("sessions = %d, want exactly 1", sessions.count())
	}
}

// store yang UPDATE kondisionalnya commit dulu baru return (window DB lambat):
// loser sempat lihat hasil commit sebelum winner mulai cascade
type slowCommitStore struct {
	*fakePaymentStore
	delay time.Duration
}

func (s *slowCommitStore) MarkPaidIfPending(reference string, paidAt time.Time, gatewayID *string) (bool, error) {
	won, err := s.fakePaymentStore.MarkPaidIfPending(reference, paidAt, gatewayID)
	if won {
		time.Sleep(s.delay)
	}
	return won, err
}

func TestMarkPaid_LoserWaitsForWinnerSession(t *testing.T) {
	payments := newFakePaymentStore()
	slow := &slowCommitStore{fakePaymentStore: payments, delay: 100 * time.Millisecond}
	sessions := &fakeSessionStore{}
	sanitizer := &fakeSanitizer{}
	m := NewStateMachine(slow, sessions, sanitizer, &fakeStats{}, 10*time.Millisecond)
	mustCreatePending(t, m, "helmet-race-abc")

	var wg sync.WaitGroup
	results := make([]uuid.UUID, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i == 1 {
				// pastikan caller kedua jatuh di window commit-return winner
				time.Sleep(30 * time.Millisecond)
			}
			results[i], errs[i] = m.MarkPaid(context.Background(), "helmet-race-abc", MarkPaidOptions{})
		}(i)
	}
	wg.Wait()

	for i := 0; i < 2; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d error: %v", i, errs[i])
		}
		if results[i] == uuid.Nil {
			t.Fatalf("caller %d dapat session nil", i)
		}
	}
	if results[0] != results[1] {
		t.Errorf("session berbeda: %s vs %s", results[0], results[1])
	}
	if sanitizer.count() != 1 {
		t.Errorf("activations = %d, want 1", sanitizer.count())
	}
}

func TestMarkPaid_DuplicateNotificationNoOp(t *testing.T) {
	m, _, _, sanitizer, _ := newTestMachine()
	mustCreatePending(t, m, "helmet-3-abc")

	first, err := m.MarkPaid(context.Background(), "helmet-3-abc", MarkPaidOptions{})
	if err != nil {
		t.Fatalf("MarkPaid pertama: %v", err)
	}
	second, err := m.MarkPaid(context.Background(), "helmet-3-abc", MarkPaidOptions{})
	if err != nil {
		t.Fatalf("MarkPaid kedua: %v", err)
	}
	if first != second {
		t.Errorf("duplikat harus dapat session sama: %s vs %s", first, second)
	}
	if sanitizer.count() != 1 {
		t.Errorf("activations = %d, want 1", sanitizer.count())
	}
}

func TestMarkPaid_FailedIsTerminal(t *testing.T) {
	m, _, _, sanitizer, _ := newTestMachine()
	mustCreatePending(t, m, "helmet-4-abc")

	if err := m.MarkFailed("helmet-4-abc"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	if _, err := m.MarkPaid(context.Background(), "helmet-4-abc", MarkPaidOptions{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
	if sanitizer.count() != 0 {
		t.Errorf("sanitizer tidak boleh nyala untuk payment FAILED")
	}
}

func TestMarkPaid_NotFoundWithoutBackfill(t *testing.T) {
	m, _, _, _, _ := newTestMachine()
	if _, err := m.MarkPaid(context.Background(), "helmet-ghost", MarkPaidOptions{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMarkPaid_BackfillUnknownReference(t *testing.T) {
	m, payments, _, sanitizer, _ := newTestMachine()

	sessID, err := m.MarkPaid(context.Background(), "helmet-5-abc", MarkPaidOptions{
		Backfill:               true,
		BackfillAmountCentavos: 100,
	})
	if err != nil {
		t.Fatalf("MarkPaid backfill: %v", err)
	}
	if sessID == uuid.Nil {
		t.Fatal("session id kosong")
	}

	p, err := payments.GetByReference("helmet-5-abc")
	if err != nil {
		t.Fatalf("payment backfill tidak tersimpan: %v", err)
	}
	if p.PaymentStatus != model.PaymentStatusPaid {
		t.Errorf("status = %s, want PAID", p.PaymentStatus)
	}
	if p.PaymentMethod != model.PaymentMethodQRPH {
		t.Errorf("method = %s, want default QRPH", p.PaymentMethod)
	}
	if sanitizer.count() != 1 {
		t.Errorf("activations = %d, want 1", sanitizer.count())
	}
}

func TestMarkPaid_SanitizerFailureLeavesSessionOpen(t *testing.T) {
	m, payments, sessions, sanitizer, _ := newTestMachine()
	sanitizer.err = errors.New("relay stuck")
	mustCreatePending(t, m, "helmet-6-abc")

	sessID, err := m.MarkPaid(context.Background(), "helmet-6-abc", MarkPaidOptions{})
	if err == nil {
		t.Fatal("harusnya error dari sanitizer")
	}
	if sessID == uuid.Nil {
		t.Error("session tetap dibuat meski hardware gagal")
	}
	if sessions.completedCount() != 0 {
		t.Errorf("session gagal tidak boleh completed")
	}

	// payment tetap PAID: uang sudah diterima
	p, _ := payments.GetByReference("helmet-6-abc")
	if p.PaymentStatus != model.PaymentStatusPaid {
		t.Errorf("status = %s, want PAID", p.PaymentStatus)
	}

	// retry tidak boleh mengaktifkan hardware lagi (status sudah PAID)
	if _, err := m.MarkPaid(context.Background(), "helmet-6-abc", MarkPaidOptions{}); err != nil {
		t.Fatalf("MarkPaid retry: %v", err)
	}
	if sanitizer.count() != 1 {
		t.Errorf("activations = %d, want 1", sanitizer.count())
	}
}

func TestMarkFailed(t *testing.T) {
	t.Run("PENDING jadi FAILED", func(t *testing.T) {
		m, payments, _, _, _ := newTestMachine()
		mustCreatePending(t, m, "helmet-7-abc")
		if err := m.MarkFailed("helmet-7-abc"); err != nil {
			t.Fatalf("MarkFailed: %v", err)
		}
		p, _ := payments.GetByReference("helmet-7-abc")
		if p.PaymentStatus != model.PaymentStatusFailed {
			t.Errorf("status = %s, want FAILED", p.PaymentStatus)
		}
	})

	t.Run("PAID tidak ditimpa", func(t *testing.T) {
		m, payments, _, _, _ := newTestMachine()
		mustCreatePending(t, m, "helmet-8-abc")
		if _, err := m.MarkPaid(context.Background(), "helmet-8-abc", MarkPaidOptions{}); err != nil {
			t.Fatalf("MarkPaid: %v", err)
		}
		if err := m.MarkFailed("helmet-8-abc"); err != nil {
			t.Fatalf("MarkFailed di PAID harus no-op, dapat %v", err)
		}
		p, _ := payments.GetByReference("helmet-8-abc")
		if p.PaymentStatus != model.PaymentStatusPaid {
			t.Errorf("status = %s, want PAID tetap", p.PaymentStatus)
		}
	})

	t.Run("referensi tidak dikenal", func(t *testing.T) {
		m, _, _, _, _ := newTestMachine()
		if err := m.MarkFailed("helmet-ghost"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestCheckStatus(t *testing.T) {
	m, _, _, _, _ := newTestMachine()
	mustCreatePending(t, m, "helmet-9-abc")

	status, sessID, err := m.CheckStatus("helmet-9-abc")
	if err != nil {
		t.Fatalf("CheckStatus: %v", err)
	}
	if status != model.PaymentStatusPending || sessID != nil {
		t.Errorf("PENDING harus tanpa session, dapat status=%s sess=%v", status, sessID)
	}

	paidSess, err := m.MarkPaid(context.Background(), "helmet-9-abc", MarkPaidOptions{})
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}

	status, sessID, err = m.CheckStatus("helmet-9-abc")
	if err != nil {
		t.Fatalf("CheckStatus: %v", err)
	}
	if status != model.PaymentStatusPaid {
		t.Errorf("status = %s, want PAID", status)
	}
	if sessID == nil || *sessID != paidSess {
		t.Errorf("session = %v, want %s", sessID, paidSess)
	}

	if _, _, err := m.CheckStatus("helmet-ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCreatePending(t *testing.T) {
	m, _, _, _, _ := newTestMachine()

	t.Run("referensi kosong ditolak", func(t *testing.T) {
		if _, err := m.CreatePending(CreatePendingInput{}); !errors.Is(err, ErrMissingInput) {
			t.Errorf("err = %v, want ErrMissingInput", err)
		}
	})

	t.Run("referensi duplikat ditolak", func(t *testing.T) {
		mustCreatePending(t, m, "helmet-10-abc")
		_, err := m.CreatePending(CreatePendingInput{
			Reference: "helmet-10-abc",
			Method:    model.PaymentMethodQRPH,
		})
		if !errors.Is(err, ErrDuplicateReference) {
			t.Errorf("err = %v, want ErrDuplicateReference", err)
		}
	})
}
