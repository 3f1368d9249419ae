// file: internals/features/payments/service/state_machine.go
package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"helmetkiosk_backend/internals/configs"
	"helmetkiosk_backend/internals/features/payments/model"
	statsModel "helmetkiosk_backend/internals/features/stats/model"
	"helmetkiosk_backend/internals/hardware"
)

// StatsRefresher: dipenuhi stats service; di-inject supaya bisa di-fake saat test.
type StatsRefresher interface {
	Refresh(date time.Time) (*statsModel.DailyStatModel, error)
}

/* =========================================================
   Payment State Machine
   PENDING → PAID   (cascade side effect, exactly once)
   PENDING → FAILED
   PAID / FAILED terminal, tidak boleh ditimpa.
========================================================= */

type StateMachine struct {
	Payments  PaymentStore
	Sessions  SessionStore
	Sanitizer hardware.Sanitizer
	Stats     StatsRefresher

	// durasi satu siklus sanitasi (blocking)
	Duration time.Duration

	// serialisasi cascade PAID: winner pegang lock selama hardware jalan,
	// loser race antri di sini lalu baca session milik winner
	mu sync.Mutex
}

func NewStateMachine(payments PaymentStore, sessions SessionStore, sanitizer hardware.Sanitizer, stats StatsRefresher, duration time.Duration) *StateMachine {
	return &StateMachine{
		Payments:  payments,
		Sessions:  sessions,
		Sanitizer: sanitizer,
		Stats:     stats,
		Duration:  duration,
	}
}

/* =========================================================
   CreatePending
========================================================= */

type CreatePendingInput struct {
	Reference      string
	Method         model.PaymentMethod
	AmountCentavos int64

	GatewayID   *string
	ExternalRef *string
	QRImage     *string
}

func (m *StateMachine) CreatePending(in CreatePendingInput) (*model.PaymentModel, error) {
	if in.Reference == "" {
		return nil, ErrMissingInput
	}

	p := &model.PaymentModel{
		PaymentReference:      in.Reference,
		PaymentMethod:         in.Method,
		PaymentAmountCentavos: in.AmountCentavos,
		PaymentCurrency:       configs.PaymentCurrency,
		PaymentStatus:         model.PaymentStatusPending,
		PaymentGatewayID:      in.GatewayID,
		PaymentExternalRef:    in.ExternalRef,
		PaymentQRImage:        in.QRImage,
	}
	if err := m.Payments.Create(p); err != nil {
		return nil, err // ErrDuplicateReference sudah typed dari store
	}
	return p, nil
}

/* =========================================================
   MarkPaid — operasi sentral, idempotent
========================================================= */

type MarkPaidOptions struct {
	GatewayID *string

	// Backfill: buat record PAID on-the-fly kalau referensi tidak dikenal.
	// HANYA untuk jalur notifikasi (webhook bisa datang sebelum create lokal
	// kesimpan); jalur manual/poll dapat ErrNotFound.
	Backfill               bool
	BackfillMethod         model.PaymentMethod
	BackfillAmountCentavos int64
}

// MarkPaid mengembalikan session id milik payment. Aman dipanggil berulang:
// notifikasi duplikat / race manual-vs-webhook converge ke satu session dan
// satu aktivasi hardware.
func (m *StateMachine) MarkPaid(ctx context.Context, reference string, opts MarkPaidOptions) (uuid.UUID, error) {
	p, err := m.Payments.GetByReference(reference)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return uuid.Nil, err
		}
		if !opts.Backfill {
			return uuid.Nil, ErrNotFound
		}
		return m.backfillPaid(ctx, reference, opts)
	}

	switch p.PaymentStatus {
	case model.PaymentStatusPaid:
		// no-op idempotent: kembalikan session yang sudah ada
		log.Printf("✅ [STATE] payment sudah PAID, no-op: %s", reference)
		return m.sessionIDForPaid(ctx, p.PaymentID)

	case model.PaymentStatusFailed:
		// terminal, jangan ditimpa
		log.Printf("❌ [STATE] tolak PAID untuk payment FAILED: %s", reference)
		return uuid.Nil, ErrInvalidTransition
	}

	// PENDING → PAID lewat satu UPDATE kondisional; RowsAffected menentukan
	// siapa yang boleh jalanin cascade side effect
	won, err := m.Payments.MarkPaidIfPending(reference, time.Now(), opts.GatewayID)
	if err != nil {
		return uuid.Nil, err
	}
	if !won {
		// kalah race = kasus "already PAID": tunggu session milik winner
		return m.sessionIDForPaid(ctx, p.PaymentID)
	}

	return m.runPaidCascade(ctx, p.PaymentID, reference)
}

// backfillPaid: notifikasi datang untuk referensi yang belum ada di DB.
func (m *StateMachine) backfillPaid(ctx context.Context, reference string, opts MarkPaidOptions) (uuid.UUID, error) {
	method := opts.BackfillMethod
	if method == "" {
		method = model.PaymentMethodQRPH
	}

	now := time.Now()
	p := &model.PaymentModel{
		PaymentReference:      reference,
		PaymentMethod:         method,
		PaymentAmountCentavos: opts.BackfillAmountCentavos,
		PaymentCurrency:       configs.PaymentCurrency,
		PaymentStatus:         model.PaymentStatusPaid,
		PaymentGatewayID:      opts.GatewayID,
		PaymentPaidAt:         &now,
	}
	if err := m.Payments.Create(p); err != nil {
		if errors.Is(err, ErrDuplicateReference) {
			// race dengan create lokal: record muncul barusan, proses normal
			return m.MarkPaid(ctx, reference, MarkPaidOptions{GatewayID: opts.GatewayID})
		}
		return uuid.Nil, err
	}

	log.Printf("🆕 [STATE] backfill payment PAID dari notifikasi: %s", reference)
	return m.runPaidCascade(ctx, p.PaymentID, reference)
}

// runPaidCascade: session → hardware → complete → stats. Dipegang mutex penuh
// supaya cuma satu aktivasi in-flight untuk seluruh kiosk.
func (m *StateMachine) runPaidCascade(ctx context.Context, paymentID uuid.UUID, reference string) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, err := m.Sessions.CreateSession(paymentID, int(m.Duration.Seconds()))
	if err != nil {
		return uuid.Nil, err
	}

	log.Printf("🧼 [STATE] triggering sanitizer untuk session %s (ref=%s)", sess.SessionID, reference)

	if err := m.Sanitizer.Activate(ctx, m.Duration); err != nil {
		// session dibiarkan tanpa completed_at → kelihatan di dashboard admin
		log.Printf("❌ [STATE] aktivasi sanitizer gagal: %v", err)
		return sess.SessionID, err
	}

	if err := m.Sessions.CompleteSession(sess.SessionID); err != nil {
		return sess.SessionID, err
	}

	if _, err := m.Stats.Refresh(time.Now()); err != nil {
		// stats eventually consistent, cukup log
		log.Printf("⚠️ [STATE] refresh stats gagal: %v", err)
	}

	log.Printf("✅ [STATE] payment %s selesai diproses, session %s complete", reference, sess.SessionID)
	return sess.SessionID, nil
}

func (m *StateMachine) latestSessionID(paymentID uuid.UUID) uuid.UUID {
	sess, err := m.Sessions.LatestForPayment(paymentID)
	if err != nil {
		return uuid.Nil
	}
	return sess.SessionID
}

// sessionIDForPaid menunggu sampai session milik cascade winner kelihatan.
// Loser race bisa nyampe sini SEBELUM winner sempat masuk cascade (UPDATE
// winner sudah commit tapi belum return), jadi ErrNotFound harus di-retry,
// bukan ditelan jadi uuid.Nil. Lock mu per percobaan: selama cascade jalan,
// Lock ini ngantri sampai winner selesai.
func (m *StateMachine) sessionIDForPaid(ctx context.Context, paymentID uuid.UUID) (uuid.UUID, error) {
	deadline := time.Now().Add(m.Duration + 5*time.Second)
	for {
		m.mu.Lock()
		sess, err := m.Sessions.LatestForPayment(paymentID)
		m.mu.Unlock()
		if err == nil {
			return sess.SessionID, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return uuid.Nil, err
		}
		if time.Now().After(deadline) {
			return uuid.Nil, ErrNotFound
		}
		select {
		case <-ctx.Done():
			return uuid.Nil, ctx.Err()
		case <-time.After(20 * time.Millisecond):
		}
	}
}

/* =========================================================
   MarkFailed — PENDING → FAILED saja
========================================================= */

func (m *StateMachine) MarkFailed(reference string) error {
	p, err := m.Payments.GetByReference(reference)
	if err != nil {
		return err
	}
	if p.PaymentStatus.IsTerminal() {
		// no-op di state terminal
		return nil
	}
	_, err = m.Payments.MarkFailedIfPending(reference)
	return err
}

/* =========================================================
   CheckStatus — jalur polling kiosk
========================================================= */

func (m *StateMachine) CheckStatus(reference string) (model.PaymentStatus, *uuid.UUID, error) {
	p, err := m.Payments.GetByReference(reference)
	if err != nil {
		return "", nil, err
	}

	if p.PaymentStatus == model.PaymentStatusPaid {
		if id := m.latestSessionID(p.PaymentID); id != uuid.Nil {
			return p.PaymentStatus, &id, nil
		}
	}
	return p.PaymentStatus, nil, nil
}
