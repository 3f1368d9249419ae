// file: internals/features/payments/service/store.go
package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"helmetkiosk_backend/internals/features/payments/model"
	sanitizationModel "helmetkiosk_backend/internals/features/sanitization/model"
)

/* =========================================================
   Store interfaces
   - state machine & resolver hanya kenal interface ini,
     biar bisa dites tanpa DB
========================================================= */

type PaymentStore interface {
	Create(p *model.PaymentModel) error
	GetByReference(reference string) (*model.PaymentModel, error)
	GetByGatewayID(gatewayID string) (*model.PaymentModel, error)
	GetByExternalRef(externalRef string) (*model.PaymentModel, error)
	FindRecentPendingByMethodAndAmount(method model.PaymentMethod, amountCentavos int64) (*model.PaymentModel, error)

	// MarkPaidIfPending = satu UPDATE kondisional (WHERE status = PENDING).
	// Return true hanya untuk caller yang memenangkan transisi.
	MarkPaidIfPending(reference string, paidAt time.Time, gatewayID *string) (bool, error)
	MarkFailedIfPending(reference string) (bool, error)
}

type SessionStore interface {
	CreateSession(paymentID uuid.UUID, durationSeconds int) (*sanitizationModel.SanitizationSessionModel, error)
	CompleteSession(sessionID uuid.UUID) error
	LatestForPayment(paymentID uuid.UUID) (*sanitizationModel.SanitizationSessionModel, error)
}

// GatewayEventStore = log append-only notifikasi gateway mentah.
type GatewayEventStore interface {
	CreateEvent(e *model.PaymentGatewayEventModel) error
	SaveEvent(e *model.PaymentGatewayEventModel) error
}

/* =========================================================
   GORM implementation
========================================================= */

type GormPaymentStore struct {
	DB *gorm.DB
}

func NewGormPaymentStore(db *gorm.DB) *GormPaymentStore {
	return &GormPaymentStore{DB: db}
}

func (s *GormPaymentStore) Create(p *model.PaymentModel) error {
	if err := s.DB.Create(p).Error; err != nil {
		// translate unique violation payment_reference → typed outcome
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

func (s *GormPaymentStore) GetByReference(reference string) (*model.PaymentModel, error) {
	var p model.PaymentModel
	if err := s.DB.First(&p, "payment_reference = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *GormPaymentStore) GetByGatewayID(gatewayID string) (*model.PaymentModel, error) {
	var p model.PaymentModel
	if err := s.DB.First(&p, "payment_gateway_id = ?", gatewayID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *GormPaymentStore) GetByExternalRef(externalRef string) (*model.PaymentModel, error) {
	var p model.PaymentModel
	if err := s.DB.First(&p, "payment_external_ref = ?", externalRef).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *GormPaymentStore) FindRecentPendingByMethodAndAmount(method model.PaymentMethod, amountCentavos int64) (*model.PaymentModel, error) {
	var p model.PaymentModel
	err := s.DB.
		Where("payment_status = ?", model.PaymentStatusPending).
		Where("payment_method = ?", method).
		Where("payment_amount_centavos = ?", amountCentavos).
		Order("payment_created_at DESC").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *GormPaymentStore) MarkPaidIfPending(reference string, paidAt time.Time, gatewayID *string) (bool, error) {
	updates := map[string]interface{}{
		"payment_status":  model.PaymentStatusPaid,
		"payment_paid_at": paidAt,
	}
	if gatewayID != nil && *gatewayID != "" {
		updates["payment_gateway_id"] = *gatewayID
	}

	res := s.DB.Model(&model.PaymentModel{}).
		Where("payment_reference = ? AND payment_status = ?", reference, model.PaymentStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormPaymentStore) MarkFailedIfPending(reference string) (bool, error) {
	res := s.DB.Model(&model.PaymentModel{}).
		Where("payment_reference = ? AND payment_status = ?", reference, model.PaymentStatusPending).
		Update("payment_status", model.PaymentStatusFailed)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

/* =========================================================
   Session store (GORM)
========================================================= */

type GormSessionStore struct {
	DB *gorm.DB
}

func NewGormSessionStore(db *gorm.DB) *GormSessionStore {
	return &GormSessionStore{DB: db}
}

func (s *GormSessionStore) CreateSession(paymentID uuid.UUID, durationSeconds int) (*sanitizationModel.SanitizationSessionModel, error) {
	sess := sanitizationModel.SanitizationSessionModel{
		SessionPaymentID:       paymentID,
		SessionDurationSeconds: durationSeconds,
	}
	if err := s.DB.Create(&sess).Error; err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *GormSessionStore) CompleteSession(sessionID uuid.UUID) error {
	now := time.Now()
	return s.DB.Model(&sanitizationModel.SanitizationSessionModel{}).
		Where("session_id = ?", sessionID).
		Update("session_completed_at", now).Error
}

func (s *GormSessionStore) LatestForPayment(paymentID uuid.UUID) (*sanitizationModel.SanitizationSessionModel, error) {
	var sess sanitizationModel.SanitizationSessionModel
	err := s.DB.
		Where("session_payment_id = ?", paymentID).
		Order("session_started_at DESC").
		First(&sess).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sess, nil
}

/* =========================================================
   Gateway event store (GORM)
========================================================= */

type GormGatewayEventStore struct {
	DB *gorm.DB
}

func NewGormGatewayEventStore(db *gorm.DB) *GormGatewayEventStore {
	return &GormGatewayEventStore{DB: db}
}

func (s *GormGatewayEventStore) CreateEvent(e *model.PaymentGatewayEventModel) error {
	return s.DB.Create(e).Error
}

func (s *GormGatewayEventStore) SaveEvent(e *model.PaymentGatewayEventModel) error {
	return s.DB.Save(e).Error
}
