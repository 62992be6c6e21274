package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/busline/booking-backend/internal/models"
)

// PaymentAuditRepository handles the append-only payment audit log
type PaymentAuditRepository struct {
	db DB
}

// NewPaymentAuditRepository creates a new payment audit repository
func NewPaymentAuditRepository(db DB) *PaymentAuditRepository {
	return &PaymentAuditRepository{db: db}
}

// Create appends one audit entry. Audit rows are never updated or deleted.
func (r *PaymentAuditRepository) Create(audit *models.PaymentAudit) error {
	if audit.ID == uuid.Nil {
		audit.ID = uuid.New()
	}
	audit.CreatedAt = time.Now()

	query := `
		INSERT INTO payment_audits (
			id, ticket_id, txn_ref, event_type, response_code, amount,
			signature_ok, raw_params, client_ip, user_agent,
			device_type, device_os, device_browser, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(query,
		audit.ID,
		audit.TicketID,
		audit.TxnRef,
		audit.EventType,
		audit.ResponseCode,
		audit.Amount,
		audit.SignatureOK,
		audit.RawParams,
		audit.ClientIP,
		audit.UserAgent,
		audit.DeviceType,
		audit.DeviceOS,
		audit.DeviceBrowser,
		audit.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment audit: %w", err)
	}

	return nil
}

// ListByTxnRef returns the audit trail for one transaction reference
func (r *PaymentAuditRepository) ListByTxnRef(txnRef string) ([]models.PaymentAudit, error) {
	query := `
		SELECT id, ticket_id, txn_ref, event_type, response_code, amount,
			   signature_ok, raw_params, client_ip, user_agent,
			   device_type, device_os, device_browser, created_at
		FROM payment_audits
		WHERE txn_ref = $1
		ORDER BY created_at
	`

	var audits []models.PaymentAudit
	if err := r.db.Select(&audits, query, txnRef); err != nil {
		return nil, fmt.Errorf("failed to list payment audits: %w", err)
	}

	return audits, nil
}
