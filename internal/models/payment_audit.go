package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PaymentEventType represents the type of payment event being audited
type PaymentEventType string

const (
	PaymentEventRedirectBuilt    PaymentEventType = "redirect_built"
	PaymentEventCallbackReceived PaymentEventType = "callback_received"
	PaymentEventSuccess          PaymentEventType = "payment_success"
	PaymentEventFailed           PaymentEventType = "payment_failed"
	PaymentEventVerifyFailed     PaymentEventType = "verification_failed"
)

// JSONB stores an arbitrary JSON object in a jsonb column
type JSONB map[string]interface{}

// Value implements driver.Valuer
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type for JSONB: %T", value)
	}
	return json.Unmarshal(b, j)
}

// PaymentAudit is an immutable log entry for every gateway interaction.
// Raw parameters and client fingerprint are kept for reconciliation.
type PaymentAudit struct {
	ID            uuid.UUID        `json:"id" db:"id"`
	TicketID      *uuid.UUID       `json:"ticket_id,omitempty" db:"ticket_id"`
	TxnRef        string           `json:"txn_ref" db:"txn_ref"`
	EventType     PaymentEventType `json:"event_type" db:"event_type"`
	ResponseCode  *string          `json:"response_code,omitempty" db:"response_code"`
	Amount        *float64         `json:"amount,omitempty" db:"amount"`
	SignatureOK   *bool            `json:"signature_ok,omitempty" db:"signature_ok"`
	RawParams     JSONB            `json:"raw_params,omitempty" db:"raw_params"`
	ClientIP      *string          `json:"client_ip,omitempty" db:"client_ip"`
	UserAgent     *string          `json:"user_agent,omitempty" db:"user_agent"`
	DeviceType    *string          `json:"device_type,omitempty" db:"device_type"`
	DeviceOS      *string          `json:"device_os,omitempty" db:"device_os"`
	DeviceBrowser *string          `json:"device_browser,omitempty" db:"device_browser"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
}
