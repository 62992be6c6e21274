package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/busline/booking-backend/internal/database"
	"github.com/busline/booking-backend/internal/models"
	"github.com/busline/booking-backend/internal/utils"
	"github.com/busline/booking-backend/pkg/vnpay"
)

// ErrAmountMismatch is returned when a signed callback carries an amount
// that differs from the ticket's booked price. The signature is valid, but
// the money is wrong; the payment is never treated as successful.
var ErrAmountMismatch = errors.New("callback amount does not match ticket price")

// BookingOrchestratorService strings the core together:
// quote → reserve → redirect to pay → verify → finalize.
type BookingOrchestratorService struct {
	ticketService *TicketService
	ticketRepo    *database.TicketRepository
	scheduleRepo  *database.ScheduleRepository
	busRepo       *database.BusRepository
	topology      *SeatTopologyService
	auditRepo     *database.PaymentAuditRepository
	gateway       *vnpay.Gateway
	logger        *logrus.Logger
}

// NewBookingOrchestratorService creates a new orchestrator
func NewBookingOrchestratorService(
	ticketService *TicketService,
	ticketRepo *database.TicketRepository,
	scheduleRepo *database.ScheduleRepository,
	busRepo *database.BusRepository,
	topology *SeatTopologyService,
	auditRepo *database.PaymentAuditRepository,
	gateway *vnpay.Gateway,
	logger *logrus.Logger,
) *BookingOrchestratorService {
	return &BookingOrchestratorService{
		ticketService: ticketService,
		ticketRepo:    ticketRepo,
		scheduleRepo:  scheduleRepo,
		busRepo:       busRepo,
		topology:      topology,
		auditRepo:     auditRepo,
		gateway:       gateway,
		logger:        logger,
	}
}

// Quote prices one seat on one schedule without reserving anything
func (s *BookingOrchestratorService) Quote(scheduleID, seatID uuid.UUID) (*models.Quote, error) {
	schedule, err := s.scheduleRepo.GetByID(scheduleID)
	if err != nil {
		return nil, err
	}

	seat, err := s.busRepo.GetSeatByID(seatID)
	if err != nil {
		return nil, err
	}
	if seat.BusID != schedule.BusID {
		return nil, fmt.Errorf("%w: seat does not belong to the schedule's bus", ErrValidation)
	}
	if seat.IsHidden || seat.Status != models.SeatStatusAvailable {
		return nil, database.ErrSeatUnavailable
	}

	base, surcharge, err := s.topology.EffectivePrice(seat, schedule.RouteID)
	if err != nil {
		return nil, err
	}

	return &models.Quote{
		ScheduleID: scheduleID,
		SeatID:     seatID,
		SeatNumber: seat.SeatNumber,
		SeatType:   seat.SeatType,
		BaseFare:   base,
		Surcharge:  surcharge,
		Total:      base + surcharge,
	}, nil
}

// BookingRedirect is what the client needs to continue a booking: the
// payment-pending ticket and the gateway URL to navigate to.
type BookingRedirect struct {
	Ticket     *models.Ticket `json:"ticket"`
	PaymentURL string         `json:"payment_url"`
}

// InitiateBooking reserves the seat (creating a payment-pending ticket) and
// builds the signed gateway redirect. The ticket code doubles as the
// gateway transaction reference so the callback correlates back to it.
func (s *BookingOrchestratorService) InitiateBooking(userID uuid.UUID, req *models.CreateTicketRequest, clientIP string) (*BookingRedirect, error) {
	ticket, err := s.ticketService.Create(userID, req)
	if err != nil {
		return nil, err
	}

	paymentURL, err := s.gateway.BuildPaymentURL(vnpay.Order{
		TxnRef:    ticket.TicketCode,
		OrderInfo: fmt.Sprintf("Bus ticket %s", ticket.TicketCode),
		Amount:    ticket.Price,
		ClientIP:  clientIP,
	})
	if err != nil {
		// The seat is held but we cannot send the customer to pay; undo the
		// reservation so the inventory is not burned.
		if _, cancelErr := s.ticketService.Cancel(ticket.ID); cancelErr != nil {
			s.logger.WithError(cancelErr).WithField("ticket_id", ticket.ID).
				Error("Failed to roll back ticket after redirect failure")
		}
		return nil, fmt.Errorf("failed to build payment redirect: %w", err)
	}

	s.audit(&models.PaymentAudit{
		TicketID:  &ticket.ID,
		TxnRef:    ticket.TicketCode,
		EventType: models.PaymentEventRedirectBuilt,
		Amount:    &ticket.Price,
		ClientIP:  &clientIP,
	})

	return &BookingRedirect{Ticket: ticket, PaymentURL: paymentURL}, nil
}

// CallbackOutcome is the orchestrator's verdict on one gateway callback
type CallbackOutcome struct {
	TxnRef  string         `json:"txn_ref"`
	Success bool           `json:"success"`
	Ticket  *models.Ticket `json:"ticket,omitempty"`
}

// HandleCallback verifies an inbound gateway callback and finalizes the
// booking it references. A verification failure is reported as exactly
// that — it is never folded into "payment failed", and never into success.
func (s *BookingOrchestratorService) HandleCallback(params map[string]string, clientIP, userAgent string) (*CallbackOutcome, error) {
	result, err := s.gateway.VerifyCallback(params)
	if err != nil {
		s.auditCallback(params[vnpay.ParamTxnRef], nil, params, clientIP, userAgent,
			models.PaymentEventVerifyFailed, boolPtr(false))
		return nil, err
	}

	ticket, err := s.ticketRepo.GetByCode(result.TxnRef)
	if err != nil {
		// Signed but unmatched; keep the raw callback for reconciliation.
		s.auditCallback(result.TxnRef, nil, result.Params, clientIP, userAgent,
			models.PaymentEventCallbackReceived, boolPtr(true))
		return nil, err
	}

	if result.Amount != ticket.Price {
		s.auditCallback(result.TxnRef, &ticket.ID, result.Params, clientIP, userAgent,
			models.PaymentEventVerifyFailed, boolPtr(true))
		return nil, ErrAmountMismatch
	}

	if !result.Success {
		failed, err := s.ticketRepo.MarkPaymentFailed(ticket.TicketCode)
		if err != nil && !errors.Is(err, database.ErrTicketNotFound) {
			return nil, err
		}
		s.auditCallback(result.TxnRef, &ticket.ID, result.Params, clientIP, userAgent,
			models.PaymentEventFailed, boolPtr(true))
		s.logger.WithFields(logrus.Fields{
			"txn_ref":       result.TxnRef,
			"response_code": result.ResponseCode,
		}).Info("Gateway reported payment failure")

		outcome := &CallbackOutcome{TxnRef: result.TxnRef, Success: false}
		if failed != nil {
			outcome.Ticket = failed
		}
		return outcome, nil
	}

	if err := s.ticketRepo.MarkPaid(ticket.TicketCode, result.TransactionNo); err != nil {
		return nil, err
	}
	s.auditCallback(result.TxnRef, &ticket.ID, result.Params, clientIP, userAgent,
		models.PaymentEventSuccess, boolPtr(true))

	paid, err := s.ticketRepo.GetByCode(ticket.TicketCode)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"txn_ref":   result.TxnRef,
		"ticket_id": paid.ID,
		"amount":    result.Amount,
	}).Info("Payment confirmed, booking finalized")

	return &CallbackOutcome{TxnRef: result.TxnRef, Success: true, Ticket: paid}, nil
}

// PaymentTrail returns a ticket together with every audited gateway
// interaction recorded against its transaction reference, oldest first.
func (s *BookingOrchestratorService) PaymentTrail(ticketID uuid.UUID) (*models.Ticket, []models.PaymentAudit, error) {
	ticket, err := s.ticketRepo.GetByID(ticketID)
	if err != nil {
		return nil, nil, err
	}

	trail, err := s.auditRepo.ListByTxnRef(ticket.TicketCode)
	if err != nil {
		return nil, nil, err
	}

	return ticket, trail, nil
}

// auditCallback records one callback with the caller's fingerprint
func (s *BookingOrchestratorService) auditCallback(
	txnRef string,
	ticketID *uuid.UUID,
	params map[string]string,
	clientIP, userAgent string,
	event models.PaymentEventType,
	signatureOK *bool,
) {
	raw := make(models.JSONB, len(params))
	for k, v := range params {
		raw[k] = v
	}

	device := utils.ParseUserAgent(userAgent)
	audit := &models.PaymentAudit{
		TicketID:      ticketID,
		TxnRef:        txnRef,
		EventType:     event,
		SignatureOK:   signatureOK,
		RawParams:     raw,
		ClientIP:      &clientIP,
		UserAgent:     &userAgent,
		DeviceType:    &device.DeviceType,
		DeviceOS:      &device.OS,
		DeviceBrowser: &device.Browser,
	}
	if code, ok := params[vnpay.ParamResponseCode]; ok {
		audit.ResponseCode = &code
	}

	s.audit(audit)
}

// audit appends an audit row; audit failures are logged, never propagated,
// so a broken audit table cannot block a payment.
func (s *BookingOrchestratorService) audit(audit *models.PaymentAudit) {
	if err := s.auditRepo.Create(audit); err != nil {
		s.logger.WithError(err).WithField("txn_ref", audit.TxnRef).
			Error("Failed to write payment audit")
	}
}

func boolPtr(b bool) *bool {
	return &b
}
