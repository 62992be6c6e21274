package services

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"
	"github.com/sirupsen/logrus"

	"github.com/busline/booking-backend/internal/database"
	"github.com/busline/booking-backend/internal/models"
)

// TicketPDFService renders a paid ticket as an A4 e-ticket PDF
type TicketPDFService struct {
	ticketRepo *database.TicketRepository
	busRepo    *database.BusRepository
	userRepo   *database.UserRepository
	logger     *logrus.Logger
}

// NewTicketPDFService creates a new ticket PDF service
func NewTicketPDFService(
	ticketRepo *database.TicketRepository,
	busRepo *database.BusRepository,
	userRepo *database.UserRepository,
	logger *logrus.Logger,
) *TicketPDFService {
	return &TicketPDFService{
		ticketRepo: ticketRepo,
		busRepo:    busRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// GenerateETicket renders the ticket and returns the PDF bytes plus a
// download filename. Only paid tickets get a document.
func (s *TicketPDFService) GenerateETicket(ticketID uuid.UUID) ([]byte, string, error) {
	ticket, err := s.ticketRepo.GetByID(ticketID)
	if err != nil {
		return nil, "", err
	}
	if ticket.PaymentStatus != models.TicketPaymentPaid {
		return nil, "", fmt.Errorf("%w: ticket is not paid", ErrValidation)
	}

	user, err := s.userRepo.GetByID(ticket.UserID)
	if err != nil {
		return nil, "", err
	}

	seat, err := s.busRepo.GetSeatByID(ticket.SeatID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BUSLINE E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Ticket code : %s", ticket.TicketCode),
		fmt.Sprintf("Passenger   : %s", user.FullName),
		fmt.Sprintf("Phone       : %s", user.Phone),
		fmt.Sprintf("Seat        : %s (%s)", seat.SeatNumber, ticket.SeatType),
		fmt.Sprintf("Departure   : %s", ticket.DepartureTime.Format("02 Jan 2006 15:04")),
		fmt.Sprintf("Arrival     : %s", ticket.ArrivalTime.Format("02 Jan 2006 15:04")),
		fmt.Sprintf("Price       : %.0f VND", ticket.Price),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 5, "Present this ticket code at boarding. Valid only with matching phone number.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render e-ticket: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"ticket_id":   ticket.ID,
		"ticket_code": ticket.TicketCode,
		"bytes":       buf.Len(),
	}).Debug("E-ticket rendered")

	return buf.Bytes(), fmt.Sprintf("eticket-%s.pdf", ticket.TicketCode), nil
}
