package parser

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	Provider = "booking.com"
)

// Kind classifies what a booking e-mail asks the system to do.
const (
	KindNew     = "new"
	KindModify  = "modify"
	KindCancel  = "cancel"
	KindMessage = "message"
)

// Parse error taxonomy. Codes are stable identifiers stored on parse error
// records; consumers rely on the context shape attached per code.
const (
	ErrCodeMissingBookingNumber = "missing_booking_number"
	ErrCodeMissingFields        = "missing_fields"
	ErrCodeUnexpected           = "unexpected"
)

// ParseError is a taxonomy-coded extraction failure. Only a missing booking
// number raises it from this package; every other absent field is expressed
// as a zero value on the payload.
type ParseError struct {
	Code    string
	Message string
	Context map[string]any
}

func (e *ParseError) Error() string {
	return e.Message
}

// RoomItem is one (room, date range, amount) tuple extracted from a
// multi-room booking message.
type RoomItem struct {
	RoomName string
	CheckIn  time.Time
	CheckOut time.Time
	Amount   *decimal.Decimal
	Currency string
}

// BookingPayload is the immutable result of parsing one booking e-mail.
// BookingNumber is always present; everything else is best effort.
type BookingPayload struct {
	BookingNumber    string
	GuestFullName    string
	GuestEmail       string
	GuestNationality string
	CheckIn          time.Time
	CheckOut         time.Time
	PropertyName     string
	RoomName         string
	Rooms            []RoomItem
	TotalAmount      *decimal.Decimal
	Currency         string
	TotalGuests      int
	TotalRooms       int
	Kind             string
}

// MissingFields reports which reconciliation-critical fields the payload
// lacks. A non-empty result means the message is recorded as partially
// parsed instead of being reconciled.
func (p BookingPayload) MissingFields() []string {
	var missing []string

	if p.CheckIn.IsZero() {
		missing = append(missing, "check_in_date")
	}

	if p.CheckOut.IsZero() {
		missing = append(missing, "check_out_date")
	}

	if p.PropertyName == "" && p.RoomName == "" && len(p.Rooms) == 0 {
		missing = append(missing, "room_name")
	}

	return missing
}

// RoomItemDocument mirrors RoomItem with the field names used in the stored
// audit payload.
type RoomItemDocument struct {
	RoomName     string  `json:"room_name"`
	CheckInDate  *string `json:"check_in_date"`
	CheckOutDate *string `json:"check_out_date"`
	Amount       *string `json:"amount"`
	Currency     *string `json:"currency"`
}

// Document is the serialized form of a payload persisted next to the inbound
// message for audit and manual remediation.
type Document struct {
	Provider         string             `json:"provider"`
	Kind             string             `json:"kind"`
	BookingNumber    string             `json:"booking_number"`
	GuestFullName    *string            `json:"guest_full_name"`
	GuestEmail       *string            `json:"guest_email"`
	GuestNationality *string            `json:"guest_nationality_iso2"`
	CheckInDate      *string            `json:"check_in_date"`
	CheckOutDate     *string            `json:"check_out_date"`
	PropertyName     *string            `json:"property_name"`
	RoomName         *string            `json:"room_name"`
	Rooms            []RoomItemDocument `json:"rooms"`
	TotalAmount      *string            `json:"total_amount"`
	Currency         *string            `json:"currency"`
	TotalGuests      *int               `json:"total_guests"`
	TotalRooms       *int               `json:"total_rooms"`
}

func (p BookingPayload) Document() Document {
	rooms := make([]RoomItemDocument, 0, len(p.Rooms))
	for _, item := range p.Rooms {
		rooms = append(rooms, RoomItemDocument{
			RoomName:     item.RoomName,
			CheckInDate:  dateOrNil(item.CheckIn),
			CheckOutDate: dateOrNil(item.CheckOut),
			Amount:       decimalOrNil(item.Amount),
			Currency:     stringOrNil(item.Currency),
		})
	}

	return Document{
		Provider:         Provider,
		Kind:             p.Kind,
		BookingNumber:    p.BookingNumber,
		GuestFullName:    stringOrNil(p.GuestFullName),
		GuestEmail:       stringOrNil(p.GuestEmail),
		GuestNationality: stringOrNil(p.GuestNationality),
		CheckInDate:      dateOrNil(p.CheckIn),
		CheckOutDate:     dateOrNil(p.CheckOut),
		PropertyName:     stringOrNil(p.PropertyName),
		RoomName:         stringOrNil(p.RoomName),
		Rooms:            rooms,
		TotalAmount:      decimalOrNil(p.TotalAmount),
		Currency:         stringOrNil(p.Currency),
		TotalGuests:      intOrNil(p.TotalGuests),
		TotalRooms:       intOrNil(p.TotalRooms),
	}
}

const dateLayout = "2006-01-02"

func dateOrNil(t time.Time) *string {
	if t.IsZero() {
		return nil
	}

	formatted := t.Format(dateLayout)

	return &formatted
}

func stringOrNil(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func intOrNil(n int) *int {
	if n == 0 {
		return nil
	}

	return &n
}

func decimalOrNil(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}

	formatted := d.StringFixed(2)

	return &formatted
}
