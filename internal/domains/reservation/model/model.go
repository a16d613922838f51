package model

import (
	"database/sql"
	"strings"
	"time"

	"innsync/shared/model"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "reservations"
	EntityName = "reservation"

	FieldID           = "id"
	FieldExternalID   = "external_id"
	FieldRoomID       = "room_id"
	FieldRoomTypeID   = "room_type_id"
	FieldRoomName     = "room_name"
	FieldCheckInDate  = "check_in_date"
	FieldCheckOutDate = "check_out_date"
	FieldStatus       = "status"
	FieldTotalAmount  = "total_amount"
	FieldCurrency     = "currency"
)

const (
	StatusExpected   = "expected"
	StatusCheckedIn  = "checked_in"
	StatusCheckedOut = "checked_out"
	StatusCanceled   = "canceled"
)

// Reservation is one stay, keyed by the platform's booking number. Multi-room
// bookings fan out into sibling rows whose external ids carry an ordinal
// suffix ("123456789-2", "123456789-3", ...).
type Reservation struct {
	ID           string              `db:"id"`
	ExternalID   string              `db:"external_id"`
	RoomID       sql.NullString      `db:"room_id"`
	RoomTypeID   sql.NullString      `db:"room_type_id"`
	RoomName     string              `db:"room_name"`
	CheckInDate  time.Time           `db:"check_in_date"`
	CheckOutDate time.Time           `db:"check_out_date"`
	Status       string              `db:"status"`
	TotalAmount  decimal.NullDecimal `db:"total_amount"`
	Currency     string              `db:"currency"`
	model.Metadata
}

const (
	GuestTableName  = "guests"
	GuestEntityName = "guest"

	GuestFieldID            = "id"
	GuestFieldReservationID = "reservation_id"
	GuestFieldFirstName     = "first_name"
	GuestFieldLastName      = "last_name"
	GuestFieldEmail         = "email"
	GuestFieldNationality   = "nationality"
	GuestFieldIsPrimary     = "is_primary"
)

// Guest belongs to a reservation. The document columns are filled by the
// front desk at check-in; the e-mail pipeline only ever touches the primary
// guest's name, e-mail, and nationality, and never blanks a filled value.
type Guest struct {
	ID                  string         `db:"id"`
	ReservationID       string         `db:"reservation_id"`
	FirstName           string         `db:"first_name"`
	LastName            string         `db:"last_name"`
	Email               string         `db:"email"`
	Nationality         string         `db:"nationality"`
	DateOfBirth         sql.NullTime   `db:"date_of_birth"`
	Sex                 string         `db:"sex"`
	Address             string         `db:"address"`
	DocumentNumber      string         `db:"document_number"`
	DocumentType        string         `db:"document_type"`
	DocumentCountryISO2 string         `db:"document_country_iso2"`
	DateOfIssue         sql.NullTime   `db:"date_of_issue"`
	DateOfExpiry        sql.NullTime   `db:"date_of_expiry"`
	IssuingAuthority    string         `db:"issuing_authority"`
	PersonalIDNumber    string         `db:"personal_id_number"`
	MRZRawText          string         `db:"mrz_raw_text"`
	MRZVerified         sql.NullBool   `db:"mrz_verified"`
	IsPrimary           bool           `db:"is_primary"`
	model.Metadata
}

// SplitFullName breaks a free-form full name into (first, last). Everything
// up to the final word is the first name; a single word is first-name only.
func SplitFullName(fullName string) (string, string) {
	parts := strings.Fields(fullName)

	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}

// StatusFromKind maps a parsed message kind to the reservation status it
// implies. Everything that is not a cancellation keeps the stay expected.
func StatusFromKind(kind string) string {
	if kind == "cancel" {
		return StatusCanceled
	}

	return StatusExpected
}
