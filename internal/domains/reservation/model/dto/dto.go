package dto

import (
	"time"

	"innsync/internal/domains/reservation/model"
	"innsync/shared"
	"innsync/shared/constant"
	gDto "innsync/shared/dto"

	"github.com/shopspring/decimal"
)

type GuestResponse struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email,omitempty"`
	Nationality string `json:"nationality,omitempty"`
	IsPrimary   bool   `json:"is_primary"`
	gDto.Metadata
}

func (g *GuestResponse) FromModel(model model.Guest) {
	g.ID = model.ID
	g.FirstName = model.FirstName
	g.LastName = model.LastName
	g.Email = model.Email
	g.Nationality = model.Nationality
	g.IsPrimary = model.IsPrimary
	g.Metadata.FromModel(model.Metadata)
}

type ReservationResponse struct {
	ID           string          `json:"id"`
	ExternalID   string          `json:"external_id"`
	RoomID       string          `json:"room_id,omitempty"`
	RoomTypeID   string          `json:"room_type_id,omitempty"`
	RoomName     string          `json:"room_name"`
	CheckInDate  string          `json:"check_in_date"`
	CheckOutDate string          `json:"check_out_date"`
	Status       string          `json:"status"`
	TotalAmount  string          `json:"total_amount,omitempty"`
	Currency     string          `json:"currency,omitempty"`
	Guests       []GuestResponse `json:"guests,omitempty"`
	gDto.Metadata
}

func (r *ReservationResponse) FromModel(model model.Reservation) {
	r.ID = model.ID
	r.ExternalID = model.ExternalID
	r.RoomName = model.RoomName
	r.CheckInDate = model.CheckInDate.Format(constant.DateOnlyFormat)
	r.CheckOutDate = model.CheckOutDate.Format(constant.DateOnlyFormat)
	r.Status = model.Status
	r.Currency = model.Currency

	if model.RoomID.Valid {
		r.RoomID = model.RoomID.String
	}

	if model.RoomTypeID.Valid {
		r.RoomTypeID = model.RoomTypeID.String
	}

	if model.TotalAmount.Valid {
		r.TotalAmount = model.TotalAmount.Decimal.StringFixed(2)
	}

	r.Metadata.FromModel(model.Metadata)
}

func (r *ReservationResponse) WithGuests(models []model.Guest) {
	r.Guests = make([]GuestResponse, len(models))
	for i, mod := range models {
		r.Guests[i].FromModel(mod)
	}
}

type GetReservationsResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
	TotalPage    int                   `json:"total_page"`
	TotalData    int                   `json:"total_data"`
}

func (r *GetReservationsResponse) FromModels(models []model.Reservation, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Reservations = make([]ReservationResponse, len(models))
	for i, mod := range models {
		r.Reservations[i].FromModel(mod)
	}
}

// UpsertBookingInput is one room line-item of a booking, resolved and ready
// to reconcile into a reservation row.
type UpsertBookingInput struct {
	ExternalID        string
	RoomName          string
	RoomTypeID        string
	CheckInDate       time.Time
	CheckOutDate      time.Time
	Status            string
	GuestFullName     string
	GuestEmail        string
	GuestNationality  string
	PreferredUnitCode string
	TotalAmount       decimal.NullDecimal
	Currency          string
}

// ImportResult reports which rows one line-item touched.
type ImportResult struct {
	ReservationID  string `json:"reservation_id"`
	PrimaryGuestID string `json:"primary_guest_id,omitempty"`
}
