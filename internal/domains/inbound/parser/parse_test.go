package parser_test

import (
	"strings"
	"testing"

	"innsync/internal/domains/inbound/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_LabeledTemplate(t *testing.T) {
	body := strings.Join([]string{
		"Booking number: 4411223344",
		"Guest name",
		"Ana Petrović",
		"Check-in",
		"Sat 14 Feb 2026",
		"Check-out",
		"Sun 15 Feb 2026",
		"Property name",
		"Villa Adriatic",
		"Total guests: 2",
		"Total rooms: 1",
		"Nationality",
		"Croatia",
	}, "\n")

	payload, err := parser.Parse("Confirmed reservation 4411223344", body, "")
	require.NoError(t, err)

	assert.Equal(t, "4411223344", payload.BookingNumber)
	assert.Equal(t, "Ana Petrović", payload.GuestFullName)
	assert.Equal(t, "HR", payload.GuestNationality)
	assert.Equal(t, "2026-02-14", payload.CheckIn.Format("2006-01-02"))
	assert.Equal(t, "2026-02-15", payload.CheckOut.Format("2006-01-02"))
	assert.Equal(t, "Villa Adriatic", payload.PropertyName)
	assert.Equal(t, 2, payload.TotalGuests)
	assert.Equal(t, 1, payload.TotalRooms)
	assert.Equal(t, parser.KindNew, payload.Kind)
	assert.Empty(t, payload.MissingFields())
}

func TestParse_ForwardedSingleRoom(t *testing.T) {
	body := strings.Join([]string{
		"Nova rezervacija",
		"Booking.com ID: 5522334455",
		"14.02.2026 - 15.02.2026",
		"R1 deluxe king, R1 - Deluxe King",
		"75,65 (Standard rate EUR)",
		"Marta Kowalska, Poland",
		"marta.k123@guest.booking.com",
	}, "\n")

	payload, err := parser.Parse("Nova rezervacija 14.02.2026 - 15.02.2026, R1 deluxe king", body, "")
	require.NoError(t, err)

	assert.Equal(t, "5522334455", payload.BookingNumber)
	assert.Equal(t, "R1 deluxe king", payload.RoomName)
	assert.Equal(t, "marta.k123@guest.booking.com", payload.GuestEmail)
	assert.Equal(t, "Marta Kowalska", payload.GuestFullName)
	assert.Equal(t, "PL", payload.GuestNationality)
	assert.Equal(t, "2026-02-14", payload.CheckIn.Format("2006-01-02"))
	assert.Equal(t, "2026-02-15", payload.CheckOut.Format("2006-01-02"))
	assert.Equal(t, parser.KindNew, payload.Kind)

	require.Len(t, payload.Rooms, 1)
	require.NotNil(t, payload.Rooms[0].Amount)
	assert.Equal(t, "75.65", payload.Rooms[0].Amount.StringFixed(2))
	assert.Equal(t, "EUR", payload.Rooms[0].Currency)

	require.NotNil(t, payload.TotalAmount)
	assert.Equal(t, "75.65", payload.TotalAmount.StringFixed(2))
	assert.Equal(t, "EUR", payload.Currency)
}

func TestParse_MultiRoomSameLine(t *testing.T) {
	body := strings.Join([]string{
		"Booking number: 6677889900",
		"18.09.2026 - 19.09.2026",
		"R-4 DELUXE KING, R-6 DELUXE KING",
		"219,30 (Standard rate)",
	}, "\n")

	payload, err := parser.Parse("Nova rezervacija", body, "")
	require.NoError(t, err)

	require.Len(t, payload.Rooms, 2)
	assert.Equal(t, "R-4 DELUXE KING", payload.Rooms[0].RoomName)
	assert.Equal(t, "R-6 DELUXE KING", payload.Rooms[1].RoomName)

	// A single amount covering both rooms must not be duplicated per item.
	assert.Nil(t, payload.Rooms[0].Amount)
	assert.Nil(t, payload.Rooms[1].Amount)

	require.NotNil(t, payload.TotalAmount)
	assert.Equal(t, "219.30", payload.TotalAmount.StringFixed(2))
	assert.Equal(t, 2, payload.TotalRooms)
	assert.Equal(t, "R-4 DELUXE KING", payload.RoomName)
}

func TestParse_MultiRoomBlocksSummed(t *testing.T) {
	body := strings.Join([]string{
		"Booking number: 7788990011",
		"18.09.2026 - 19.09.2026",
		"R3 deluxe triple, R3 - Deluxe Triple",
		"109,65 (Standard rate)",
		"18.09.2026 - 20.09.2026",
		"R1 deluxe king, R1 - Deluxe King",
		"151,30 (Standard rate)",
	}, "\n")

	payload, err := parser.Parse("Nova rezervacija", body, "")
	require.NoError(t, err)

	require.Len(t, payload.Rooms, 2)
	assert.Equal(t, "R3 deluxe triple", payload.Rooms[0].RoomName)
	assert.Equal(t, "R1 deluxe king", payload.Rooms[1].RoomName)
	assert.Equal(t, 2, payload.TotalRooms)

	require.NotNil(t, payload.TotalAmount)
	assert.Equal(t, "260.95", payload.TotalAmount.StringFixed(2))
}

func TestParse_DuplicateRoomBlocksDeduplicated(t *testing.T) {
	block := strings.Join([]string{
		"18.09.2026 - 19.09.2026",
		"R3 deluxe triple, R3 - Deluxe Triple",
		"109,65 (Standard rate)",
	}, "\n")

	body := "Booking number: 8899001122\n" + block + "\n" + block

	payload, err := parser.Parse("Nova rezervacija", body, "")
	require.NoError(t, err)

	assert.Len(t, payload.Rooms, 1)
}

func TestParse_MissingBookingNumber(t *testing.T) {
	_, err := parser.Parse("Nova rezervacija", "No identifiers in here at all", "")
	require.Error(t, err)

	var parseErr *parser.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, parser.ErrCodeMissingBookingNumber, parseErr.Code)
}

func TestParse_HTMLBodyPreferred(t *testing.T) {
	bodyHTML := `<html><body>
		<div>Booking number: 9900112233</div>
		<div>14.02.2026 - 15.02.2026</div>
		<div>R1 deluxe king, R1 - Deluxe King</div>
		<div>Ivan Horvat, Croatia</div>
		<div>ivan.h456@guest.booking.com</div>
		<style>.x { font-family: Arial; }</style>
	</body></html>`

	payload, err := parser.Parse("Nova rezervacija", "plain part", bodyHTML)
	require.NoError(t, err)

	assert.Equal(t, "9900112233", payload.BookingNumber)
	assert.Equal(t, "Ivan Horvat", payload.GuestFullName)
	assert.Equal(t, "HR", payload.GuestNationality)
	assert.Equal(t, "R1 deluxe king", payload.RoomName)
}

func TestParse_URLOnlyLinesIgnored(t *testing.T) {
	body := strings.Join([]string{
		"<https://example.booking.com/track/abc>",
		"Booking number: 1122334455",
		"<https://example.booking.com/track/def>",
		"14.02.2026 - 15.02.2026",
		"R1 deluxe king",
	}, "\n")

	payload, err := parser.Parse("Nova rezervacija", body, "")
	require.NoError(t, err)

	assert.Equal(t, "1122334455", payload.BookingNumber)
	assert.Equal(t, "R1 deluxe king", payload.RoomName)
}

func TestParse_GuestEmailPrefersBookingAlias(t *testing.T) {
	body := strings.Join([]string{
		"Booking number: 2233445566",
		"noreply@rentl.io",
		"support@hotel-example.com",
		"guest.name789@guest.booking.com",
	}, "\n")

	payload, err := parser.Parse("message", body, "")
	require.NoError(t, err)

	assert.Equal(t, "guest.name789@guest.booking.com", payload.GuestEmail)
}

func TestParse_VendorEmailSkipped(t *testing.T) {
	body := strings.Join([]string{
		"Booking number: 3344556677",
		"noreply@rentl.io",
		"ana.maric@example.com",
	}, "\n")

	payload, err := parser.Parse("message", body, "")
	require.NoError(t, err)

	assert.Equal(t, "ana.maric@example.com", payload.GuestEmail)
}

func TestParse_MissingFields(t *testing.T) {
	payload, err := parser.Parse("message", "Booking number: 4455667788", "")
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]string{"check_in_date", "check_out_date", "room_name"},
		payload.MissingFields(),
	)
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
		want    string
	}{
		{"croatian new", "Nova rezervacija 123", "Booking number: 1234567", parser.KindNew},
		{"english new", "New reservation received", "Booking number: 1234567", parser.KindNew},
		{"croatian cancel", "Otkaz rezervacije", "Booking number: 1234567", parser.KindCancel},
		{"storno", "Storno 123", "Booking number: 1234567", parser.KindCancel},
		{"english cancel", "Cancelled booking", "Booking number: 1234567", parser.KindCancel},
		{"modify", "Modify reservation 1234567", "Booking number: 1234567", parser.KindModify},
		{"amend", "Amended stay dates", "Booking number: 1234567", parser.KindModify},
		{"changed", "Your booking changed", "Booking number: 1234567", parser.KindModify},
		{"confirmed booking", "Confirmed booking for you", "Booking number: 1234567", parser.KindNew},
		{"details body", "FW: guest question", "Booking number: 1234567\nReservation details", parser.KindMessage},
		{"default", "hello", "Booking number: 1234567", parser.KindMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := parser.Parse(tt.subject, tt.body, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, payload.Kind)
		})
	}
}

func TestCountryToISO2(t *testing.T) {
	tests := []struct {
		value string
		want  string
		ok    bool
	}{
		{"Croatia", "HR", true},
		{"hrvatska", "HR", true},
		{"Croatia (Hrvatska)", "HR", true},
		{"de", "DE", true},
		{"FR", "FR", true},
		{"Österreich", "AT", true},
		{"Atlantis", "", false},
		{"", "", false},
		{"  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := parser.CountryToISO2(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDocument_NullableFields(t *testing.T) {
	payload, err := parser.Parse("message", "Booking number: 5566778899", "")
	require.NoError(t, err)

	doc := payload.Document()

	assert.Equal(t, "booking.com", doc.Provider)
	assert.Equal(t, "5566778899", doc.BookingNumber)
	assert.Nil(t, doc.GuestFullName)
	assert.Nil(t, doc.CheckInDate)
	assert.Nil(t, doc.TotalAmount)
	assert.NotNil(t, doc.Rooms)
	assert.Empty(t, doc.Rooms)
}
