package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Parse extracts a booking payload from one inbound e-mail. It never fails
// on missing detail fields; only an absent booking number is a hard error
// since nothing downstream can be keyed without it.
func Parse(subject, bodyText, bodyHTML string) (BookingPayload, error) {
	lines := Normalize(bodyText, bodyHTML)

	bookingNumber, ok := extractBookingNumber(lines)
	if !ok {
		return BookingPayload{}, &ParseError{
			Code:    ErrCodeMissingBookingNumber,
			Message: "could not find a booking number or confirmation number in the email body",
		}
	}

	payload := BookingPayload{
		BookingNumber: bookingNumber,
		Kind:          inferKind(subject, lines),
	}

	payload = payload.withLabeledFields(lines)
	payload = payload.withRoomDetails(lines, subject)
	payload = payload.withDateRangeFallback(lines)
	payload = payload.withGuestIdentity(lines)
	payload = payload.withRoomSummary()

	return payload, nil
}

// withLabeledFields fills everything that sits under an explicit label in
// the provider's own confirmation template.
func (p BookingPayload) withLabeledFields(lines []string) BookingPayload {
	if v, ok := valueAfterLabel(lines, "Guest name"); ok {
		p.GuestFullName = v
	}

	if v, ok := valueAfterLabel(lines, "Check-in"); ok {
		if t, parsed := parseBookingDate(v); parsed {
			p.CheckIn = t
		}
	}

	if v, ok := valueAfterLabel(lines, "Check-out"); ok {
		if t, parsed := parseBookingDate(v); parsed {
			p.CheckOut = t
		}
	}

	if v, ok := valueAfterLabel(lines, "Property name"); ok {
		p.PropertyName = v
	}

	if v, ok := valueAfterLabel(lines, "Total guests"); ok {
		if n, parsed := parseIntValue(v); parsed {
			p.TotalGuests = n
		}
	}

	if v, ok := valueAfterLabel(lines, "Total rooms"); ok {
		if n, parsed := parseIntValue(v); parsed {
			p.TotalRooms = n
		}
	}

	p.TotalAmount, p.Currency = extractTotalPrice(lines)
	if p.TotalAmount != nil && p.Currency == "" {
		p.Currency = "EUR"
	}

	return p
}

func (p BookingPayload) withRoomDetails(lines []string, subject string) BookingPayload {
	if name, ok := extractRoomName(lines, subject); ok {
		p.RoomName = name
	}

	p.Rooms = extractRoomBlocks(lines)

	return p
}

// withDateRangeFallback uses a "14.02.2026 - 15.02.2026" range from the body
// when the labeled check-in/check-out values are absent.
func (p BookingPayload) withDateRangeFallback(lines []string) BookingPayload {
	if !p.CheckIn.IsZero() && !p.CheckOut.IsZero() {
		return p
	}

	rangeIn, rangeOut, ok := extractDateRange(lines)
	if !ok {
		return p
	}

	if p.CheckIn.IsZero() {
		p.CheckIn = rangeIn
	}

	if p.CheckOut.IsZero() {
		p.CheckOut = rangeOut
	}

	return p
}

// withGuestIdentity resolves the guest's e-mail, name, and nationality,
// trying the near-email heuristic first since forwarded templates rarely
// carry proper labels.
func (p BookingPayload) withGuestIdentity(lines []string) BookingPayload {
	if email, ok := extractGuestEmail(lines); ok {
		p.GuestEmail = email
	}

	nameLooksBroken := p.GuestFullName == "" ||
		strings.HasPrefix(strings.ToLower(p.GuestFullName), "font-family")

	if p.GuestEmail != "" && nameLooksBroken {
		name, country := extractNameCountryNearEmail(lines, p.GuestEmail)
		if name != "" {
			p.GuestFullName = name
		}

		if country != "" {
			if iso2, ok := CountryToISO2(country); ok {
				p.GuestNationality = iso2
			}
		}
	}

	if p.GuestNationality == "" {
		for _, label := range []string{"Nationality", "Document country", "Country"} {
			if v, ok := valueAfterLabel(lines, label); ok {
				if iso2, mapped := CountryToISO2(v); mapped {
					p.GuestNationality = iso2
				}
			}
		}
	}

	// Some templates put "Full Name , Country" on one line without any label.
	if p.GuestNationality == "" && p.GuestFullName != "" {
		nameNorm := strings.ToLower(strings.TrimSpace(p.GuestFullName))

		for _, line := range lines {
			if !strings.Contains(line, ",") || strings.Contains(line, "@") {
				continue
			}

			before, after, _ := strings.Cut(line, ",")
			if strings.ToLower(strings.TrimSpace(before)) != nameNorm {
				continue
			}

			if iso2, ok := CountryToISO2(after); ok {
				p.GuestNationality = iso2

				break
			}
		}
	}

	if p.GuestFullName == "" {
		p = p.withNameCountryLineFallback(lines)
	}

	return p
}

// withNameCountryLineFallback scans for a bare "Full Name, Country" line,
// skipping inline-style leftovers and room description lines.
func (p BookingPayload) withNameCountryLineFallback(lines []string) BookingPayload {
	for _, line := range lines {
		lowered := strings.ToLower(line)

		if strings.Contains(lowered, "font-family") ||
			strings.Contains(lowered, "font-size") ||
			strings.Contains(lowered, "line-height") {
			continue
		}

		if !strings.Contains(line, ",") || !hasAlpha(line) {
			continue
		}

		before, after, _ := strings.Cut(line, ",")
		candidate := strings.TrimSpace(before)

		if hasDigit(candidate) || reWordDeluxe.MatchString(candidate) || strings.Contains(candidate, ":") {
			continue
		}

		if len(candidate) >= 3 && len(candidate) <= 120 && !strings.Contains(strings.ToLower(candidate), "booking.com") {
			p.GuestFullName = candidate

			if p.GuestNationality == "" {
				if iso2, ok := CountryToISO2(after); ok {
					p.GuestNationality = iso2
				}
			}

			break
		}
	}

	return p
}

// withRoomSummary folds multi-room blocks into the payload-level summary
// fields. The payload total is an exact sum only when every item carries its
// own amount.
func (p BookingPayload) withRoomSummary() BookingPayload {
	if len(p.Rooms) == 0 {
		return p
	}

	if p.RoomName == "" {
		p.RoomName = strings.TrimSpace(p.Rooms[0].RoomName)
	}

	if p.TotalRooms == 0 && len(p.Rooms) > 1 {
		p.TotalRooms = len(p.Rooms)
	}

	if len(p.Rooms) > 1 {
		sum := decimal.Zero
		complete := true

		for _, item := range p.Rooms {
			if item.Amount == nil {
				complete = false

				break
			}

			sum = sum.Add(*item.Amount)
		}

		if complete {
			total := sum.Round(2)
			p.TotalAmount = &total

			if p.Currency == "" {
				for _, item := range p.Rooms {
					if item.Currency != "" {
						p.Currency = item.Currency

						break
					}
				}
			}
		}
	}

	return p
}
