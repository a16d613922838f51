package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	reDigits        = regexp.MustCompile(`\d+`)
	reBookingNumber = regexp.MustCompile(`^\d{6,}$`)
	reInlineNumber  = regexp.MustCompile(`(?i)\b(booking|confirmation)\s+number:\s*(\d{6,})\b`)
	reInlineID      = regexp.MustCompile(`(?i)\bbooking\.com\s+id:\s*(\d{6,})\b`)
	reDateRangeDMY  = regexp.MustCompile(`\b(\d{2}\.\d{2}\.\d{4})\s*-\s*(\d{2}\.\d{2}\.\d{4})\b`)
	rePriceLine     = regexp.MustCompile(`^\s*([0-9]{1,6}[.,][0-9]{2})\s*(\(|$)`)
	reCurrencyEUR   = regexp.MustCompile(`(?i)\bEUR\b|€`)
	reCurrencyHRK   = regexp.MustCompile(`(?i)\bHRK\b|kn\b`)
	reRoomCode      = regexp.MustCompile(`(?i)\bR\s*-?\s*\d+\b`)
	reRoomCodeNum   = regexp.MustCompile(`(?i)\bR\s*-?\s*(\d+)\b`)
	reSubjectRoom   = regexp.MustCompile(`(?i)(R\s*-?\s*\d+\s+[^,]+)\s*$`)
	reEmail         = regexp.MustCompile(`(?i)\b[A-Z0-9._%+\-]+@[A-Z0-9.\-]+\.[A-Z]{2,}\b`)
	reWordDeluxe    = regexp.MustCompile(`(?i)\bdeluxe\b`)
)

// extractor is one heuristic producing a value from normalized lines.
// Extractors compose with firstOf so fallback order stays explicit.
type extractor[T any] func(lines []string) (T, bool)

func firstOf[T any](extractors ...extractor[T]) extractor[T] {
	return func(lines []string) (T, bool) {
		for _, extract := range extractors {
			if value, ok := extract(lines); ok {
				return value, true
			}
		}

		var zero T

		return zero, false
	}
}

// valueAfterLabel finds the value for a "Label" heading. The value sits
// either inline after a colon or on the following line. The first occurrence
// top-down wins, so a label repeated in quoted reply text below the current
// message never shadows the one above it.
func valueAfterLabel(lines []string, label string) (string, bool) {
	labelNorm := strings.TrimRight(strings.ToLower(strings.TrimSpace(label)), ":")

	for i, line := range lines {
		normalized := strings.ToLower(strings.TrimSpace(line))

		if strings.TrimRight(normalized, ":") == labelNorm {
			if i+1 < len(lines) {
				if value := strings.TrimSpace(lines[i+1]); value != "" {
					return value, true
				}
			}

			return "", false
		}

		if strings.HasPrefix(normalized, labelNorm+":") {
			_, rest, _ := strings.Cut(line, ":")
			if value := strings.TrimSpace(rest); value != "" {
				return value, true
			}

			return "", false
		}
	}

	return "", false
}

func labeledBookingNumber(label string) extractor[string] {
	return func(lines []string) (string, bool) {
		value, ok := valueAfterLabel(lines, label)
		if !ok || !reBookingNumber.MatchString(value) {
			return "", false
		}

		return value, true
	}
}

func inlineBookingNumber(lines []string) (string, bool) {
	for _, line := range lines {
		if m := reInlineNumber.FindStringSubmatch(line); m != nil {
			return m[2], true
		}

		if m := reInlineID.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}

	return "", false
}

// extractBookingNumber walks the label variants seen across provider
// templates and forwarded messages, then falls back to inline matches.
var extractBookingNumber = firstOf(
	labeledBookingNumber("Booking number"),
	labeledBookingNumber("Confirmation number"),
	labeledBookingNumber("Reservation number"),
	labeledBookingNumber("Booking.com ID"),
	inlineBookingNumber,
)

func parseIntValue(value string) (int, bool) {
	m := reDigits.FindString(value)
	if m == "" {
		return 0, false
	}

	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}

	return n, true
}

var bookingDateLayouts = []string{"Mon 2 Jan 2006", "Monday 2 Jan 2006", "2 Jan 2006"}

// parseBookingDate handles values like "Sat 14 Feb 2026".
func parseBookingDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)

	for _, layout := range bookingDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

const rangeDateLayout = "02.01.2006"

// extractDateRange finds the first "14.02.2026 - 15.02.2026" style range.
func extractDateRange(lines []string) (time.Time, time.Time, bool) {
	for _, line := range lines {
		m := reDateRangeDMY.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		checkIn, err := time.Parse(rangeDateLayout, m[1])
		if err != nil {
			continue
		}

		checkOut, err := time.Parse(rangeDateLayout, m[2])
		if err != nil {
			continue
		}

		return checkIn, checkOut, true
	}

	return time.Time{}, time.Time{}, false
}

// parsePriceFromLine reads a leading "109,65 (Standard rate)" style amount.
// European formatting only: dots are thousands separators, the comma is the
// decimal mark.
func parsePriceFromLine(line string) (*decimal.Decimal, string) {
	m := rePriceLine.FindStringSubmatch(line)
	if m == nil {
		return nil, ""
	}

	raw := strings.ReplaceAll(m[1], ".", "")
	raw = strings.ReplaceAll(raw, ",", ".")

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, ""
	}

	amount = amount.Round(2)

	currency := ""
	if reCurrencyEUR.MatchString(line) {
		currency = "EUR"
	}

	if reCurrencyHRK.MatchString(line) {
		currency = "HRK"
	}

	return &amount, currency
}

// extractTotalPrice returns the first parsable price line in the message.
func extractTotalPrice(lines []string) (*decimal.Decimal, string) {
	for _, line := range lines {
		if amount, currency := parsePriceFromLine(line); amount != nil {
			return amount, currency
		}
	}

	return nil, ""
}

func hasAlpha(s string) bool {
	return strings.ContainsFunc(s, unicode.IsLetter)
}

func hasDigit(s string) bool {
	return strings.ContainsFunc(s, unicode.IsDigit)
}

// extractRoomBlocks parses repeated group-booking blocks:
//
//	18.09.2026 - 19.09.2026
//	R3 deluxe triple, R3 - Deluxe Triple
//	109,65 (Standard rate)
//
// A room line holding two or more distinct unit codes describes multiple
// rooms booked on one line; each comma segment then becomes its own item and
// the single trailing amount stays off the items so it is not duplicated.
func extractRoomBlocks(lines []string) []RoomItem {
	var rooms []RoomItem

	for i, line := range lines {
		m := reDateRangeDMY.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		checkIn, err := time.Parse(rangeDateLayout, m[1])
		if err != nil {
			continue
		}

		checkOut, err := time.Parse(rangeDateLayout, m[2])
		if err != nil {
			continue
		}

		roomLine := ""
		roomLineIdx := -1

		for j := i + 1; j < min(len(lines), i+4); j++ {
			if reRoomCode.MatchString(lines[j]) && hasAlpha(lines[j]) {
				roomLine = lines[j]
				roomLineIdx = j

				break
			}
		}

		if roomLine == "" {
			continue
		}

		uniqueCodes := map[string]struct{}{}
		for _, cm := range reRoomCodeNum.FindAllStringSubmatch(roomLine, -1) {
			code := strings.TrimLeft(cm[1], "0")
			if code == "" {
				code = "0"
			}

			uniqueCodes[code] = struct{}{}
		}

		var parts []string

		for _, part := range strings.Split(roomLine, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}

		var roomNames []string

		if len(uniqueCodes) >= 2 {
			for _, part := range parts {
				if reRoomCode.MatchString(part) && hasAlpha(part) {
					roomNames = append(roomNames, part)
				}
			}
		} else if len(parts) > 0 {
			// Single room repeated with its display name, keep the first segment.
			roomNames = parts[:1]
		}

		roomNames = filterNameLength(roomNames)
		if len(roomNames) == 0 {
			continue
		}

		var (
			amount   *decimal.Decimal
			currency string
		)

		for k := roomLineIdx + 1; k < min(len(lines), roomLineIdx+4); k++ {
			if amount, currency = parsePriceFromLine(lines[k]); amount != nil {
				break
			}
		}

		// One amount covering several rooms is kept as a payload total only.
		perRoomAmount := amount
		if len(roomNames) > 1 {
			perRoomAmount = nil
		}

		for _, roomName := range roomNames {
			if containsRoomItem(rooms, roomName, checkIn, checkOut) {
				continue
			}

			rooms = append(rooms, RoomItem{
				RoomName: roomName,
				CheckIn:  checkIn,
				CheckOut: checkOut,
				Amount:   perRoomAmount,
				Currency: currency,
			})
		}
	}

	return rooms
}

func filterNameLength(names []string) []string {
	var kept []string

	for _, name := range names {
		if len(name) >= 3 && len(name) <= 120 {
			kept = append(kept, name)
		}
	}

	return kept
}

func containsRoomItem(rooms []RoomItem, roomName string, checkIn, checkOut time.Time) bool {
	for _, r := range rooms {
		if r.RoomName == roomName && r.CheckIn.Equal(checkIn) && r.CheckOut.Equal(checkOut) {
			return true
		}
	}

	return false
}

var guestEmailBlocklist = map[string]struct{}{
	"rentl.io": {},
}

// extractGuestEmail prefers provider guest aliases and skips known vendor
// and footer domains.
func extractGuestEmail(lines []string) (string, bool) {
	var emails []string

	for _, line := range lines {
		if !strings.Contains(line, "@") {
			continue
		}

		emails = append(emails, reEmail.FindAllString(line, -1)...)
	}

	if len(emails) == 0 {
		return "", false
	}

	for _, email := range emails {
		if strings.HasSuffix(strings.ToLower(email), "@guest.booking.com") {
			return email, true
		}
	}

	for _, email := range emails {
		_, domain, _ := strings.Cut(email, "@")
		if _, blocked := guestEmailBlocklist[strings.ToLower(domain)]; blocked {
			continue
		}

		return email, true
	}

	return "", false
}

// extractRoomName finds a unit-coded room line like "R1 deluxe king, R1 -
// Deluxe King" and keeps the first comma segment; the subject tail is the
// fallback.
func extractRoomName(lines []string, subject string) (string, bool) {
	for _, line := range lines {
		if reRoomCode.MatchString(line) && hasAlpha(line) {
			candidate, _, _ := strings.Cut(line, ",")
			candidate = strings.TrimSpace(candidate)

			if len(candidate) >= 3 && len(candidate) <= 120 {
				return candidate, true
			}
		}
	}

	if m := reSubjectRoom.FindStringSubmatch(strings.TrimSpace(subject)); m != nil {
		return strings.TrimSpace(m[1]), true
	}

	return "", false
}

// extractNameCountryNearEmail reads the guest name and country from the
// lines around the guest e-mail address, where forwarded channel-manager
// templates place them.
func extractNameCountryNearEmail(lines []string, guestEmail string) (string, string) {
	emailIdx := -1

	for i, line := range lines {
		if strings.Contains(strings.ToLower(line), strings.ToLower(guestEmail)) {
			emailIdx = i

			break
		}
	}

	if emailIdx == -1 {
		return "", ""
	}

	// Sometimes the whole "Name, Country" blob shares the e-mail's line.
	emailLine := strings.TrimSpace(lines[emailIdx])
	if strings.Contains(emailLine, ",") && strings.Contains(emailLine, "@") {
		beforeEmail := emailLine
		if at := strings.Index(strings.ToLower(emailLine), strings.ToLower(guestEmail)); at >= 0 {
			beforeEmail = emailLine[:at]
		}

		if commaAt := strings.LastIndex(beforeEmail, ","); commaAt >= 0 {
			name := strings.TrimSpace(beforeEmail[:commaAt])
			country := strings.TrimSpace(beforeEmail[commaAt+1:])

			if name != "" && hasAlpha(name) && !hasDigit(name) {
				return name, country
			}
		}
	}

	for j := max(0, emailIdx-3); j < emailIdx; j++ {
		line := strings.TrimSpace(lines[j])
		if strings.Contains(strings.ToLower(line), "font-family") {
			continue
		}

		if strings.Contains(line, ",") && !strings.Contains(line, "@") {
			before, after, _ := strings.Cut(line, ",")
			name := strings.TrimSpace(before)
			country := strings.TrimSpace(after)

			if name != "" && hasAlpha(name) && !hasDigit(name) {
				return name, country
			}
		}

		// Group templates sometimes hold only the bare full name here.
		if !strings.Contains(line, "@") && !strings.Contains(line, ",") {
			lowered := strings.ToLower(line)

			if strings.Contains(line, ":") || hasDigit(line) {
				continue
			}

			if strings.Contains(lowered, "booking") || strings.Contains(lowered, "reservation") {
				continue
			}

			if len(line) >= 3 && len(line) <= 120 && strings.Contains(line, " ") && hasAlpha(line) {
				return line, ""
			}
		}
	}

	return "", ""
}

// inferKind classifies what the message asks for, mostly from the subject.
// Croatian channel-manager subjects use "nova rezervacija" / "otkaz".
func inferKind(subject string, lines []string) string {
	s := strings.ToLower(subject)

	switch {
	case strings.Contains(s, "nova rezervacija") || strings.Contains(s, "new reservation"):
		return KindNew
	case strings.Contains(s, "otkaz") || strings.Contains(s, "storno"):
		return KindCancel
	case strings.Contains(s, "cancel"):
		return KindCancel
	case strings.Contains(s, "modify") || strings.Contains(s, "amend") || strings.Contains(s, "changed"):
		return KindModify
	case strings.Contains(s, "confirmed") && (strings.Contains(s, "reservation") || strings.Contains(s, "booking")):
		return KindNew
	}

	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), "reservation details") {
			return KindMessage
		}
	}

	return KindMessage
}
