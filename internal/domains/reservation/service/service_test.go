package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"innsync/config"
	otelMocks "innsync/infras/otel/mocks"
	"innsync/internal/domains/reservation/mocks"
	"innsync/internal/domains/reservation/model"
	"innsync/internal/domains/reservation/model/dto"
	"innsync/internal/domains/reservation/service"
	roomSvcMocks "innsync/internal/domains/room/service/mocks"
	"innsync/shared/constant"
	gModel "innsync/shared/model"
	"innsync/shared/timezone"
)

// stubCache always misses so service tests exercise the repository path.
type stubCache struct{}

func (stubCache) Save(_ context.Context, _ string, _ any, _ int) error { return nil }
func (stubCache) Get(_ context.Context, _ string, _ any) error        { return errors.New("cache miss") }
func (stubCache) Delete(_ context.Context, _ string) error            { return nil }
func (stubCache) Clear(_ context.Context, _ string) error             { return nil }

type fixture struct {
	repo      *mocks.MockReservation
	guestRepo *mocks.MockGuest
	roomSvc   *roomSvcMocks.MockRoom
	svc       service.Reservation
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := fixture{
		repo:      mocks.NewMockReservation(ctrl),
		guestRepo: mocks.NewMockGuest(ctrl),
		roomSvc:   roomSvcMocks.NewMockRoom(ctrl),
	}
	f.svc = service.New(f.repo, f.guestRepo, f.roomSvc, &config.Config{}, stubCache{}, otelMocks.NewOtel())

	return f
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func bookingInput() dto.UpsertBookingInput {
	return dto.UpsertBookingInput{
		ExternalID:        "4411223344",
		RoomName:          "Deluxe King R1",
		RoomTypeID:        "type-1",
		CheckInDate:       time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
		CheckOutDate:      time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		Status:            model.StatusExpected,
		GuestFullName:     "Ana Petrović",
		GuestEmail:        "ana.p@guest.booking.com",
		GuestNationality:  "hr",
		PreferredUnitCode: "K1",
		TotalAmount:       decimal.NullDecimal{Decimal: decimal.RequireFromString("119.30"), Valid: true},
		Currency:          "EUR",
	}
}

func existingReservation(input dto.UpsertBookingInput) model.Reservation {
	return model.Reservation{
		ID:           "res-1",
		ExternalID:   input.ExternalID,
		RoomTypeID:   toNullString(input.RoomTypeID),
		RoomName:     input.RoomName,
		CheckInDate:  input.CheckInDate,
		CheckOutDate: input.CheckOutDate,
		Status:       input.Status,
		TotalAmount:  input.TotalAmount,
		Currency:     input.Currency,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  "pipeline",
			ModifiedBy: "pipeline",
		},
	}
}

func TestUpsertFromBookingTx_CreatesReservationAndGuest(t *testing.T) {
	f := newFixture(t)
	input := bookingInput()

	f.repo.EXPECT().
		GetByExternalIDForUpdateTx(gomock.Any(), gomock.Any(), input.ExternalID).
		Return(model.Reservation{}, false, nil)

	f.repo.EXPECT().
		InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ any, reservation model.Reservation) error {
			assert.NotEmpty(t, reservation.ID)
			assert.Equal(t, input.ExternalID, reservation.ExternalID)
			assert.Equal(t, input.RoomName, reservation.RoomName)
			assert.Equal(t, model.StatusExpected, reservation.Status)
			assert.True(t, reservation.TotalAmount.Valid)
			assert.Equal(t, "pipeline", reservation.CreatedBy)

			return nil
		})

	f.guestRepo.EXPECT().
		GetPrimaryForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(model.Guest{}, false, nil)

	f.guestRepo.EXPECT().
		InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ any, guest model.Guest) error {
			assert.Equal(t, "Ana", guest.FirstName)
			assert.Equal(t, "Petrović", guest.LastName)
			assert.Equal(t, "ana.p@guest.booking.com", guest.Email)
			assert.Equal(t, "HR", guest.Nationality)
			assert.True(t, guest.IsPrimary)

			return nil
		})

	f.roomSvc.EXPECT().
		AssignTx(gomock.Any(), gomock.Any(), gomock.Any(), "K1").
		Return(nil, nil)

	result, err := f.svc.UpsertFromBookingTx(context.Background(), nil, input)
	require.NoError(t, err)
	assert.NotEmpty(t, result.ReservationID)
	assert.NotEmpty(t, result.PrimaryGuestID)
}

func TestUpsertFromBookingTx_UpdatesOnlyChangedFields(t *testing.T) {
	f := newFixture(t)
	input := bookingInput()

	existing := existingReservation(input)
	existing.Status = model.StatusCanceled // reinstated by a modify message

	f.repo.EXPECT().
		GetByExternalIDForUpdateTx(gomock.Any(), gomock.Any(), input.ExternalID).
		Return(existing, true, nil)

	f.repo.EXPECT().
		UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ any, req map[string]any, _ any) error {
			assert.Equal(t, model.StatusExpected, req[model.FieldStatus])
			assert.Contains(t, req, constant.FieldModifiedAt)
			assert.Equal(t, "pipeline", req[constant.FieldModifiedBy])
			assert.NotContains(t, req, model.FieldRoomName)
			assert.NotContains(t, req, model.FieldCheckInDate)
			assert.NotContains(t, req, model.FieldTotalAmount)

			return nil
		})

	guest := model.Guest{
		ID:            "guest-1",
		ReservationID: existing.ID,
		FirstName:     "Ana",
		LastName:      "Petrović",
		Email:         "ana.p@guest.booking.com",
		Nationality:   "HR",
		IsPrimary:     true,
	}

	f.guestRepo.EXPECT().
		GetPrimaryForUpdateTx(gomock.Any(), gomock.Any(), existing.ID).
		Return(guest, true, nil)

	f.roomSvc.EXPECT().
		AssignTx(gomock.Any(), gomock.Any(), gomock.Any(), "K1").
		Return(nil, nil)

	result, err := f.svc.UpsertFromBookingTx(context.Background(), nil, input)
	require.NoError(t, err)
	assert.Equal(t, existing.ID, result.ReservationID)
	assert.Equal(t, guest.ID, result.PrimaryGuestID)
}

func TestUpsertFromBookingTx_NoChangesIssuesNoUpdate(t *testing.T) {
	f := newFixture(t)
	input := bookingInput()
	existing := existingReservation(input)

	f.repo.EXPECT().
		GetByExternalIDForUpdateTx(gomock.Any(), gomock.Any(), input.ExternalID).
		Return(existing, true, nil)

	f.guestRepo.EXPECT().
		GetPrimaryForUpdateTx(gomock.Any(), gomock.Any(), existing.ID).
		Return(model.Guest{
			ID:          "guest-1",
			FirstName:   "Ana",
			LastName:    "Petrović",
			Email:       "ana.p@guest.booking.com",
			Nationality: "HR",
			IsPrimary:   true,
		}, true, nil)

	f.roomSvc.EXPECT().
		AssignTx(gomock.Any(), gomock.Any(), gomock.Any(), "K1").
		Return(nil, nil)

	_, err := f.svc.UpsertFromBookingTx(context.Background(), nil, input)
	require.NoError(t, err)
}

func TestUpsertFromBookingTx_BlankFieldsNeverOverwriteGuest(t *testing.T) {
	f := newFixture(t)

	input := bookingInput()
	input.GuestEmail = ""
	input.GuestNationality = ""

	existing := existingReservation(bookingInput())

	f.repo.EXPECT().
		GetByExternalIDForUpdateTx(gomock.Any(), gomock.Any(), input.ExternalID).
		Return(existing, true, nil)

	// The stored guest keeps the e-mail and nationality a later message omits.
	f.guestRepo.EXPECT().
		GetPrimaryForUpdateTx(gomock.Any(), gomock.Any(), existing.ID).
		Return(model.Guest{
			ID:          "guest-1",
			FirstName:   "Ana",
			LastName:    "Petrović",
			Email:       "ana.p@guest.booking.com",
			Nationality: "HR",
			IsPrimary:   true,
		}, true, nil)

	f.roomSvc.EXPECT().
		AssignTx(gomock.Any(), gomock.Any(), gomock.Any(), "K1").
		Return(nil, nil)

	result, err := f.svc.UpsertFromBookingTx(context.Background(), nil, input)
	require.NoError(t, err)
	assert.Equal(t, "guest-1", result.PrimaryGuestID)
}

func TestUpsertFromBookingTx_NoGuestNameSkipsGuestUpsert(t *testing.T) {
	f := newFixture(t)

	input := bookingInput()
	input.GuestFullName = ""

	existing := existingReservation(bookingInput())

	f.repo.EXPECT().
		GetByExternalIDForUpdateTx(gomock.Any(), gomock.Any(), input.ExternalID).
		Return(existing, true, nil)

	f.roomSvc.EXPECT().
		AssignTx(gomock.Any(), gomock.Any(), gomock.Any(), "K1").
		Return(nil, nil)

	result, err := f.svc.UpsertFromBookingTx(context.Background(), nil, input)
	require.NoError(t, err)
	assert.Empty(t, result.PrimaryGuestID)
}

func TestCancelBookingTx(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().
		CancelBookingTx(gomock.Any(), gomock.Any(), "4411223344").
		Return(int64(3), nil)

	affected, err := f.svc.CancelBookingTx(context.Background(), nil, "4411223344")
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		Return(model.Reservation{}, nil)

	_, err := f.svc.Get(context.Background(), "missing-id")
	require.Error(t, err)
}

func TestSplitFullName(t *testing.T) {
	tests := []struct {
		name  string
		full  string
		first string
		last  string
	}{
		{"two words", "Ana Petrović", "Ana", "Petrović"},
		{"three words", "Ana Maria Petrović", "Ana Maria", "Petrović"},
		{"single word", "Ana", "Ana", ""},
		{"empty", "", "", ""},
		{"extra spaces", "  Ana   Petrović  ", "Ana", "Petrović"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := model.SplitFullName(tt.full)
			assert.Equal(t, tt.first, first)
			assert.Equal(t, tt.last, last)
		})
	}
}
