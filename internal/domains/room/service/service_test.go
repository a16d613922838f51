package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"innsync/config"
	otelMocks "innsync/infras/otel/mocks"
	resMocks "innsync/internal/domains/reservation/mocks"
	resModel "innsync/internal/domains/reservation/model"
	"innsync/internal/domains/room/mocks"
	"innsync/internal/domains/room/model"
	"innsync/internal/domains/room/service"
)

type stubCache struct{}

func (stubCache) Save(_ context.Context, _ string, _ any, _ int) error { return nil }
func (stubCache) Get(_ context.Context, _ string, _ any) error        { return errors.New("cache miss") }
func (stubCache) Delete(_ context.Context, _ string) error            { return nil }
func (stubCache) Clear(_ context.Context, _ string) error             { return nil }

type fixture struct {
	repo     *mocks.MockRoom
	typeRepo *mocks.MockRoomType
	resRepo  *resMocks.MockReservation
	svc      service.Room
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := fixture{
		repo:     mocks.NewMockRoom(ctrl),
		typeRepo: mocks.NewMockRoomType(ctrl),
		resRepo:  resMocks.NewMockReservation(ctrl),
	}
	f.svc = service.New(f.repo, f.typeRepo, f.resRepo, &config.Config{}, stubCache{}, otelMocks.NewOtel())

	return f
}

func activeTypes() []model.RoomType {
	return []model.RoomType{
		{
			ID:           "type-1",
			Code:         "R1_DELUXE_KING",
			Name:         "Deluxe King R1",
			MatchAliases: pq.StringArray{"r1 deluxe king", "r-1 deluxe king", "r1 - deluxe king"},
			Active:       true,
		},
		{
			ID:           "type-3",
			Code:         "R3_DELUXE_TRIPLE",
			Name:         "Deluxe Triple R3",
			MatchAliases: pq.StringArray{"r3 deluxe triple", "r-3 deluxe triple"},
			Active:       true,
		},
	}
}

func stay(roomID, roomTypeID string) resModel.Reservation {
	return resModel.Reservation{
		ID:           "res-1",
		ExternalID:   "4411223344",
		RoomID:       sql.NullString{String: roomID, Valid: roomID != ""},
		RoomTypeID:   sql.NullString{String: roomTypeID, Valid: roomTypeID != ""},
		Status:       resModel.StatusExpected,
		CheckInDate:  time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
		CheckOutDate: time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestPreferredUnitCode(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		text string
		want string
	}{
		{"R1 DELUXE KING", "K1"},
		{"r-2 deluxe king", "K2"},
		{"R 3 Deluxe Triple", "T1"},
		{"R9 unknown unit", ""},
		{"Standard double room", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, f.svc.PreferredUnitCode(tt.text))
		})
	}
}

func TestResolveRoomType(t *testing.T) {
	tests := []struct {
		name     string
		parsed   string
		fallback string
		wantID   string
		wantName string
	}{
		{"alias match on parsed name", "R1 deluxe king, nonrefundable", "", "type-1", "Deluxe King R1"},
		{"alias match on fallback", "something else", "R3 Deluxe Triple", "type-3", "Deluxe Triple R3"},
		{"no match keeps parsed name", "Penthouse Suite", "", "", "Penthouse Suite"},
		{"no match falls back", "", "Villa Adriatic", "", "Villa Adriatic"},
		{"nothing at all", "", "", "", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.typeRepo.EXPECT().GetActiveOrdered(gomock.Any()).Return(activeTypes(), nil)

			roomType, displayName, err := f.svc.ResolveRoomType(context.Background(), tt.parsed, tt.fallback)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, displayName)

			if tt.wantID == "" {
				assert.Nil(t, roomType)
			} else {
				require.NotNil(t, roomType)
				assert.Equal(t, tt.wantID, roomType.ID)
			}
		})
	}
}

func TestAssignTx_SkipsCanceledAndInvertedStays(t *testing.T) {
	f := newFixture(t)

	canceled := stay("", "type-1")
	canceled.Status = resModel.StatusCanceled

	assigned, err := f.svc.AssignTx(context.Background(), nil, canceled, "K1")
	require.NoError(t, err)
	assert.Nil(t, assigned)

	inverted := stay("", "type-1")
	inverted.CheckOutDate = inverted.CheckInDate

	assigned, err = f.svc.AssignTx(context.Background(), nil, inverted, "K1")
	require.NoError(t, err)
	assert.Nil(t, assigned)
}

func TestAssignTx_PlacesPreferredUnit(t *testing.T) {
	f := newFixture(t)
	reservation := stay("", "type-1")

	preferred := model.Room{ID: "room-k1", Code: "K1", RoomTypeID: "type-1", Active: true}

	f.repo.EXPECT().
		GetByCodeForUpdateTx(gomock.Any(), gomock.Any(), "K1").
		Return(preferred, true, nil)

	f.resRepo.EXPECT().
		OverlapExistsTx(gomock.Any(), gomock.Any(), "room-k1", reservation.ID, reservation.CheckInDate, reservation.CheckOutDate).
		Return(false, nil)

	f.resRepo.EXPECT().
		UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ any, req map[string]any, _ any) error {
			assert.Equal(t, "room-k1", req[resModel.FieldRoomID])
			assert.Equal(t, "type-1", req[resModel.FieldRoomTypeID])

			return nil
		})

	assigned, err := f.svc.AssignTx(context.Background(), nil, reservation, "K1")
	require.NoError(t, err)
	require.NotNil(t, assigned)
	assert.Equal(t, "room-k1", assigned.ID)
}

func TestAssignTx_FallsBackToCategorySibling(t *testing.T) {
	f := newFixture(t)
	reservation := stay("", "type-1")

	preferred := model.Room{ID: "room-k1", Code: "K1", RoomTypeID: "type-1", Active: true}
	sibling := model.Room{ID: "room-k2", Code: "K2", RoomTypeID: "type-1", Active: true}

	f.repo.EXPECT().
		GetByCodeForUpdateTx(gomock.Any(), gomock.Any(), "K1").
		Return(preferred, true, nil)

	f.resRepo.EXPECT().
		OverlapExistsTx(gomock.Any(), gomock.Any(), "room-k1", reservation.ID, reservation.CheckInDate, reservation.CheckOutDate).
		Return(true, nil)

	f.repo.EXPECT().
		GetActiveByTypeForUpdateTx(gomock.Any(), gomock.Any(), "type-1").
		Return([]model.Room{preferred, sibling}, nil)

	f.resRepo.EXPECT().
		OverlapExistsTx(gomock.Any(), gomock.Any(), "room-k2", reservation.ID, reservation.CheckInDate, reservation.CheckOutDate).
		Return(false, nil)

	f.resRepo.EXPECT().
		UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)

	assigned, err := f.svc.AssignTx(context.Background(), nil, reservation, "K1")
	require.NoError(t, err)
	require.NotNil(t, assigned)
	assert.Equal(t, "room-k2", assigned.ID)
}

func TestAssignTx_KeepsExistingConflictFreeUnit(t *testing.T) {
	f := newFixture(t)
	reservation := stay("room-t1", "type-3")

	current := model.Room{ID: "room-t1", Code: "T1", RoomTypeID: "type-3", Active: true}

	f.repo.EXPECT().
		GetByIDForUpdateTx(gomock.Any(), gomock.Any(), "room-t1").
		Return(current, true, nil)

	f.resRepo.EXPECT().
		OverlapExistsTx(gomock.Any(), gomock.Any(), "room-t1", reservation.ID, reservation.CheckInDate, reservation.CheckOutDate).
		Return(false, nil)

	assigned, err := f.svc.AssignTx(context.Background(), nil, reservation, "")
	require.NoError(t, err)
	require.NotNil(t, assigned)
	assert.Equal(t, "room-t1", assigned.ID)
}

func TestAssignTx_ScansCategoryUnits(t *testing.T) {
	f := newFixture(t)
	reservation := stay("", "type-1")

	busy := model.Room{ID: "room-k1", Code: "K1", RoomTypeID: "type-1", Active: true}
	free := model.Room{ID: "room-k2", Code: "K2", RoomTypeID: "type-1", Active: true}

	f.repo.EXPECT().
		GetActiveByTypeForUpdateTx(gomock.Any(), gomock.Any(), "type-1").
		Return([]model.Room{busy, free}, nil)

	f.resRepo.EXPECT().
		OverlapExistsTx(gomock.Any(), gomock.Any(), "room-k1", reservation.ID, reservation.CheckInDate, reservation.CheckOutDate).
		Return(true, nil)

	f.resRepo.EXPECT().
		OverlapExistsTx(gomock.Any(), gomock.Any(), "room-k2", reservation.ID, reservation.CheckInDate, reservation.CheckOutDate).
		Return(false, nil)

	f.resRepo.EXPECT().
		UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)

	assigned, err := f.svc.AssignTx(context.Background(), nil, reservation, "")
	require.NoError(t, err)
	require.NotNil(t, assigned)
	assert.Equal(t, "room-k2", assigned.ID)
}

func TestAssignTx_LeavesUnplaceableStayUnassigned(t *testing.T) {
	f := newFixture(t)
	reservation := stay("", "type-1")

	units := []model.Room{
		{ID: "room-k1", Code: "K1", RoomTypeID: "type-1", Active: true},
		{ID: "room-k2", Code: "K2", RoomTypeID: "type-1", Active: true},
	}

	f.repo.EXPECT().
		GetActiveByTypeForUpdateTx(gomock.Any(), gomock.Any(), "type-1").
		Return(units, nil)

	f.resRepo.EXPECT().
		OverlapExistsTx(gomock.Any(), gomock.Any(), gomock.Any(), reservation.ID, reservation.CheckInDate, reservation.CheckOutDate).
		Return(true, nil).
		Times(2)

	assigned, err := f.svc.AssignTx(context.Background(), nil, reservation, "")
	require.NoError(t, err)
	assert.Nil(t, assigned)
}
