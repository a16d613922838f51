package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"innsync/config"
	"innsync/infras/kafka"
	otelMocks "innsync/infras/otel/mocks"
	"innsync/internal/domains/inbound/mocks"
	"innsync/internal/domains/inbound/model"
	"innsync/internal/domains/inbound/model/dto"
	"innsync/internal/domains/inbound/parser"
	"innsync/internal/domains/inbound/service"
	resDto "innsync/internal/domains/reservation/model/dto"
	resModel "innsync/internal/domains/reservation/model"
	resSvcMocks "innsync/internal/domains/reservation/service/mocks"
	roomSvcMocks "innsync/internal/domains/room/service/mocks"
	gDto "innsync/shared/dto"
)

type stubCache struct{}

func (stubCache) Save(_ context.Context, _ string, _ any, _ int) error { return nil }
func (stubCache) Get(_ context.Context, _ string, _ any) error        { return errors.New("cache miss") }
func (stubCache) Delete(_ context.Context, _ string) error            { return nil }
func (stubCache) Clear(_ context.Context, _ string) error             { return nil }

// stubTransactor runs the closure directly so the mocks see the same calls
// the real transaction would.
type stubTransactor struct{}

func (stubTransactor) WithinTx(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

type stubKafka struct{}

func (stubKafka) SendMessages(_ context.Context, _ string, _ ...kafka.Message) error { return nil }

// txParseErrorStore keeps parse-error records with real transaction
// semantics: Tx writes are staged and survive only when the closure commits.
// All tests use a single message, so filters clear the whole store.
type txParseErrorStore struct {
	records []model.ParseError
	staged  []model.ParseError
}

func (s *txParseErrorStore) begin()    { s.staged = append([]model.ParseError(nil), s.records...) }
func (s *txParseErrorStore) commit()   { s.records = s.staged }
func (s *txParseErrorStore) rollback() { s.staged = nil }

func (s *txParseErrorStore) Insert(_ context.Context, parseError model.ParseError) error {
	s.records = append(s.records, parseError)

	return nil
}

func (s *txParseErrorStore) InsertTx(_ context.Context, _ *sqlx.Tx, parseError model.ParseError) error {
	s.staged = append(s.staged, parseError)

	return nil
}

func (s *txParseErrorStore) GetAll(_ context.Context, _ gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.ParseError, error) {
	return s.records, nil
}

func (s *txParseErrorStore) Delete(_ context.Context, _ gDto.FilterGroup) error {
	s.records = nil

	return nil
}

func (s *txParseErrorStore) DeleteTx(_ context.Context, _ *sqlx.Tx, _ gDto.FilterGroup) error {
	s.staged = nil

	return nil
}

// storeTransactor commits or rolls back the store the way the real
// transactor treats the database transaction.
type storeTransactor struct {
	store *txParseErrorStore
}

func (t storeTransactor) WithinTx(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	t.store.begin()

	if err := fn(nil); err != nil {
		t.store.rollback()

		return err
	}

	t.store.commit()

	return nil
}

type fixture struct {
	repo    *mocks.MockInboundEmail
	errRepo *mocks.MockParseError
	resSvc  *resSvcMocks.MockReservation
	roomSvc *roomSvcMocks.MockRoom
	svc     service.Inbound
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := fixture{
		repo:    mocks.NewMockInboundEmail(ctrl),
		errRepo: mocks.NewMockParseError(ctrl),
		resSvc:  resSvcMocks.NewMockReservation(ctrl),
		roomSvc: roomSvcMocks.NewMockRoom(ctrl),
	}
	f.svc = service.New(f.repo, f.errRepo, f.resSvc, f.roomSvc, stubTransactor{}, stubKafka{}, &config.Config{}, stubCache{}, otelMocks.NewOtel())

	return f
}

func inboundEmail(subject, body string) model.InboundEmail {
	return model.InboundEmail{
		ID:          "email-1",
		Source:      "api",
		MessageID:   "<msg-1@mailer.booking.com>",
		Mailbox:     "reservations@villaadriatic.example",
		Subject:     subject,
		BodyText:    body,
		ParseStatus: model.ParseStatusPending,
	}
}

func newBookingBody() string {
	return strings.Join([]string{
		"Nova rezervacija",
		"Booking.com ID: 5522334455",
		"14.02.2026 - 15.02.2026",
		"R1 deluxe king, R1 - Deluxe King",
		"75,65 (Standard rate EUR)",
		"Marta Kowalska, Poland",
		"marta.k123@guest.booking.com",
	}, "\n")
}

func expectLockAndClear(f fixture, inbound model.InboundEmail) {
	f.repo.EXPECT().
		GetByIDForUpdateTx(gomock.Any(), gomock.Any(), inbound.ID).
		Return(inbound, true, nil)

	f.errRepo.EXPECT().
		DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)
}

func TestProcess_MissingBookingNumberFails(t *testing.T) {
	f := newFixture(t)
	inbound := inboundEmail("Fwd: question about my stay", "Hello, when is breakfast served?")

	expectLockAndClear(f, inbound)

	f.repo.EXPECT().
		UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ any, req map[string]any, _ any) error {
			assert.Equal(t, model.ParseStatusFailed, req[model.FieldParseStatus])
			assert.NotContains(t, req, model.FieldParsedPayload)

			return nil
		})

	f.errRepo.EXPECT().
		InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ any, parseError model.ParseError) error {
			assert.Equal(t, parser.ErrCodeMissingBookingNumber, parseError.Code)
			assert.Equal(t, inbound.ID, parseError.InboundEmailID)

			return nil
		})

	result, err := f.svc.Process(context.Background(), inbound.ID, false)
	require.NoError(t, err)
	assert.Equal(t, dto.ProcessStatusFailed, result.Status)
	assert.Equal(t, parser.ErrCodeMissingBookingNumber, result.Code)
}

func TestProcess_MissingFieldsIsPartial(t *testing.T) {
	f := newFixture(t)
	inbound := inboundEmail("Nova rezervacija", "Booking number: 5522334455")

	expectLockAndClear(f, inbound)

	f.repo.EXPECT().
		UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ any, req map[string]any, _ any) error {
			assert.Equal(t, model.ParseStatusPartial, req[model.FieldParseStatus])
			assert.Contains(t, req, model.FieldParsedPayload)

			return nil
		})

	f.errRepo.EXPECT().
		InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ any, parseError model.ParseError) error {
			assert.Equal(t, parser.ErrCodeMissingFields, parseError.Code)

			var errContext map[string]any
			require.NoError(t, json.Unmarshal(parseError.Context, &errContext))
			assert.Contains(t, errContext, "missing")
			assert.Contains(t, errContext, "payload")

			return nil
		})

	result, err := f.svc.Process(context.Background(), inbound.ID, false)
	require.NoError(t, err)
	assert.Equal(t, dto.ProcessStatusPartial, result.Status)
	assert.ElementsMatch(t, []string{"check_in_date", "check_out_date", "room_name"}, result.Missing)
}

func TestProcess_NewBookingReconciles(t *testing.T) {
	f := newFixture(t)
	inbound := inboundEmail("Nova rezervacija 14.02.2026 - 15.02.2026, R1 deluxe king", newBookingBody())

	expectLockAndClear(f, inbound)

	f.roomSvc.EXPECT().
		ResolveRoomType(gomock.Any(), "R1 deluxe king", "").
		Return(nil, "R1 deluxe king", nil)

	f.roomSvc.EXPECT().
		PreferredUnitCode("R1 deluxe king").
		Return("K1")

	f.resSvc.EXPECT().
		UpsertFromBookingTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ any, input resDto.UpsertBookingInput) (resDto.ImportResult, error) {
			assert.Equal(t, "5522334455", input.ExternalID)
			assert.Equal(t, resModel.StatusExpected, input.Status)
			assert.Equal(t, "K1", input.PreferredUnitCode)
			assert.Equal(t, "Marta Kowalska", input.GuestFullName)
			assert.Equal(t, "marta.k123@guest.booking.com", input.GuestEmail)
			assert.Equal(t, "PL", input.GuestNationality)
			assert.Equal(t, "2026-02-14", input.CheckInDate.Format("2006-01-02"))
			assert.Equal(t, "2026-02-15", input.CheckOutDate.Format("2006-01-02"))
			require.True(t, input.TotalAmount.Valid)
			assert.Equal(t, "75.65", input.TotalAmount.Decimal.StringFixed(2))
			assert.Equal(t, "EUR", input.Currency)

			return resDto.ImportResult{ReservationID: "res-1", PrimaryGuestID: "guest-1"}, nil
		})

	f.repo.EXPECT().
		UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ any, req map[string]any, _ any) error {
			assert.Equal(t, model.ParseStatusParsed, req[model.FieldParseStatus])
			assert.Contains(t, req, model.FieldParsedPayload)

			return nil
		})

	result, err := f.svc.Process(context.Background(), inbound.ID, false)
	require.NoError(t, err)
	assert.Equal(t, dto.ProcessStatusParsed, result.Status)
	assert.Equal(t, parser.KindNew, result.Kind)
	assert.Equal(t, "5522334455", result.ExternalID)
	assert.Equal(t, []string{"res-1"}, result.ReservationIDs)
	assert.Equal(t, []string{"guest-1"}, result.PrimaryGuestIDs)
}

func TestProcess_DryRunSkipsReconciliation(t *testing.T) {
	f := newFixture(t)
	inbound := inboundEmail("Nova rezervacija 14.02.2026 - 15.02.2026, R1 deluxe king", newBookingBody())

	expectLockAndClear(f, inbound)

	// The payload and parse status are still persisted.
	f.repo.EXPECT().
		UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ any, req map[string]any, _ any) error {
			assert.Equal(t, model.ParseStatusParsed, req[model.FieldParseStatus])

			return nil
		})

	result, err := f.svc.Process(context.Background(), inbound.ID, true)
	require.NoError(t, err)
	assert.Equal(t, dto.ProcessStatusDryRun, result.Status)
	assert.Equal(t, "5522334455", result.ExternalID)
	assert.Empty(t, result.ReservationIDs)
}

func TestProcess_CancellationFansOut(t *testing.T) {
	f := newFixture(t)
	body := strings.Join([]string{
		"Otkaz rezervacije",
		"Booking number: 5522334455",
		"14.02.2026 - 15.02.2026",
		"R1 deluxe king, R1 - Deluxe King",
	}, "\n")
	inbound := inboundEmail("Otkaz rezervacije 5522334455", body)

	expectLockAndClear(f, inbound)

	f.resSvc.EXPECT().
		CancelBookingTx(gomock.Any(), gomock.Any(), "5522334455").
		Return(int64(2), nil)

	f.repo.EXPECT().
		UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)

	result, err := f.svc.Process(context.Background(), inbound.ID, false)
	require.NoError(t, err)
	assert.Equal(t, dto.ProcessStatusParsed, result.Status)
	assert.Equal(t, parser.KindCancel, result.Kind)
	assert.NotNil(t, result.ReservationIDs)
	assert.Empty(t, result.ReservationIDs)
}

func TestProcess_MultiRoomFansOutPerItem(t *testing.T) {
	f := newFixture(t)
	body := strings.Join([]string{
		"Nova rezervacija",
		"Booking number: 6677889900",
		"18.09.2026 - 19.09.2026",
		"R-4 DELUXE KING, R-6 DELUXE KING",
		"219,30 (Standard rate)",
	}, "\n")
	inbound := inboundEmail("Nova rezervacija", body)

	expectLockAndClear(f, inbound)

	f.roomSvc.EXPECT().
		ResolveRoomType(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, "Deluxe King", nil).
		Times(2)

	f.roomSvc.EXPECT().
		PreferredUnitCode(gomock.Any()).
		Return("").
		Times(2)

	var externalIDs []string

	f.resSvc.EXPECT().
		UpsertFromBookingTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ any, input resDto.UpsertBookingInput) (resDto.ImportResult, error) {
			externalIDs = append(externalIDs, input.ExternalID)
			// The shared total must not be duplicated onto each room.
			assert.False(t, input.TotalAmount.Valid)

			return resDto.ImportResult{ReservationID: "res-" + input.ExternalID}, nil
		}).
		Times(2)

	f.repo.EXPECT().
		UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)

	result, err := f.svc.Process(context.Background(), inbound.ID, false)
	require.NoError(t, err)
	assert.Equal(t, dto.ProcessStatusParsed, result.Status)
	assert.Equal(t, []string{"6677889900", "6677889900-2"}, externalIDs)
	assert.Len(t, result.ReservationIDs, 2)
}

func TestProcess_ReconciliationErrorRecordsUnexpected(t *testing.T) {
	f := newFixture(t)
	inbound := inboundEmail("Nova rezervacija 14.02.2026 - 15.02.2026, R1 deluxe king", newBookingBody())

	expectLockAndClear(f, inbound)

	f.roomSvc.EXPECT().
		ResolveRoomType(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, "R1 deluxe king", nil)

	f.roomSvc.EXPECT().
		PreferredUnitCode(gomock.Any()).
		Return("K1")

	f.resSvc.EXPECT().
		UpsertFromBookingTx(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(resDto.ImportResult{}, errors.New("connection reset"))

	// The failure mark is written outside the rolled-back transaction, after
	// clearing whatever records the rollback restored.
	f.repo.EXPECT().
		Update(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req map[string]any, _ any) error {
			assert.Equal(t, model.ParseStatusFailed, req[model.FieldParseStatus])

			return nil
		})

	f.errRepo.EXPECT().
		Delete(gomock.Any(), gomock.Any()).
		Return(nil)

	f.errRepo.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, parseError model.ParseError) error {
			assert.Equal(t, parser.ErrCodeUnexpected, parseError.Code)
			assert.Equal(t, "connection reset", parseError.Message)
			assert.JSONEq(t, "{}", string(parseError.Context))

			return nil
		})

	result, err := f.svc.Process(context.Background(), inbound.ID, false)
	require.NoError(t, err)
	assert.Equal(t, dto.ProcessStatusFailed, result.Status)
	assert.Equal(t, parser.ErrCodeUnexpected, result.Code)
}

func TestProcess_RepeatedFailuresKeepOneErrorRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	repo := mocks.NewMockInboundEmail(ctrl)
	resSvc := resSvcMocks.NewMockReservation(ctrl)
	roomSvc := roomSvcMocks.NewMockRoom(ctrl)

	inbound := inboundEmail("Nova rezervacija 14.02.2026 - 15.02.2026, R1 deluxe king", newBookingBody())

	// A record left over from an earlier partial attempt. The rollback of the
	// in-transaction cleanup must not let it survive a failed reprocessing.
	store := &txParseErrorStore{records: []model.ParseError{
		{ID: "stale-1", InboundEmailID: inbound.ID, Code: parser.ErrCodeMissingFields},
	}}

	svc := service.New(repo, store, resSvc, roomSvc, storeTransactor{store}, stubKafka{}, &config.Config{}, stubCache{}, otelMocks.NewOtel())

	repo.EXPECT().
		GetByIDForUpdateTx(gomock.Any(), gomock.Any(), inbound.ID).
		Return(inbound, true, nil).
		Times(2)

	roomSvc.EXPECT().
		ResolveRoomType(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, "R1 deluxe king", nil).
		Times(2)

	roomSvc.EXPECT().
		PreferredUnitCode(gomock.Any()).
		Return("K1").
		Times(2)

	resSvc.EXPECT().
		UpsertFromBookingTx(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(resDto.ImportResult{}, errors.New("connection reset")).
		Times(2)

	repo.EXPECT().
		Update(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).
		Times(2)

	for attempt := 0; attempt < 2; attempt++ {
		result, err := svc.Process(context.Background(), inbound.ID, false)
		require.NoError(t, err)
		assert.Equal(t, dto.ProcessStatusFailed, result.Status)
	}

	require.Len(t, store.records, 1)
	assert.Equal(t, parser.ErrCodeUnexpected, store.records[0].Code)
	assert.Equal(t, inbound.ID, store.records[0].InboundEmailID)
}

func TestProcess_UnknownMessageReturnsNotFound(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().
		GetByIDForUpdateTx(gomock.Any(), gomock.Any(), "missing-id").
		Return(model.InboundEmail{}, false, nil)

	_, err := f.svc.Process(context.Background(), "missing-id", false)
	require.Error(t, err)
}

func TestProcessBatch_TalliesOutcomes(t *testing.T) {
	f := newFixture(t)
	inbound := inboundEmail("Nova rezervacija 14.02.2026 - 15.02.2026, R1 deluxe king", newBookingBody())

	f.repo.EXPECT().
		GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]model.InboundEmail{inbound}, nil)

	expectLockAndClear(f, inbound)

	f.roomSvc.EXPECT().
		ResolveRoomType(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, "R1 deluxe king", nil)

	f.roomSvc.EXPECT().
		PreferredUnitCode(gomock.Any()).
		Return("K1")

	f.resSvc.EXPECT().
		UpsertFromBookingTx(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(resDto.ImportResult{ReservationID: "res-1"}, nil)

	f.repo.EXPECT().
		UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil)

	batch, err := f.svc.ProcessBatch(context.Background(), "", 10, false)
	require.NoError(t, err)
	assert.Equal(t, 1, batch.Total)
	assert.Equal(t, 1, batch.ByStatus[dto.ProcessStatusParsed])
	assert.Equal(t, 1, batch.ByKind[parser.KindNew])
	require.Len(t, batch.Results, 1)
}
