package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"innsync/config"
	"innsync/infras/otel"
	"innsync/internal/domains/reservation/model"
	"innsync/internal/domains/reservation/model/dto"
	"innsync/internal/domains/reservation/repository"
	roomService "innsync/internal/domains/room/service"
	"innsync/shared"
	"innsync/shared/cache"
	"innsync/shared/constant"
	gDto "innsync/shared/dto"
	"innsync/shared/failure"
	gModel "innsync/shared/model"
	"innsync/shared/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	cacheGetReservation    = "reservation:get"
	cacheGetAllReservation = "reservation:gets"
	cacheCountReservation  = "reservation:count"
)

// actorPipeline is recorded in row metadata for writes made by the e-mail
// reconciliation pipeline.
const actorPipeline = "pipeline"

type Reservation interface {
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetReservationsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.ReservationResponse, error)
	UpsertFromBookingTx(ctx context.Context, sqltx *sqlx.Tx, input dto.UpsertBookingInput) (dto.ImportResult, error)
	CancelBookingTx(ctx context.Context, sqltx *sqlx.Tx, bookingNumber string) (int64, error)
}

type serviceImpl struct {
	repo      repository.Reservation
	guestRepo repository.Guest
	roomSvc   roomService.Room
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
}

func New(
	repo repository.Reservation,
	guestRepo repository.Guest,
	roomSvc roomService.Room,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Reservation {
	return &serviceImpl{
		repo:      repo,
		guestRepo: guestRepo,
		roomSvc:   roomSvc,
		cfg:       cfg,
		cache:     cache,
		otel:      otel,
	}
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetReservationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllReservation, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for reservations")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count reservations")

		return res, fmt.Errorf("failed to count reservations: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservations")

		return res, fmt.Errorf("failed to get reservations: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservations to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountReservation, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count reservations")

		return res, fmt.Errorf("failed to count reservations: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservation count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ReservationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetReservation, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for reservation")

		return res, nil
	}

	reservation, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation")

		return res, fmt.Errorf("failed to get reservation: %w", err)
	}

	if reservation.ID == constant.Empty {
		return res, failure.NotFound("reservation not found") // nolint:wrapcheck
	}

	guests, err := s.guestRepo.GetAll(ctx,
		gDto.QueryParams{SortBy: model.GuestFieldIsPrimary, SortDir: gDto.SortDirDesc},
		shared.FilterByID(reservation.ID, model.GuestFieldReservationID, model.GuestTableName),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to get reservation guests")

		return res, fmt.Errorf("failed to get reservation guests: %w", err)
	}

	res.FromModel(reservation)
	res.WithGuests(guests)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save reservation to cache")
		}
	}()

	return res, nil
}

// UpsertFromBookingTx reconciles one room line-item into a reservation and
// its primary guest inside the caller's transaction, then runs room
// allocation. Existing rows only receive the fields that actually changed,
// and the guest patch never overwrites a filled value with a blank.
func (s *serviceImpl) UpsertFromBookingTx(ctx context.Context, sqltx *sqlx.Tx, input dto.UpsertBookingInput) (result dto.ImportResult, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.UpsertFromBookingTx")
	defer scope.End()
	defer scope.TraceIfError(err)

	reservation, err := s.upsertReservationTx(ctx, sqltx, input)
	if err != nil {
		return result, err
	}

	result.ReservationID = reservation.ID

	guestID, err := s.upsertPrimaryGuestTx(ctx, sqltx, reservation.ID, input)
	if err != nil {
		return result, err
	}

	result.PrimaryGuestID = guestID

	if _, err := s.roomSvc.AssignTx(ctx, sqltx, reservation, input.PreferredUnitCode); err != nil {
		return result, err
	}

	go s.invalidateReadCaches(ctx)

	return result, nil
}

func (s *serviceImpl) upsertReservationTx(ctx context.Context, sqltx *sqlx.Tx, input dto.UpsertBookingInput) (model.Reservation, error) {
	reservation, found, err := s.repo.GetByExternalIDForUpdateTx(ctx, sqltx, input.ExternalID)
	if err != nil {
		return model.Reservation{}, err
	}

	roomTypeID := sql.NullString{String: input.RoomTypeID, Valid: input.RoomTypeID != constant.Empty}

	if !found {
		reservation = model.Reservation{
			ID:           uuid.NewString(),
			ExternalID:   input.ExternalID,
			RoomTypeID:   roomTypeID,
			RoomName:     input.RoomName,
			CheckInDate:  input.CheckInDate,
			CheckOutDate: input.CheckOutDate,
			Status:       input.Status,
			TotalAmount:  input.TotalAmount,
			Currency:     input.Currency,
			Metadata: gModel.Metadata{
				CreatedAt:  timezone.Now(),
				ModifiedAt: timezone.Now(),
				CreatedBy:  actorPipeline,
				ModifiedBy: actorPipeline,
			},
		}

		if err := s.repo.InsertTx(ctx, sqltx, reservation); err != nil {
			return model.Reservation{}, err
		}

		return reservation, nil
	}

	changed := map[string]any{}

	if reservation.RoomName != input.RoomName {
		reservation.RoomName = input.RoomName
		changed[model.FieldRoomName] = input.RoomName
	}

	if reservation.RoomTypeID != roomTypeID {
		reservation.RoomTypeID = roomTypeID
		changed[model.FieldRoomTypeID] = roomTypeID
	}

	if !reservation.CheckInDate.Equal(input.CheckInDate) {
		reservation.CheckInDate = input.CheckInDate
		changed[model.FieldCheckInDate] = input.CheckInDate
	}

	if !reservation.CheckOutDate.Equal(input.CheckOutDate) {
		reservation.CheckOutDate = input.CheckOutDate
		changed[model.FieldCheckOutDate] = input.CheckOutDate
	}

	if reservation.Status != input.Status {
		reservation.Status = input.Status
		changed[model.FieldStatus] = input.Status
	}

	if input.TotalAmount.Valid && !nullDecimalEqual(reservation.TotalAmount, input.TotalAmount) {
		reservation.TotalAmount = input.TotalAmount
		changed[model.FieldTotalAmount] = input.TotalAmount
	}

	if input.Currency != constant.Empty && reservation.Currency != input.Currency {
		reservation.Currency = input.Currency
		changed[model.FieldCurrency] = input.Currency
	}

	if len(changed) > 0 {
		changed[constant.FieldModifiedAt] = timezone.Now()
		changed[constant.FieldModifiedBy] = actorPipeline

		if err := s.repo.UpdateTx(ctx, sqltx, changed, shared.FilterByID(reservation.ID, model.FieldID, model.TableName)); err != nil {
			return model.Reservation{}, err
		}
	}

	return reservation, nil
}

func (s *serviceImpl) upsertPrimaryGuestTx(ctx context.Context, sqltx *sqlx.Tx, reservationID string, input dto.UpsertBookingInput) (string, error) {
	firstName, lastName := model.SplitFullName(input.GuestFullName)
	if firstName == constant.Empty && lastName == constant.Empty {
		return constant.Empty, nil
	}

	primary, found, err := s.guestRepo.GetPrimaryForUpdateTx(ctx, sqltx, reservationID)
	if err != nil {
		return constant.Empty, err
	}

	email := strings.TrimSpace(input.GuestEmail)
	nationality := strings.ToUpper(strings.TrimSpace(input.GuestNationality))

	if !found {
		guest := model.Guest{
			ID:            uuid.NewString(),
			ReservationID: reservationID,
			FirstName:     orDash(firstName),
			LastName:      orDash(lastName),
			Email:         email,
			Nationality:   nationality,
			IsPrimary:     true,
			Metadata: gModel.Metadata{
				CreatedAt:  timezone.Now(),
				ModifiedAt: timezone.Now(),
				CreatedBy:  actorPipeline,
				ModifiedBy: actorPipeline,
			},
		}

		if err := s.guestRepo.InsertTx(ctx, sqltx, guest); err != nil {
			return constant.Empty, err
		}

		return guest.ID, nil
	}

	changed := map[string]any{}

	if firstName != constant.Empty && primary.FirstName != firstName {
		changed[model.GuestFieldFirstName] = firstName
	}

	if lastName != constant.Empty && primary.LastName != lastName {
		changed[model.GuestFieldLastName] = lastName
	}

	if email != constant.Empty && primary.Email != email {
		changed[model.GuestFieldEmail] = email
	}

	if nationality != constant.Empty && primary.Nationality != nationality {
		changed[model.GuestFieldNationality] = nationality
	}

	if len(changed) > 0 {
		changed[constant.FieldModifiedAt] = timezone.Now()
		changed[constant.FieldModifiedBy] = actorPipeline

		if err := s.guestRepo.UpdateTx(ctx, sqltx, changed, shared.FilterByID(primary.ID, model.GuestFieldID, model.GuestTableName)); err != nil {
			return constant.Empty, err
		}
	}

	return primary.ID, nil
}

// CancelBookingTx cancels every reservation belonging to a booking,
// including multi-room siblings, in one bulk statement.
func (s *serviceImpl) CancelBookingTx(ctx context.Context, sqltx *sqlx.Tx, bookingNumber string) (affected int64, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".reservation.CancelBookingTx")
	defer scope.End()
	defer scope.TraceIfError(err)

	affected, err = s.repo.CancelBookingTx(ctx, sqltx, bookingNumber)
	if err != nil {
		return 0, err
	}

	log.Info().Str("bookingNumber", bookingNumber).Int64("affected", affected).Msg("canceled reservations for booking")

	go s.invalidateReadCaches(ctx)

	return affected, nil
}

func (s *serviceImpl) invalidateReadCaches(ctx context.Context) {
	c := context.WithoutCancel(ctx)

	shared.InvalidateCaches(c, s.cache, cacheGetReservation)
	shared.InvalidateCaches(c, s.cache, cacheGetAllReservation)
	shared.InvalidateCaches(c, s.cache, cacheCountReservation)
}

func nullDecimalEqual(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}

	if !a.Valid {
		return true
	}

	return a.Decimal.Equal(b.Decimal)
}

func orDash(s string) string {
	if s == constant.Empty {
		return "-"
	}

	return s
}
