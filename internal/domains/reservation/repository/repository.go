package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"innsync/infras/otel"
	"innsync/infras/postgres"
	"innsync/internal/domains/reservation/model"
	"innsync/shared/constant"
	gDto "innsync/shared/dto"
	"innsync/shared/logger"
	gRepo "innsync/shared/repository"
	"innsync/shared/timezone"

	"github.com/jmoiron/sqlx"
)

type Reservation interface {
	Insert(ctx context.Context, model model.Reservation) error
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Reservation) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Reservation, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Reservation, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	GetByExternalIDForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, externalID string) (model.Reservation, bool, error)
	CancelBookingTx(ctx context.Context, sqltx *sqlx.Tx, bookingNumber string) (int64, error)
	OverlapExistsTx(ctx context.Context, sqltx *sqlx.Tx, roomID, excludeReservationID string, checkIn, checkOut time.Time) (bool, error)
}

type reservationImpl struct {
	gRepo.Repository[model.Reservation]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Reservation {
	return &reservationImpl{
		Repository: gRepo.NewRepository[model.Reservation](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// GetByExternalIDForUpdateTx locks the reservation row keyed by the booking
// identifier for the rest of the transaction. The second return reports
// whether the row exists.
func (repo *reservationImpl) GetByExternalIDForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, externalID string) (model.Reservation, bool, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.GetByExternalIDForUpdateTx")
	defer scope.End()

	res, err := repo.GetForUpdateTx(ctx, sqltx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Table:    model.TableName,
				Field:    model.FieldExternalID,
				Operator: gDto.FilterOperatorEq,
				Value:    externalID,
			},
		},
	})
	if err != nil {
		scope.TraceError(err)

		return model.Reservation{}, false, fmt.Errorf("failed to lock reservation by external id: %w", err)
	}

	return res, res.ID != constant.Empty, nil
}

// CancelBookingTx marks every reservation of a booking as canceled, the
// booking number itself and any "-N" ordinal siblings from multi-room
// fan-out. Returns how many rows changed.
func (repo *reservationImpl) CancelBookingTx(ctx context.Context, sqltx *sqlx.Tx, bookingNumber string) (int64, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.CancelBookingTx")
	defer scope.End()

	query := fmt.Sprintf(
		"UPDATE %s SET %s = :status, %s = :modified_at WHERE %s = :external_id OR %s LIKE :external_id_prefix",
		model.TableName,
		model.FieldStatus,
		constant.FieldModifiedAt,
		model.FieldExternalID,
		model.FieldExternalID,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := sqltx.NamedExecContext(ctx, query, map[string]any{
		"status":             model.StatusCanceled,
		"modified_at":        timezone.Now(),
		"external_id":        bookingNumber,
		"external_id_prefix": bookingNumber + "-%",
	})
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to cancel reservations for booking: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read canceled row count: %w", err)
	}

	return affected, nil
}

// OverlapExistsTx reports whether the room unit already holds a non-canceled
// reservation overlapping the half-open [checkIn, checkOut) range, ignoring
// the reservation being placed.
func (repo *reservationImpl) OverlapExistsTx(ctx context.Context, sqltx *sqlx.Tx, roomID, excludeReservationID string, checkIn, checkOut time.Time) (bool, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".reservation.OverlapExistsTx")
	defer scope.End()

	query := fmt.Sprintf(
		"SELECT EXISTS(SELECT 1 FROM %s WHERE %s = :room_id AND %s != :exclude_id AND %s != :canceled AND %s < :check_out AND %s > :check_in)",
		model.TableName,
		model.FieldRoomID,
		model.FieldID,
		model.FieldStatus,
		model.FieldCheckInDate,
		model.FieldCheckOutDate,
	)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	prepare, err := sqltx.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to check reservation overlap: %w", err)
	}
	defer prepare.Close()

	exists := false

	err = prepare.GetContext(ctx, &exists, map[string]any{
		"room_id":    roomID,
		"exclude_id": excludeReservationID,
		"canceled":   model.StatusCanceled,
		"check_out":  checkOut,
		"check_in":   checkIn,
	})
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return false, fmt.Errorf("failed to check reservation overlap: %w", err)
	}

	return exists, nil
}

type Guest interface {
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Guest) error
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Guest, error)
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	GetPrimaryForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, reservationID string) (model.Guest, bool, error)
}

type guestImpl struct {
	gRepo.Repository[model.Guest]
	db   *postgres.Connection
	otel otel.Otel
}

func NewGuest(db *postgres.Connection, otel otel.Otel) Guest {
	return &guestImpl{
		Repository: gRepo.NewRepository[model.Guest](model.GuestEntityName, model.GuestTableName, model.GuestFieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// GetPrimaryForUpdateTx locks a reservation's primary guest row. The second
// return reports whether one exists yet.
func (repo *guestImpl) GetPrimaryForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, reservationID string) (model.Guest, bool, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".guest.GetPrimaryForUpdateTx")
	defer scope.End()

	guest, err := repo.GetForUpdateTx(ctx, sqltx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Table:    model.GuestTableName,
				Field:    model.GuestFieldReservationID,
				Operator: gDto.FilterOperatorEq,
				Value:    reservationID,
			},
			gDto.Filter{
				Table:    model.GuestTableName,
				Field:    model.GuestFieldIsPrimary,
				Operator: gDto.FilterOperatorEq,
				Value:    true,
			},
		},
	})
	if err != nil {
		scope.TraceError(err)

		return model.Guest{}, false, fmt.Errorf("failed to lock primary guest: %w", err)
	}

	return guest, guest.ID != constant.Empty, nil
}
