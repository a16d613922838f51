package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"strings"

	"innsync/infras/otel"
	"innsync/infras/postgres"
	"innsync/internal/domains/room/model"
	"innsync/shared/constant"
	gDto "innsync/shared/dto"
	gRepo "innsync/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Room interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Room, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Room, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	GetByCodeForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, code string) (model.Room, bool, error)
	GetByIDForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, id string) (model.Room, bool, error)
	GetActiveByTypeForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, roomTypeID string) ([]model.Room, error)
}

type roomImpl struct {
	gRepo.Repository[model.Room]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Room {
	return &roomImpl{
		Repository: gRepo.NewRepository[model.Room](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// GetByCodeForUpdateTx locks the active unit with the given code. Codes are
// stored uppercase; the lookup normalizes its input the same way.
func (repo *roomImpl) GetByCodeForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, code string) (model.Room, bool, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.GetByCodeForUpdateTx")
	defer scope.End()

	room, err := repo.GetForUpdateTx(ctx, sqltx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Table:    model.TableName,
				Field:    model.FieldCode,
				Operator: gDto.FilterOperatorEq,
				Value:    strings.ToUpper(strings.TrimSpace(code)),
			},
			gDto.Filter{
				Table:    model.TableName,
				Field:    model.FieldActive,
				Operator: gDto.FilterOperatorEq,
				Value:    true,
			},
		},
	})
	if err != nil {
		scope.TraceError(err)

		return model.Room{}, false, fmt.Errorf("failed to lock room by code: %w", err)
	}

	return room, room.ID != constant.Empty, nil
}

func (repo *roomImpl) GetByIDForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, id string) (model.Room, bool, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.GetByIDForUpdateTx")
	defer scope.End()

	room, err := repo.GetForUpdateTx(ctx, sqltx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Table:    model.TableName,
				Field:    model.FieldID,
				Operator: gDto.FilterOperatorEq,
				Value:    id,
			},
		},
	})
	if err != nil {
		scope.TraceError(err)

		return model.Room{}, false, fmt.Errorf("failed to lock room by id: %w", err)
	}

	return room, room.ID != constant.Empty, nil
}

// GetActiveByTypeForUpdateTx locks every active unit of a category, ordered
// by code so allocation scans are deterministic.
func (repo *roomImpl) GetActiveByTypeForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, roomTypeID string) ([]model.Room, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room.GetActiveByTypeForUpdateTx")
	defer scope.End()

	rooms, err := repo.GetAllForUpdateTx(ctx, sqltx, gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters: []any{
			gDto.Filter{
				Table:    model.TableName,
				Field:    model.FieldRoomTypeID,
				Operator: gDto.FilterOperatorEq,
				Value:    roomTypeID,
			},
			gDto.Filter{
				Table:    model.TableName,
				Field:    model.FieldActive,
				Operator: gDto.FilterOperatorEq,
				Value:    true,
			},
		},
	}, model.FieldCode)
	if err != nil {
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to lock rooms by type: %w", err)
	}

	return rooms, nil
}

type RoomType interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.RoomType, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.RoomType, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	GetActiveOrdered(ctx context.Context) ([]model.RoomType, error)
}

type roomTypeImpl struct {
	gRepo.Repository[model.RoomType]
	db   *postgres.Connection
	otel otel.Otel
}

func NewRoomType(db *postgres.Connection, otel otel.Otel) RoomType {
	return &roomTypeImpl{
		Repository: gRepo.NewRepository[model.RoomType](model.TypeEntityName, model.TypeTableName, model.TypeFieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// GetActiveOrdered returns active categories by ascending code, the order
// alias resolution walks them in.
func (repo *roomTypeImpl) GetActiveOrdered(ctx context.Context) ([]model.RoomType, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".room_type.GetActiveOrdered")
	defer scope.End()

	types, err := repo.GetAll(ctx,
		gDto.QueryParams{SortBy: model.TypeFieldCode, SortDir: gDto.SortDirAsc},
		gDto.FilterGroup{
			Operator: gDto.FilterGroupOperatorAnd,
			Filters: []any{
				gDto.Filter{
					Table:    model.TypeTableName,
					Field:    model.TypeFieldActive,
					Operator: gDto.FilterOperatorEq,
					Value:    true,
				},
			},
		},
	)
	if err != nil {
		scope.TraceError(err)

		return nil, fmt.Errorf("failed to get active room types: %w", err)
	}

	return types, nil
}
