package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"

	"innsync/infras/otel"
	"innsync/infras/postgres"
	"innsync/internal/domains/inbound/model"
	"innsync/shared/constant"
	gDto "innsync/shared/dto"
	gRepo "innsync/shared/repository"

	"github.com/jmoiron/sqlx"
)

type InboundEmail interface {
	Insert(ctx context.Context, model model.InboundEmail) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.InboundEmail, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.InboundEmail, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	GetByIDForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, id string) (model.InboundEmail, bool, error)
}

type inboundImpl struct {
	gRepo.Repository[model.InboundEmail]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) InboundEmail {
	return &inboundImpl{
		Repository: gRepo.NewRepository[model.InboundEmail](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// GetByIDForUpdateTx locks the message row so two workers cannot reprocess
// the same message concurrently.
func (repo *inboundImpl) GetByIDForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, id string) (model.InboundEmail, bool, error) {
	ctx, scope := repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".inbound_email.GetByIDForUpdateTx")
	defer scope.End()

	inbound, err := repo.GetForUpdateTx(ctx, sqltx, gDto.FilterGroup{
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

		return model.InboundEmail{}, false, fmt.Errorf("failed to lock inbound email: %w", err)
	}

	return inbound, inbound.ID != constant.Empty, nil
}

type ParseError interface {
	Insert(ctx context.Context, model model.ParseError) error
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.ParseError) error
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.ParseError, error)
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	DeleteTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) error
}

type parseErrorImpl struct {
	gRepo.Repository[model.ParseError]
	db   *postgres.Connection
	otel otel.Otel
}

func NewParseError(db *postgres.Connection, otel otel.Otel) ParseError {
	return &parseErrorImpl{
		Repository: gRepo.NewRepository[model.ParseError](model.ParseErrorEntityName, model.ParseErrorTableName, model.ParseErrorFieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}
