//go:build wireinject
// +build wireinject

package di

import (
	"innsync/config"
	"innsync/infras/kafka"
	"innsync/infras/otel"
	"innsync/infras/postgres"
	"innsync/infras/redis"
	"innsync/shared/cache"
	"innsync/transport/http"
	"innsync/transport/http/middleware"
	"innsync/transport/http/router"

	inboundRepository "innsync/internal/domains/inbound/repository"
	inboundService "innsync/internal/domains/inbound/service"
	reservationRepository "innsync/internal/domains/reservation/repository"
	reservationService "innsync/internal/domains/reservation/service"
	roomRepository "innsync/internal/domains/room/repository"
	roomService "innsync/internal/domains/room/service"

	inboundHandler "innsync/internal/handlers/inbound"
	reservationHandler "innsync/internal/handlers/reservation"
	roomHandler "innsync/internal/handlers/room"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	wire.Bind(new(postgres.Transactor), new(*postgres.Connection)),
	otel.New,
	redis.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomRepository.NewRoomType,
	roomService.New,
)

var reservationDomain = wire.NewSet(
	reservationRepository.New,
	reservationRepository.NewGuest,
	reservationService.New,
)

var inboundDomain = wire.NewSet(
	inboundRepository.New,
	inboundRepository.NewParseError,
	inboundService.New,
)

var domains = wire.NewSet(
	roomDomain,
	reservationDomain,
	inboundDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	inboundHandler.New,
	reservationHandler.New,
	roomHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}

func InitializePipeline() inboundService.Inbound {
	wire.Build(
		configurations,
		infrastructures,
		sharedHelpers,
		domains,
	)

	return nil
}
