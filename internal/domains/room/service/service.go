package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"innsync/config"
	"innsync/infras/otel"
	resModel "innsync/internal/domains/reservation/model"
	resRepo "innsync/internal/domains/reservation/repository"
	"innsync/internal/domains/room/model"
	"innsync/internal/domains/room/model/dto"
	"innsync/internal/domains/room/repository"
	"innsync/shared"
	"innsync/shared/cache"
	"innsync/shared/constant"
	gDto "innsync/shared/dto"
	"innsync/shared/failure"
	"innsync/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetRoom     = "room:get"
	cacheGetAllRoom  = "room:gets"
	cacheGetAllTypes = "room:types"
)

// preferredUnitByNumber maps the provider's "R<n>" room numbers to physical
// unit codes. These are room numbers in the e-mail templates, not room-type
// codes, so the mapping is fixed per property.
var reRoomNumber = regexp.MustCompile(`(?i)\bR\s*-?\s*(\d+)\b`)

var preferredUnitByNumber = map[string]string{
	"1": "K1",
	"2": "K2",
	"3": "T1",
}

type Room interface {
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRoomsResponse, error)
	Get(ctx context.Context, id string) (dto.RoomResponse, error)
	GetAllTypes(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRoomTypesResponse, error)
	ResolveRoomType(ctx context.Context, parsedRoomName, fallbackRoomName string) (*model.RoomType, string, error)
	PreferredUnitCode(text string) string
	AssignTx(ctx context.Context, sqltx *sqlx.Tx, reservation resModel.Reservation, preferredCode string) (*model.Room, error)
}

type serviceImpl struct {
	repo            repository.Room
	typeRepo        repository.RoomType
	reservationRepo resRepo.Reservation
	cfg             *config.Config
	cache           cache.RedisCache
	otel            otel.Otel
}

func New(
	repo repository.Room,
	typeRepo repository.RoomType,
	reservationRepo resRepo.Reservation,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Room {
	return &serviceImpl{
		repo:            repo,
		typeRepo:        typeRepo,
		reservationRepo: reservationRepo,
		cfg:             cfg,
		cache:           cache,
		otel:            otel,
	}
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllRoom, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for rooms")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rooms")

		return res, fmt.Errorf("failed to count rooms: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get rooms")

		return res, fmt.Errorf("failed to get rooms: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save rooms to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetRoom, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room")

		return res, nil
	}

	room, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return res, failure.NotFound("room not found") // nolint:wrapcheck
	}

	res.FromModel(room)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) GetAllTypes(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRoomTypesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.GetAllTypes")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllTypes, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room types")

		return res, nil
	}

	total, err := s.typeRepo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count room types")

		return res, fmt.Errorf("failed to count room types: %w", err)
	}

	models, err := s.typeRepo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get room types")

		return res, fmt.Errorf("failed to get room types: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room types to cache")
		}
	}()

	return res, nil
}

// ResolveRoomType maps a parsed room description to a category via alias
// substring matching over active categories ordered by code. The returned
// display name is the category name when resolved, otherwise the first
// non-empty input, and "Unknown" as a last resort.
func (s *serviceImpl) ResolveRoomType(ctx context.Context, parsedRoomName, fallbackRoomName string) (roomType *model.RoomType, displayName string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.ResolveRoomType")
	defer scope.End()
	defer scope.TraceIfError(err)

	types, err := s.typeRepo.GetActiveOrdered(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve room type: %w", err)
	}

	for _, text := range []string{parsedRoomName, fallbackRoomName} {
		if matched := matchRoomType(types, text); matched != nil {
			name := matched.Name
			if name == constant.Empty {
				name = matched.Code
			}

			return matched, name, nil
		}
	}

	fallback := strings.TrimSpace(parsedRoomName)
	if fallback == constant.Empty {
		fallback = strings.TrimSpace(fallbackRoomName)
	}

	if fallback == constant.Empty {
		fallback = "Unknown"
	}

	return nil, fallback, nil
}

func matchRoomType(types []model.RoomType, text string) *model.RoomType {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == constant.Empty {
		return nil
	}

	for i := range types {
		for _, alias := range types[i].MatchAliases {
			a := strings.ToLower(strings.TrimSpace(alias))
			if a == constant.Empty {
				continue
			}

			if strings.Contains(lowered, a) {
				return &types[i]
			}
		}
	}

	return nil
}

// PreferredUnitCode extracts the provider's "R<n>" room number from a parsed
// room description and maps it to a physical unit code.
func (s *serviceImpl) PreferredUnitCode(text string) string {
	m := reRoomNumber.FindStringSubmatch(text)
	if m == nil {
		return constant.Empty
	}

	return preferredUnitByNumber[m[1]]
}

// AssignTx places a reservation on a physical unit inside the caller's
// transaction. Preference order: the preferred unit when free, a sibling of
// the preferred unit's category, the already-assigned unit when still
// conflict-free, then any free unit of the reservation's category. A
// reservation that cannot be placed stays unassigned rather than failing the
// import.
func (s *serviceImpl) AssignTx(ctx context.Context, sqltx *sqlx.Tx, reservation resModel.Reservation, preferredCode string) (assigned *model.Room, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".room.AssignTx")
	defer scope.End()
	defer scope.TraceIfError(err)

	if reservation.Status == resModel.StatusCanceled {
		return nil, nil
	}

	if !reservation.CheckInDate.Before(reservation.CheckOutDate) {
		return nil, nil
	}

	if preferredCode != constant.Empty {
		room, placed, err := s.assignPreferredTx(ctx, sqltx, reservation, preferredCode)
		if err != nil {
			return nil, err
		}

		if placed {
			return room, nil
		}
	}

	// Keep the existing assignment when it still works.
	if reservation.RoomID.Valid {
		current, found, err := s.repo.GetByIDForUpdateTx(ctx, sqltx, reservation.RoomID.String)
		if err != nil {
			return nil, err
		}

		if found && current.Active {
			conflict, err := s.reservationRepo.OverlapExistsTx(ctx, sqltx, current.ID, reservation.ID, reservation.CheckInDate, reservation.CheckOutDate)
			if err != nil {
				return nil, err
			}

			if !conflict {
				return &current, nil
			}
		}
	}

	if !reservation.RoomTypeID.Valid {
		return nil, nil
	}

	units, err := s.repo.GetActiveByTypeForUpdateTx(ctx, sqltx, reservation.RoomTypeID.String)
	if err != nil {
		return nil, err
	}

	for i := range units {
		conflict, err := s.reservationRepo.OverlapExistsTx(ctx, sqltx, units[i].ID, reservation.ID, reservation.CheckInDate, reservation.CheckOutDate)
		if err != nil {
			return nil, err
		}

		if conflict {
			continue
		}

		if err := s.placeTx(ctx, sqltx, reservation.ID, units[i].ID, constant.Empty); err != nil {
			return nil, err
		}

		return &units[i], nil
	}

	return nil, nil
}

// assignPreferredTx tries the preferred unit, then its category siblings.
// The boolean reports whether a unit was placed.
func (s *serviceImpl) assignPreferredTx(ctx context.Context, sqltx *sqlx.Tx, reservation resModel.Reservation, preferredCode string) (*model.Room, bool, error) {
	preferred, found, err := s.repo.GetByCodeForUpdateTx(ctx, sqltx, preferredCode)
	if err != nil {
		return nil, false, err
	}

	if !found {
		return nil, false, nil
	}

	conflict, err := s.reservationRepo.OverlapExistsTx(ctx, sqltx, preferred.ID, reservation.ID, reservation.CheckInDate, reservation.CheckOutDate)
	if err != nil {
		return nil, false, err
	}

	if !conflict {
		if err := s.placeTx(ctx, sqltx, reservation.ID, preferred.ID, preferred.RoomTypeID); err != nil {
			return nil, false, err
		}

		return &preferred, true, nil
	}

	siblings, err := s.repo.GetActiveByTypeForUpdateTx(ctx, sqltx, preferred.RoomTypeID)
	if err != nil {
		return nil, false, err
	}

	for i := range siblings {
		if siblings[i].ID == preferred.ID {
			continue
		}

		conflict, err := s.reservationRepo.OverlapExistsTx(ctx, sqltx, siblings[i].ID, reservation.ID, reservation.CheckInDate, reservation.CheckOutDate)
		if err != nil {
			return nil, false, err
		}

		if conflict {
			continue
		}

		if err := s.placeTx(ctx, sqltx, reservation.ID, siblings[i].ID, siblings[i].RoomTypeID); err != nil {
			return nil, false, err
		}

		// The booked unit was taken; the stay moves to a sibling of the same
		// category at the originally booked rate.
		log.Warn().
			Str("reservationID", reservation.ID).
			Str("preferredCode", preferredCode).
			Str("assignedCode", siblings[i].Code).
			Msg("preferred room unit unavailable, assigned category sibling")

		return &siblings[i], true, nil
	}

	return nil, false, nil
}

// placeTx writes the room assignment. The room type follows the physical
// unit when provided so the pair stays consistent.
func (s *serviceImpl) placeTx(ctx context.Context, sqltx *sqlx.Tx, reservationID, roomID, roomTypeID string) error {
	fields := map[string]any{
		resModel.FieldRoomID:     roomID,
		constant.FieldModifiedAt: timezone.Now(),
	}
	if roomTypeID != constant.Empty {
		fields[resModel.FieldRoomTypeID] = roomTypeID
	}

	if err := s.reservationRepo.UpdateTx(ctx, sqltx, fields, shared.FilterByID(reservationID, resModel.FieldID, resModel.TableName)); err != nil {
		return fmt.Errorf("failed to assign room unit: %w", err)
	}

	return nil
}
