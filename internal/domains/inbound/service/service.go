package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"innsync/config"
	"innsync/infras/kafka"
	"innsync/infras/otel"
	"innsync/infras/postgres"
	"innsync/internal/domains/inbound/model"
	"innsync/internal/domains/inbound/model/dto"
	"innsync/internal/domains/inbound/parser"
	"innsync/internal/domains/inbound/repository"
	resDto "innsync/internal/domains/reservation/model/dto"
	resModel "innsync/internal/domains/reservation/model"
	resService "innsync/internal/domains/reservation/service"
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
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	cacheGetInbound    = "inbound:get"
	cacheGetAllInbound = "inbound:gets"
	cacheCountInbound  = "inbound:count"

	actorPipeline = "pipeline"
)

type Inbound interface {
	Create(ctx context.Context, req dto.CreateInboundEmailRequest) (dto.InboundEmailResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetInboundEmailsResponse, error)
	Get(ctx context.Context, id string) (dto.InboundEmailResponse, error)
	Process(ctx context.Context, id string, dryRun bool) (dto.ProcessResult, error)
	ProcessBatch(ctx context.Context, status string, limit int, dryRun bool) (dto.BatchResult, error)
}

type serviceImpl struct {
	repo           repository.InboundEmail
	errRepo        repository.ParseError
	reservationSvc resService.Reservation
	roomSvc        roomService.Room
	transactor     postgres.Transactor
	kafkaClient    kafka.Client
	cfg            *config.Config
	cache          cache.RedisCache
	otel           otel.Otel
}

func New(
	repo repository.InboundEmail,
	errRepo repository.ParseError,
	reservationSvc resService.Reservation,
	roomSvc roomService.Room,
	transactor postgres.Transactor,
	kafkaClient kafka.Client,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Inbound {
	return &serviceImpl{
		repo:           repo,
		errRepo:        errRepo,
		reservationSvc: reservationSvc,
		roomSvc:        roomSvc,
		transactor:     transactor,
		kafkaClient:    kafkaClient,
		cfg:            cfg,
		cache:          cache,
		otel:           otel,
	}
}

// Create ingests one message record. The transport message id is unique, so
// redelivery surfaces as a conflict instead of a duplicate row.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateInboundEmailRequest) (res dto.InboundEmailResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inbound.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	inbound := req.ToModel()

	if err = s.repo.Insert(ctx, inbound); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == constant.PqErrorCodeUniqueViolation {
			return res, failure.Conflict("inbound email already ingested") // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to insert inbound email")

		return res, fmt.Errorf("failed to insert inbound email: %w", err)
	}

	res.FromModel(inbound)

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllInbound)
		shared.InvalidateCaches(c, s.cache, cacheCountInbound)
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetInboundEmailsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inbound.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllInbound, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for inbound emails")

		return res, nil
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count inbound emails")

		return res, fmt.Errorf("failed to count inbound emails: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get inbound emails")

		return res, fmt.Errorf("failed to get inbound emails: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save inbound emails to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.InboundEmailResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inbound.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetInbound, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for inbound email")

		return res, nil
	}

	inbound, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get inbound email")

		return res, fmt.Errorf("failed to get inbound email: %w", err)
	}

	if inbound.ID == constant.Empty {
		return res, failure.NotFound("inbound email not found") // nolint:wrapcheck
	}

	parseErrors, err := s.errRepo.GetAll(ctx,
		gDto.QueryParams{SortBy: constant.FieldCreatedAt, SortDir: gDto.SortDirAsc},
		shared.FilterByID(inbound.ID, model.ParseErrorFieldInboundEmailID, model.ParseErrorTableName),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to get parse errors")

		return res, fmt.Errorf("failed to get parse errors: %w", err)
	}

	res.FromModel(inbound)
	res.WithParseErrors(parseErrors)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save inbound email to cache")
		}
	}()

	return res, nil
}

// Process runs the full pipeline for one message: lock, clear previous error
// records, parse, validate, reconcile, and record the resulting state. The
// whole attempt is one transaction; an unexpected reconciliation error rolls
// everything back and only then is the failure recorded, so a bad message
// can never leave partial reservation writes behind.
func (s *serviceImpl) Process(ctx context.Context, id string, dryRun bool) (result dto.ProcessResult, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inbound.Process")
	defer scope.End()
	defer scope.TraceIfError(err)

	result.InboundEmailID = id

	txErr := s.transactor.WithinTx(ctx, func(sqltx *sqlx.Tx) error {
		return s.processTx(ctx, sqltx, id, dryRun, &result)
	})

	if txErr != nil {
		var f *failure.Failure
		if errors.As(txErr, &f) {
			return result, txErr // nolint:wrapcheck
		}

		s.recordUnexpected(ctx, id, txErr)

		result = dto.ProcessResult{
			InboundEmailID: id,
			Status:         dto.ProcessStatusFailed,
			Code:           parser.ErrCodeUnexpected,
		}
	}

	s.publishOutcome(ctx, result)

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetInbound)
		shared.InvalidateCaches(c, s.cache, cacheGetAllInbound)
	}()

	return result, nil
}

func (s *serviceImpl) processTx(ctx context.Context, sqltx *sqlx.Tx, id string, dryRun bool, result *dto.ProcessResult) error {
	inbound, found, err := s.repo.GetByIDForUpdateTx(ctx, sqltx, id)
	if err != nil {
		return err
	}

	if !found {
		return failure.NotFound("inbound email not found") // nolint:wrapcheck
	}

	// Reprocessing replaces the previous attempt's error records.
	err = s.errRepo.DeleteTx(ctx, sqltx, shared.FilterByID(inbound.ID, model.ParseErrorFieldInboundEmailID, model.ParseErrorTableName))
	if err != nil {
		return err
	}

	payload, parseErr := parser.Parse(inbound.Subject, inbound.BodyText, inbound.BodyHTML)
	if parseErr != nil {
		var pe *parser.ParseError
		if !errors.As(parseErr, &pe) {
			return parseErr
		}

		result.Status = dto.ProcessStatusFailed
		result.Code = pe.Code

		return s.recordErrorTx(ctx, sqltx, inbound.ID, model.ParseStatusFailed, nil, pe.Code, pe.Message, pe.Context)
	}

	result.Kind = payload.Kind

	doc := payload.Document()

	payloadJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal parsed payload: %w", err)
	}

	if missing := payload.MissingFields(); len(missing) > 0 {
		result.Status = dto.ProcessStatusPartial
		result.Missing = missing

		return s.recordErrorTx(ctx, sqltx, inbound.ID, model.ParseStatusPartial, payloadJSON,
			parser.ErrCodeMissingFields,
			"missing required fields: "+strings.Join(missing, ", "),
			map[string]any{"missing": missing, "payload": doc},
		)
	}

	result.ExternalID = payload.BookingNumber

	if dryRun {
		result.Status = dto.ProcessStatusDryRun

		return s.markParsedTx(ctx, sqltx, inbound.ID, payloadJSON)
	}

	status := resModel.StatusFromKind(payload.Kind)

	// Cancellations fan out to every reservation of the booking, multi-room
	// siblings included, without creating anything.
	if status == resModel.StatusCanceled {
		if _, err := s.reservationSvc.CancelBookingTx(ctx, sqltx, payload.BookingNumber); err != nil {
			return err
		}

		result.Status = dto.ProcessStatusParsed
		result.ReservationIDs = []string{}
		result.PrimaryGuestIDs = []string{}

		return s.markParsedTx(ctx, sqltx, inbound.ID, payloadJSON)
	}

	items := payload.Rooms
	if len(items) == 0 {
		items = []parser.RoomItem{{
			RoomName: payload.RoomName,
			CheckIn:  payload.CheckIn,
			CheckOut: payload.CheckOut,
			Amount:   payload.TotalAmount,
			Currency: payload.Currency,
		}}
	}

	for idx, item := range items {
		input, err := s.buildUpsertInput(ctx, payload, item, idx, len(items), status)
		if err != nil {
			return err
		}

		imported, err := s.reservationSvc.UpsertFromBookingTx(ctx, sqltx, input)
		if err != nil {
			return err
		}

		result.ReservationIDs = append(result.ReservationIDs, imported.ReservationID)
		if imported.PrimaryGuestID != constant.Empty {
			result.PrimaryGuestIDs = append(result.PrimaryGuestIDs, imported.PrimaryGuestID)
		}
	}

	result.Status = dto.ProcessStatusParsed

	return s.markParsedTx(ctx, sqltx, inbound.ID, payloadJSON)
}

// buildUpsertInput resolves one room line-item against the room catalog.
// The first item keeps the bare booking number; later items get an ordinal
// suffix so every line-item has its own stable external identifier.
func (s *serviceImpl) buildUpsertInput(ctx context.Context, payload parser.BookingPayload, item parser.RoomItem, idx, totalItems int, status string) (resDto.UpsertBookingInput, error) {
	externalID := payload.BookingNumber
	if idx > 0 {
		externalID = fmt.Sprintf("%s-%d", payload.BookingNumber, idx+1)
	}

	parsedRoomName := strings.TrimSpace(item.RoomName)
	if parsedRoomName == constant.Empty {
		parsedRoomName = payload.RoomName
	}

	roomType, displayName, err := s.roomSvc.ResolveRoomType(ctx, parsedRoomName, payload.PropertyName)
	if err != nil {
		return resDto.UpsertBookingInput{}, err
	}

	roomTypeID := constant.Empty
	if roomType != nil {
		roomTypeID = roomType.ID
	}

	amount := decimal.NullDecimal{}

	switch {
	case item.Amount != nil:
		amount = decimal.NullDecimal{Decimal: *item.Amount, Valid: true}
	case totalItems == 1 && payload.TotalAmount != nil:
		// A single amount on a multi-room line stays a booking-level total.
		amount = decimal.NullDecimal{Decimal: *payload.TotalAmount, Valid: true}
	}

	currency := item.Currency
	if currency == constant.Empty {
		currency = payload.Currency
	}

	checkIn := item.CheckIn
	if checkIn.IsZero() {
		checkIn = payload.CheckIn
	}

	checkOut := item.CheckOut
	if checkOut.IsZero() {
		checkOut = payload.CheckOut
	}

	return resDto.UpsertBookingInput{
		ExternalID:        externalID,
		RoomName:          displayName,
		RoomTypeID:        roomTypeID,
		CheckInDate:       checkIn,
		CheckOutDate:      checkOut,
		Status:            status,
		GuestFullName:     payload.GuestFullName,
		GuestEmail:        payload.GuestEmail,
		GuestNationality:  payload.GuestNationality,
		PreferredUnitCode: s.roomSvc.PreferredUnitCode(parsedRoomName),
		TotalAmount:       amount,
		Currency:          currency,
	}, nil
}

// recordErrorTx persists a terminal parse state and its error record inside
// the transaction. A nil payload leaves the stored payload untouched.
func (s *serviceImpl) recordErrorTx(ctx context.Context, sqltx *sqlx.Tx, inboundID, parseStatus string, payloadJSON []byte, code, message string, errContext any) error {
	fields := map[string]any{
		model.FieldParseStatus:   parseStatus,
		constant.FieldModifiedAt: timezone.Now(),
	}
	if payloadJSON != nil {
		fields[model.FieldParsedPayload] = json.RawMessage(payloadJSON)
	}

	err := s.repo.UpdateTx(ctx, sqltx, fields, shared.FilterByID(inboundID, model.FieldID, model.TableName))
	if err != nil {
		return err
	}

	return s.insertParseErrorTx(ctx, sqltx, inboundID, code, message, errContext)
}

func (s *serviceImpl) insertParseErrorTx(ctx context.Context, sqltx *sqlx.Tx, inboundID, code, message string, errContext any) error {
	contextJSON, err := marshalErrorContext(errContext)
	if err != nil {
		return err
	}

	return s.errRepo.InsertTx(ctx, sqltx, newParseError(inboundID, code, message, contextJSON))
}

func (s *serviceImpl) markParsedTx(ctx context.Context, sqltx *sqlx.Tx, inboundID string, payloadJSON []byte) error {
	return s.repo.UpdateTx(ctx, sqltx, map[string]any{
		model.FieldParsedPayload: json.RawMessage(payloadJSON),
		model.FieldParseStatus:   model.ParseStatusParsed,
		constant.FieldModifiedAt: timezone.Now(),
	}, shared.FilterByID(inboundID, model.FieldID, model.TableName))
}

// recordUnexpected runs outside the rolled-back transaction so the failure
// mark survives even though the attempt's writes did not. The rollback also
// undid the in-transaction error cleanup, so the previous attempt's records
// are cleared again here before the single unexpected record is written.
func (s *serviceImpl) recordUnexpected(ctx context.Context, inboundID string, cause error) {
	log.Error().Err(cause).Str("inboundEmailID", inboundID).Msg("inbound email processing failed")

	err := s.repo.Update(ctx, map[string]any{
		model.FieldParseStatus:   model.ParseStatusFailed,
		constant.FieldModifiedAt: timezone.Now(),
	}, shared.FilterByID(inboundID, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("inboundEmailID", inboundID).Msg("failed to record failed parse status")
	}

	err = s.errRepo.Delete(ctx, shared.FilterByID(inboundID, model.ParseErrorFieldInboundEmailID, model.ParseErrorTableName))
	if err != nil {
		log.Error().Err(err).Str("inboundEmailID", inboundID).Msg("failed to clear previous parse errors")
	}

	err = s.errRepo.Insert(ctx, newParseError(inboundID, parser.ErrCodeUnexpected, cause.Error(), json.RawMessage("{}")))
	if err != nil {
		log.Error().Err(err).Str("inboundEmailID", inboundID).Msg("failed to record parse error")
	}
}

// publishOutcome emits the outcome contract to the outcome topic, keyed by
// booking identifier so all attempts for one booking stay in one partition.
func (s *serviceImpl) publishOutcome(ctx context.Context, result dto.ProcessResult) {
	key := result.ExternalID
	if key == constant.Empty {
		key = result.InboundEmailID
	}

	go func() {
		c := context.WithoutCancel(ctx)

		err := s.kafkaClient.SendMessages(c, s.cfg.Kafka.OutcomeTopic, kafka.Message{Key: key, Value: result})
		if err != nil {
			log.Error().Err(err).Msg("failed to publish process outcome")
		}
	}()
}

// ProcessBatch sweeps messages in one status strictly sequentially by
// ascending creation time. Each message's failure is recorded and counted
// without aborting the sweep; cancelling the context stops issuing further
// items.
func (s *serviceImpl) ProcessBatch(ctx context.Context, status string, limit int, dryRun bool) (res dto.BatchResult, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inbound.ProcessBatch")
	defer scope.End()
	defer scope.TraceIfError(err)

	if status == constant.Empty {
		status = model.ParseStatusPending
	}

	if limit <= 0 {
		limit = s.cfg.Pipeline.BatchLimit
	}

	models, err := s.repo.GetAll(ctx,
		gDto.QueryParams{Limit: limit, SortBy: constant.FieldCreatedAt, SortDir: gDto.SortDirAsc},
		shared.FilterByID(status, model.FieldParseStatus, model.TableName),
	)
	if err != nil {
		return res, fmt.Errorf("failed to list inbound emails for batch: %w", err)
	}

	res.ByStatus = map[string]int{}
	res.ByKind = map[string]int{}

	for _, inbound := range models {
		if ctx.Err() != nil {
			break
		}

		result, err := s.Process(ctx, inbound.ID, dryRun)
		if err != nil {
			log.Error().Err(err).Str("inboundEmailID", inbound.ID).Msg("failed to process inbound email in batch")

			continue
		}

		res.Total++
		res.ByStatus[result.Status]++

		if result.Kind != constant.Empty {
			res.ByKind[result.Kind]++
		}

		res.Results = append(res.Results, result)
	}

	return res, nil
}

func newParseError(inboundID, code, message string, contextJSON json.RawMessage) model.ParseError {
	return model.ParseError{
		ID:             uuid.NewString(),
		InboundEmailID: inboundID,
		Code:           code,
		Message:        message,
		Context:        contextJSON,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  actorPipeline,
			ModifiedBy: actorPipeline,
		},
	}
}

func marshalErrorContext(errContext any) (json.RawMessage, error) {
	if errContext == nil {
		errContext = map[string]any{}
	}

	contextJSON, err := json.Marshal(errContext)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal error context: %w", err)
	}

	return contextJSON, nil
}
