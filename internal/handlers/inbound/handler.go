package inbound

import (
	"net/http"
	"strconv"

	"innsync/infras/otel"
	"innsync/internal/domains/inbound/model"
	"innsync/internal/domains/inbound/model/dto"
	"innsync/internal/domains/inbound/service"
	"innsync/shared"
	"innsync/shared/constant"
	gDto "innsync/shared/dto"
	"innsync/shared/validator"
	"innsync/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Inbound
	otel    otel.Otel
}

func New(service service.Inbound, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/inbound-emails", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateInboundEmail)
		routerGroup.Get("/", handler.GetInboundEmails)
		routerGroup.Get("/{id}", handler.GetInboundEmailByID)
		routerGroup.Post("/{id}/process", handler.ProcessInboundEmail)
		routerGroup.Post("/process", handler.ProcessBatch)
	})
}

// CreateInboundEmail ingests one raw reservation e-mail.
// @Summary Ingest an inbound e-mail
// @Description Store a raw reservation e-mail for later parsing. The message id is unique, so redelivery returns a conflict.
// @Tags InboundEmail
// @Accept json
// @Produce json
// @Param request body dto.CreateInboundEmailRequest true "Inbound e-mail"
// @Success 201 {object} response.Data[dto.InboundEmailResponse] "Inbound e-mail ingested"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/inbound-emails [post]
// @Security ApiKeyAuth
func (handler *Handler) CreateInboundEmail(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateInboundEmail")
	defer scope.End()

	req := dto.CreateInboundEmailRequest{}

	if err := validator.Validate(request.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(writer, err)

		return
	}

	res, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create inbound email")

		response.WithError(writer, err)

		return
	}

	scope.AddEvent("Inbound email ingested successfully")

	response.WithJSON(writer, http.StatusCreated, res)
}

// GetInboundEmails retrieves ingested e-mails.
// @Summary Get inbound e-mails
// @Description Retrieve ingested e-mails with optional filtering and pagination.
// @Tags InboundEmail
// @Accept json
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param parse_status query string false "Filter by parse status (pending, parsed, partial, failed)"
// @Param mailbox query string false "Filter by mailbox"
// @Success 200 {object} response.Data[dto.GetInboundEmailsResponse] "List of inbound e-mails"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/inbound-emails [get]
// @Security ApiKeyAuth
func (handler *Handler) GetInboundEmails(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetInboundEmails")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)

	filterGroup := gDto.FilterGroup{
		Operator: gDto.FilterGroupOperatorAnd,
		Filters:  []any{},
	}

	for _, field := range []string{model.FieldParseStatus, model.FieldMailbox} {
		if value := r.URL.Query().Get(field); value != constant.Empty {
			filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
				Field:    field,
				Operator: gDto.FilterOperatorEq,
				Value:    value,
				Table:    model.TableName,
			})
		}
	}

	emails, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get inbound emails")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Inbound emails retrieved successfully")

	response.WithJSON(w, http.StatusOK, emails)
}

// GetInboundEmailByID retrieves one e-mail with its parse errors.
// @Summary Get an inbound e-mail by ID
// @Description Retrieve one ingested e-mail, its stored payload, and the error records of the latest attempt.
// @Tags InboundEmail
// @Accept json
// @Produce json
// @Param id path string true "Inbound e-mail ID"
// @Success 200 {object} response.Data[dto.InboundEmailResponse] "Inbound e-mail details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/inbound-emails/{id} [get]
// @Security ApiKeyAuth
func (handler *Handler) GetInboundEmailByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetInboundEmailByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	email, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get inbound email by ID")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Inbound email retrieved successfully")

	response.WithJSON(w, http.StatusOK, email)
}

// ProcessInboundEmail runs the parse-and-reconcile pipeline for one e-mail.
// @Summary Process an inbound e-mail
// @Description Parse the e-mail and reconcile reservations. Safe to repeat; a dry run parses without touching reservations.
// @Tags InboundEmail
// @Accept json
// @Produce json
// @Param id path string true "Inbound e-mail ID"
// @Param dry_run query boolean false "Parse and persist the payload without reconciling"
// @Success 200 {object} response.Data[dto.ProcessResult] "Processing outcome"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/inbound-emails/{id}/process [post]
// @Security ApiKeyAuth
func (handler *Handler) ProcessInboundEmail(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ProcessInboundEmail")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	dryRun := false
	if v := shared.ConvertStringToBool(r.URL.Query().Get(constant.RequestParamDryRun)); v != nil {
		dryRun = *v
	}

	result, err := handler.service.Process(ctx, id, dryRun)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to process inbound email")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Inbound email processed")

	response.WithJSON(w, http.StatusOK, result)
}

// ProcessBatch sweeps pending e-mails sequentially.
// @Summary Process a batch of inbound e-mails
// @Description Process e-mails in one parse status sequentially by ascending ingestion time.
// @Tags InboundEmail
// @Accept json
// @Produce json
// @Param status query string false "Parse status to sweep (default pending)"
// @Param limit query integer false "Maximum number of e-mails to process"
// @Param dry_run query boolean false "Parse and persist payloads without reconciling"
// @Success 200 {object} response.Data[dto.BatchResult] "Batch outcome"
// @Failure 500 {object} response.Error
// @Router /v1/inbound-emails/process [post]
// @Security ApiKeyAuth
func (handler *Handler) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ProcessBatch")
	defer scope.End()

	status := r.URL.Query().Get("status")

	limit := 0
	if v := r.URL.Query().Get(constant.RequestParamLimit); v != constant.Empty {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	dryRun := false
	if v := shared.ConvertStringToBool(r.URL.Query().Get(constant.RequestParamDryRun)); v != nil {
		dryRun = *v
	}

	result, err := handler.service.ProcessBatch(ctx, status, limit, dryRun)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to process inbound email batch")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Inbound email batch processed")

	response.WithJSON(w, http.StatusOK, result)
}
