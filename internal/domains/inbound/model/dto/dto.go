package dto

import (
	"database/sql"
	"encoding/json"
	"time"

	"innsync/internal/domains/inbound/model"
	"innsync/shared"
	"innsync/shared/constant"
	gDto "innsync/shared/dto"
	gModel "innsync/shared/model"
	"innsync/shared/timezone"

	"github.com/google/uuid"
)

const sourceAPI = "api"

type CreateInboundEmailRequest struct {
	MessageID  string `json:"message_id"  validate:"required,max=500"`
	Mailbox    string `json:"mailbox"     validate:"required,email"`
	Sender     string `json:"sender"      validate:"omitempty,max=500"`
	Subject    string `json:"subject"     validate:"omitempty,max=998"`
	BodyText   string `json:"body_text"   validate:"omitempty"`
	BodyHTML   string `json:"body_html"   validate:"omitempty"`
	ReceivedAt string `json:"received_at" validate:"omitempty"`
}

func (c *CreateInboundEmailRequest) ToModel() model.InboundEmail {
	receivedAt := sql.NullTime{}
	if t, err := timezone.Parse(time.RFC3339, c.ReceivedAt); err == nil && c.ReceivedAt != constant.Empty {
		receivedAt = sql.NullTime{Time: t, Valid: true}
	}

	return model.InboundEmail{
		ID:            uuid.NewString(),
		Source:        sourceAPI,
		MessageID:     c.MessageID,
		Mailbox:       c.Mailbox,
		Sender:        c.Sender,
		Subject:       c.Subject,
		ReceivedAt:    receivedAt,
		BodyText:      c.BodyText,
		BodyHTML:      c.BodyHTML,
		ParsedPayload: json.RawMessage("{}"),
		ParseStatus:   model.ParseStatusPending,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  sourceAPI,
			ModifiedBy: sourceAPI,
		},
	}
}

type ParseErrorResponse struct {
	ID      string          `json:"id"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Context json.RawMessage `json:"context"`
	gDto.Metadata
}

func (p *ParseErrorResponse) FromModel(model model.ParseError) {
	p.ID = model.ID
	p.Code = model.Code
	p.Message = model.Message
	p.Context = model.Context
	p.Metadata.FromModel(model.Metadata)
}

type InboundEmailResponse struct {
	ID            string               `json:"id"`
	Source        string               `json:"source"`
	MessageID     string               `json:"message_id"`
	Mailbox       string               `json:"mailbox"`
	Sender        string               `json:"sender,omitempty"`
	Subject       string               `json:"subject,omitempty"`
	ReceivedAt    string               `json:"received_at,omitempty"`
	ParsedPayload json.RawMessage      `json:"parsed_payload,omitempty"`
	ParseStatus   string               `json:"parse_status"`
	ParseNote     string               `json:"parse_note,omitempty"`
	ParseErrors   []ParseErrorResponse `json:"parse_errors,omitempty"`
	gDto.Metadata
}

func (r *InboundEmailResponse) FromModel(model model.InboundEmail) {
	r.ID = model.ID
	r.Source = model.Source
	r.MessageID = model.MessageID
	r.Mailbox = model.Mailbox
	r.Sender = model.Sender
	r.Subject = model.Subject
	r.ParsedPayload = model.ParsedPayload
	r.ParseStatus = model.ParseStatus
	r.ParseNote = model.ParseNote

	if model.ReceivedAt.Valid {
		r.ReceivedAt = timezone.Format(model.ReceivedAt.Time, constant.DateFormat)
	}

	r.Metadata.FromModel(model.Metadata)
}

func (r *InboundEmailResponse) WithParseErrors(models []model.ParseError) {
	r.ParseErrors = make([]ParseErrorResponse, len(models))
	for i, mod := range models {
		r.ParseErrors[i].FromModel(mod)
	}
}

type GetInboundEmailsResponse struct {
	InboundEmails []InboundEmailResponse `json:"inbound_emails"`
	TotalPage     int                    `json:"total_page"`
	TotalData     int                    `json:"total_data"`
}

func (r *GetInboundEmailsResponse) FromModels(models []model.InboundEmail, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.InboundEmails = make([]InboundEmailResponse, len(models))
	for i, mod := range models {
		r.InboundEmails[i].FromModel(mod)
	}
}

// Process outcome statuses. These mirror the persisted parse statuses plus
// the dry-run marker.
const (
	ProcessStatusParsed  = "parsed"
	ProcessStatusPartial = "partial"
	ProcessStatusFailed  = "failed"
	ProcessStatusDryRun  = "dry_run"
)

// ProcessResult is the reconciliation outcome contract consumed by the API,
// the batch CLI, and the outcome topic.
type ProcessResult struct {
	InboundEmailID  string   `json:"inbound_email_id"`
	Status          string   `json:"status"`
	Kind            string   `json:"kind,omitempty"`
	ExternalID      string   `json:"external_id,omitempty"`
	ReservationIDs  []string `json:"reservation_ids,omitempty"`
	PrimaryGuestIDs []string `json:"primary_guest_ids,omitempty"`
	Missing         []string `json:"missing,omitempty"`
	Code            string   `json:"code,omitempty"`
}

// BatchResult summarizes one sequential sweep.
type BatchResult struct {
	Total    int             `json:"total"`
	ByStatus map[string]int  `json:"by_status"`
	ByKind   map[string]int  `json:"by_kind"`
	Results  []ProcessResult `json:"results"`
}
