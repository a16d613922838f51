package model

import (
	"database/sql"
	"encoding/json"

	"innsync/shared/model"
)

const (
	TableName  = "inbound_emails"
	EntityName = "inbound_email"

	FieldID            = "id"
	FieldSource        = "source"
	FieldMessageID     = "message_id"
	FieldMailbox       = "mailbox"
	FieldSender        = "sender"
	FieldSubject       = "subject"
	FieldReceivedAt    = "received_at"
	FieldBodyText      = "body_text"
	FieldBodyHTML      = "body_html"
	FieldParsedPayload = "parsed_payload"
	FieldParseStatus   = "parse_status"
	FieldParseNote     = "parse_note"
)

const (
	ParseStatusPending = "pending"
	ParseStatusParsed  = "parsed"
	ParseStatusPartial = "partial"
	ParseStatusFailed  = "failed"
)

// InboundEmail is one ingested message. MessageID is the transport-level
// identifier and is unique, which is what makes ingestion idempotent.
// ParsedPayload holds the assembled booking payload for audit regardless of
// whether reconciliation succeeded.
type InboundEmail struct {
	ID            string          `db:"id"`
	Source        string          `db:"source"`
	MessageID     string          `db:"message_id"`
	Mailbox       string          `db:"mailbox"`
	Sender        string          `db:"sender"`
	Subject       string          `db:"subject"`
	ReceivedAt    sql.NullTime    `db:"received_at"`
	BodyText      string          `db:"body_text"`
	BodyHTML      string          `db:"body_html"`
	ParsedPayload json.RawMessage `db:"parsed_payload"`
	ParseStatus   string          `db:"parse_status"`
	ParseNote     string          `db:"parse_note"`
	model.Metadata
}

const (
	ParseErrorTableName  = "parse_errors"
	ParseErrorEntityName = "parse_error"

	ParseErrorFieldID             = "id"
	ParseErrorFieldInboundEmailID = "inbound_email_id"
	ParseErrorFieldCode           = "code"
	ParseErrorFieldMessage        = "message"
	ParseErrorFieldContext        = "context"
)

// ParseError is one taxonomy-coded failure record for an inbound e-mail.
// Reprocessing clears the previous records first, so the set always
// describes the latest attempt.
type ParseError struct {
	ID             string          `db:"id"`
	InboundEmailID string          `db:"inbound_email_id"`
	Code           string          `db:"code"`
	Message        string          `db:"message"`
	Context        json.RawMessage `db:"context"`
	model.Metadata
}
