package model

import (
	"innsync/shared/model"

	"github.com/lib/pq"
)

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID         = "id"
	FieldCode       = "code"
	FieldRoomTypeID = "room_type_id"
	FieldActive     = "active"
)

// Room is a physical unit (K1, K2, T1) that reservations are assigned to.
type Room struct {
	ID         string `db:"id"`
	Code       string `db:"code"`
	RoomTypeID string `db:"room_type_id"`
	Active     bool   `db:"active"`
	model.Metadata
}

const (
	TypeTableName  = "room_types"
	TypeEntityName = "room_type"

	TypeFieldID           = "id"
	TypeFieldCode         = "code"
	TypeFieldName         = "name"
	TypeFieldMatchAliases = "match_aliases"
	TypeFieldActive       = "active"
)

// RoomType is a bookable category. MatchAliases holds the lowercase phrases
// that identify the category inside parsed room descriptions.
type RoomType struct {
	ID           string         `db:"id"`
	Code         string         `db:"code"`
	Name         string         `db:"name"`
	MatchAliases pq.StringArray `db:"match_aliases"`
	Active       bool           `db:"active"`
	model.Metadata
}
