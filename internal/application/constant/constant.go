package constant

// Ключи атрибутов slog
const (
	Error        = "error"
	UserID       = "user_id"
	ConnID       = "conn_id"
	PartnerID    = "partner_id"
	RoomID       = "room_id"
	RoomCode     = "room_code"
	EventType    = "event_type"
	TargetConnID = "target_conn_id"
)
