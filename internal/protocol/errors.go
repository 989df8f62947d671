package protocol

// 纯文本错误响应体
const (
	TextInvalidJSON      = "Invalid JSON"
	TextMissingState     = "Missing state"
	TextMissingTableID   = "Missing tableId"
	TextMissingSeat      = "Missing seatIndex"
	TextInvalidSeat      = "Invalid seatIndex"
	TextMissingOrBadSeat = "Missing or invalid seatIndex"
	TextInvalidAction    = "Missing or invalid action"
	TextNotFound         = "Not found"
	TextMethodNotAllowed = "Method not allowed"
	TextTooManyRequests  = "Too many requests"
	TextInternal         = "Internal error"
)
