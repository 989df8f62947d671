package apperrors

import (
	"errors"
	"net/http"

	"github.com/palemoky/holdem-table/internal/protocol"
)

// RequestError 请求错误，携带 HTTP 状态码与纯文本响应体
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrInvalidJSON      = &RequestError{Status: http.StatusBadRequest, Message: protocol.TextInvalidJSON}
	ErrMissingState     = &RequestError{Status: http.StatusBadRequest, Message: protocol.TextMissingState}
	ErrMissingTableID   = &RequestError{Status: http.StatusBadRequest, Message: protocol.TextMissingTableID}
	ErrMissingSeatIndex = &RequestError{Status: http.StatusBadRequest, Message: protocol.TextMissingSeat}
	ErrInvalidSeatIndex = &RequestError{Status: http.StatusBadRequest, Message: protocol.TextInvalidSeat}
	ErrBadSeatIndex     = &RequestError{Status: http.StatusBadRequest, Message: protocol.TextMissingOrBadSeat}
	ErrInvalidAction    = &RequestError{Status: http.StatusBadRequest, Message: protocol.TextInvalidAction}
	ErrNotFound         = &RequestError{Status: http.StatusNotFound, Message: protocol.TextNotFound}
	ErrMethodNotAllowed = &RequestError{Status: http.StatusMethodNotAllowed, Message: protocol.TextMethodNotAllowed}
	ErrTooManyRequests  = &RequestError{Status: http.StatusTooManyRequests, Message: protocol.TextTooManyRequests}
	ErrInternal         = &RequestError{Status: http.StatusInternalServerError, Message: protocol.TextInternal}
)

// StatusOf 返回错误对应的状态码与响应体，未知错误一律视为内部错误
func StatusOf(err error) (int, string) {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Status, re.Message
	}
	return ErrInternal.Status, ErrInternal.Message
}
