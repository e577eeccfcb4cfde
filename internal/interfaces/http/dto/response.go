package dto

// Response is the envelope of every API reply
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo describes why a request failed
type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Success wraps data in a successful envelope
func Success(data any) Response {
	return Response{Success: true, Data: data}
}

// Failure builds a failed envelope. requestID may be empty.
func Failure(code, message, requestID string) Response {
	return Response{Error: &ErrorInfo{Code: code, Message: message, RequestID: requestID}}
}

// Unavailable reports data without marking the request successful, as the
// health check does when the database is down
func Unavailable(data any) Response {
	return Response{Data: data}
}
