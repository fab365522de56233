package models

// APIResponse is the uniform envelope every endpoint returns, success or
// failure. Code mirrors the HTTP status, or the domain code supplied by the
// stored procedure for product mutations. Data is null unless the operation
// produced a payload.
type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// OK builds a success envelope
func OK(code int, message string, data interface{}) APIResponse {
	return APIResponse{Code: code, Message: message, Data: data}
}

// Fail builds a failure envelope with a null payload
func Fail(code int, message string) APIResponse {
	return APIResponse{Code: code, Message: message, Data: nil}
}
