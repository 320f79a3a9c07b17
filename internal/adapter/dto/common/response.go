package common

// SuccessResponse is the envelope of every successful API response
type SuccessResponse struct {
	Code    int         `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope of every rejected API request
type ErrorResponse struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Info    string      `json:"info,omitempty"`
}

// StatusResponse is the minimal acknowledgement returned to webhook senders
type StatusResponse struct {
	Status string `json:"status"`
}
