package errors

// ErrorCode is the machine readable code returned in error bodies
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 200

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1004
	ErrorCode_PERMISSION_DENIED ErrorCode = 1005
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1006
	ErrorCode_PAYLOAD_TOO_LARGE ErrorCode = 1007

	// Auth
	ErrorCode_AUTH_INVALID_TOKEN ErrorCode = 2001
	ErrorCode_AUTH_TOKEN_EXPIRED ErrorCode = 2002

	// Webhook
	ErrorCode_WEBHOOK_MISSING_HEADERS   ErrorCode = 3001
	ErrorCode_WEBHOOK_INVALID_SIGNATURE ErrorCode = 3002
	ErrorCode_WEBHOOK_MISSING_MEETING   ErrorCode = 3003

	// Meeting
	ErrorCode_MEETING_NOT_FOUND     ErrorCode = 4001
	ErrorCode_MEETING_INVALID_STATE ErrorCode = 4002
	ErrorCode_AGENT_NOT_FOUND       ErrorCode = 4003

	// Queue
	ErrorCode_INTEGRATION_QUEUE_FAILED ErrorCode = 5002
)

var codeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                   "OK",
	ErrorCode_INTERNAL:                  "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:          "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                 "NOT_FOUND",
	ErrorCode_UNAUTHENTICATED:           "UNAUTHENTICATED",
	ErrorCode_PERMISSION_DENIED:         "PERMISSION_DENIED",
	ErrorCode_PAYLOAD_TOO_LARGE:         "PAYLOAD_TOO_LARGE",
	ErrorCode_INVALID_PAYLOAD:           "INVALID_PAYLOAD",
	ErrorCode_AUTH_INVALID_TOKEN:        "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:        "AUTH_TOKEN_EXPIRED",
	ErrorCode_WEBHOOK_MISSING_HEADERS:   "WEBHOOK_MISSING_HEADERS",
	ErrorCode_WEBHOOK_INVALID_SIGNATURE: "WEBHOOK_INVALID_SIGNATURE",
	ErrorCode_WEBHOOK_MISSING_MEETING:   "WEBHOOK_MISSING_MEETING",
	ErrorCode_MEETING_NOT_FOUND:         "MEETING_NOT_FOUND",
	ErrorCode_MEETING_INVALID_STATE:     "MEETING_INVALID_STATE",
	ErrorCode_AGENT_NOT_FOUND:           "AGENT_NOT_FOUND",
	ErrorCode_INTEGRATION_QUEUE_FAILED:  "INTEGRATION_QUEUE_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
