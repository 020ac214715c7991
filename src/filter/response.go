package filter

import (
	"encoding/json"
	"net/http"

	"github.com/akgarg/urlshortener-gateway/src/reqctx"
)

const RequestIdHeader = "X-Request-ID"

// ErrorResponse is the body of a rejection issued by an admission stage.
type ErrorResponse struct {
	Message     string `json:"message"`
	Description string `json:"description"`
	Code        int    `json:"code"`
}

// ErrorEnvelope is the body of authorization and availability failures.
type ErrorEnvelope struct {
	StatusCode   int     `json:"status_code"`
	RequestID    *string `json:"request_id"`
	ErrorMessage string  `json:"error_message"`
}

var (
	unauthenticatedResponse = ErrorResponse{
		Message:     "Unauthorized",
		Description: "Please log in to access requested resource",
		Code:        http.StatusUnauthorized,
	}
	clientIpMissingResponse = ErrorResponse{
		Message:     "Request validation Failed",
		Description: "Failed to extract client IP address.",
		Code:        http.StatusBadRequest,
	}
	userIdMissingResponse = ErrorResponse{
		Message:     "Auth Failure",
		Description: "Header X-USER-ID is missing or has invalid value.",
		Code:        http.StatusUnauthorized,
	}
	rateLimitExceededResponse = ErrorResponse{
		Message:     "Rate Limit Exceeded",
		Description: "You have exceeded the number of allowed requests. Please try again later.",
		Code:        http.StatusTooManyRequests,
	}
)

const (
	ForbiddenMessage          = "You're not authorized to access the requested resource"
	AuthenticationRequired    = "Authentication is required to access requested resource"
	ServiceUnavailableMessage = "Requested service is temporarily unavailable. Please try again later."
	NotFoundMessage           = "Requested resource not found"
)

func writeJson(w http.ResponseWriter, status int, body interface{}) {
	payload, err := json.Marshal(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}

func writeErrorResponse(w http.ResponseWriter, response ErrorResponse) {
	writeJson(w, response.Code, response)
}

// WriteErrorEnvelope rejects r with the standard envelope. request_id is null only
// when the request never received a correlation id.
func WriteErrorEnvelope(w http.ResponseWriter, r *http.Request, status int, message string) {
	envelope := ErrorEnvelope{StatusCode: status, ErrorMessage: message}
	id := reqctx.CorrelationID(r.Context())
	if id == "" {
		id = r.Header.Get(RequestIdHeader)
	}
	if id != "" {
		envelope.RequestID = &id
	}
	writeJson(w, status, envelope)
}
