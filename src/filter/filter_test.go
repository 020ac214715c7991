package filter_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	gostats "github.com/lyft/gostats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akgarg/urlshortener-gateway/src/filter"
	"github.com/akgarg/urlshortener-gateway/src/reqctx"
	"github.com/akgarg/urlshortener-gateway/src/settings"
	"github.com/akgarg/urlshortener-gateway/src/stats"
)

func newStatManager() stats.Manager {
	return stats.NewStatManager(gostats.NewStore(gostats.NewNullSink(), false), settings.Settings{})
}

// recordingHandler remembers the request that reached the end of the chain.
type recordingHandler struct {
	called  bool
	request *http.Request
}

func (h *recordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.request = r
	w.WriteHeader(http.StatusOK)
}

func decodeErrorResponse(t *testing.T, recorder *httptest.ResponseRecorder) filter.ErrorResponse {
	var body filter.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) filter.ErrorEnvelope {
	var body filter.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestRequestIdReusesCallerValue(t *testing.T) {
	assert := assert.New(t)
	next := &recordingHandler{}

	req := httptest.NewRequest("GET", "/api/v1/auth/login", nil)
	req.Header.Set(filter.RequestIdHeader, "abc-123")
	recorder := httptest.NewRecorder()
	filter.RequestId(next).ServeHTTP(recorder, req)

	assert.Equal("abc-123", recorder.Header().Get(filter.RequestIdHeader))
	assert.Equal("abc-123", next.request.Header.Get(filter.RequestIdHeader))
	assert.Equal("abc-123", reqctx.CorrelationID(next.request.Context()))
}

func TestRequestIdGeneratesWhenMissing(t *testing.T) {
	assert := assert.New(t)
	seen := map[string]bool{}

	for _, sent := range []string{"", "   "} {
		next := &recordingHandler{}
		req := httptest.NewRequest("GET", "/", nil)
		if sent != "" {
			req.Header.Set(filter.RequestIdHeader, sent)
		}
		recorder := httptest.NewRecorder()
		filter.RequestId(next).ServeHTTP(recorder, req)

		id := recorder.Header().Get(filter.RequestIdHeader)
		assert.NotEmpty(id)
		assert.Len(id, 36)
		assert.Equal(id, next.request.Header.Get(filter.RequestIdHeader))
		assert.Equal(id, reqctx.CorrelationID(next.request.Context()))
		assert.False(seen[id])
		seen[id] = true
	}
}

func TestRequestContextDoesNotLeakBetweenRequests(t *testing.T) {
	handler := filter.RequestId(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := reqctx.FromContext(r.Context())
		_, checked := rc.AdminOutcome()
		assert.False(t, checked)
		rc.SetAdminOutcome(reqctx.AdminGranted)
		rc.UserID = "user-1"
	}))

	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	}
}

func TestWriteErrorEnvelopeWithoutRequestId(t *testing.T) {
	recorder := httptest.NewRecorder()
	filter.WriteErrorEnvelope(recorder, httptest.NewRequest("GET", "/", nil), http.StatusServiceUnavailable, filter.ServiceUnavailableMessage)

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.JSONEq(t, `{"status_code":503,"request_id":null,"error_message":"Requested service is temporarily unavailable. Please try again later."}`,
		recorder.Body.String())
}
