package filter_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/akgarg/urlshortener-gateway/src/discovery"
	"github.com/akgarg/urlshortener-gateway/src/filter"
	"github.com/akgarg/urlshortener-gateway/src/identity"
	mock_auth "github.com/akgarg/urlshortener-gateway/test/mocks/auth"
	mock_discovery "github.com/akgarg/urlshortener-gateway/test/mocks/discovery"
)

const authService = "urlshortener-auth-service"

var authInstances = []discovery.Instance{
	{Scheme: "http", Host: "auth-1", Port: 8081},
	{Scheme: "http", Host: "auth-2", Port: 8081},
}

func TestBearerToken(t *testing.T) {
	for _, tc := range []struct {
		values []string
		token  string
		ok     bool
	}{
		{[]string{"Bearer abc.def"}, "abc.def", true},
		{[]string{"Basic xyz"}, "", false},
		{[]string{"bearer abc"}, "", false},
		{[]string{"Bearer "}, "", false},
		{[]string{"Bearer a b"}, "", false},
		{[]string{"Bearer abc", "Bearer abc"}, "", false},
		{nil, "", false},
	} {
		header := http.Header{}
		for _, v := range tc.values {
			header.Add(filter.AuthorizationHeader, v)
		}
		token, ok := filter.BearerToken(header)
		assert.Equal(t, tc.ok, ok, "%v", tc.values)
		assert.Equal(t, tc.token, token, "%v", tc.values)
	}
}

func TestTokenAuthenticationRejectsWithoutCalling(t *testing.T) {
	for name, header := range map[string]http.Header{
		"wrong scheme":    {filter.AuthorizationHeader: {"Basic xyz"}, identity.UserIdHeader: {"user-1"}},
		"missing user id": {filter.AuthorizationHeader: {"Bearer tok"}},
		"missing token":   {identity.UserIdHeader: {"user-1"}},
	} {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			controller := gomock.NewController(t)
			defer controller.Finish()
			// No expectations: any call fails the test.
			resolver := mock_discovery.NewMockResolver(controller)
			validator := mock_auth.NewMockTokenValidator(controller)
			next := &recordingHandler{}

			req := httptest.NewRequest("GET", "/api/v1/statistics/summary", nil)
			req.Header = header
			recorder := httptest.NewRecorder()
			filter.TokenAuthentication(resolver, authService, validator, newStatManager().NewTokenStats())(next).ServeHTTP(recorder, req)

			assert.Equal(http.StatusUnauthorized, recorder.Code)
			assert.False(next.called)
			assert.Equal(filter.ErrorResponse{
				Message:     "Unauthorized",
				Description: "Please log in to access requested resource",
				Code:        401,
			}, decodeErrorResponse(t, recorder))
		})
	}
}

func TestTokenAuthenticationValidToken(t *testing.T) {
	controller := gomock.NewController(t)
	defer controller.Finish()
	resolver := mock_discovery.NewMockResolver(controller)
	validator := mock_auth.NewMockTokenValidator(controller)
	next := &recordingHandler{}
	tokenStats := newStatManager().NewTokenStats()

	resolver.EXPECT().Instances(gomock.Any(), authService).Return(authInstances, nil)
	validator.EXPECT().Validate(gomock.Any(), "user-1", "tok", authInstances).Return(true)

	req := httptest.NewRequest("GET", "/api/v1/statistics/summary", nil)
	req.Header.Set(filter.AuthorizationHeader, "Bearer tok")
	req.Header.Set(identity.UserIdHeader, "user-1")
	recorder := httptest.NewRecorder()
	filter.TokenAuthentication(resolver, authService, validator, tokenStats)(next).ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, next.called)
	assert.Equal(t, "Bearer tok", next.request.Header.Get(filter.AuthorizationHeader))
	assert.Equal(t, uint64(1), tokenStats.Valid.Value())
}

func TestTokenAuthenticationResolvesEndpointsPerRequest(t *testing.T) {
	controller := gomock.NewController(t)
	defer controller.Finish()
	resolver := mock_discovery.NewMockResolver(controller)
	validator := mock_auth.NewMockTokenValidator(controller)
	stage := filter.TokenAuthentication(resolver, authService, validator, newStatManager().NewTokenStats())

	gomock.InOrder(
		resolver.EXPECT().Instances(gomock.Any(), authService).Return(authInstances[:1], nil),
		validator.EXPECT().Validate(gomock.Any(), "user-1", "tok", authInstances[:1]).Return(true),
		resolver.EXPECT().Instances(gomock.Any(), authService).Return(authInstances[1:], nil),
		validator.EXPECT().Validate(gomock.Any(), "user-1", "tok", authInstances[1:]).Return(false),
	)

	codes := []int{}
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/api/v1/profiles/me", nil)
		req.Header.Set(filter.AuthorizationHeader, "Bearer tok")
		req.Header.Set(identity.UserIdHeader, "user-1")
		recorder := httptest.NewRecorder()
		stage(&recordingHandler{}).ServeHTTP(recorder, req)
		codes = append(codes, recorder.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusUnauthorized}, codes)
}

func TestTokenAuthenticationDiscoveryFailure(t *testing.T) {
	controller := gomock.NewController(t)
	defer controller.Finish()
	resolver := mock_discovery.NewMockResolver(controller)
	validator := mock_auth.NewMockTokenValidator(controller)
	tokenStats := newStatManager().NewTokenStats()

	resolver.EXPECT().Instances(gomock.Any(), authService).Return(nil, errors.New("registry down"))
	validator.EXPECT().Validate(gomock.Any(), "user-1", "tok", gomock.Nil()).Return(false)

	req := httptest.NewRequest("GET", "/api/v1/profiles/me", nil)
	req.Header.Set(filter.AuthorizationHeader, "Bearer tok")
	req.Header.Set(identity.UserIdHeader, "user-1")
	recorder := httptest.NewRecorder()
	filter.TokenAuthentication(resolver, authService, validator, tokenStats)(&recordingHandler{}).ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, uint64(1), tokenStats.Error.Value())
	assert.Equal(t, uint64(1), tokenStats.Invalid.Value())
}
