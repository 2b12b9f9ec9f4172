package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJSONErrorFromAppError(t *testing.T) {
	rr := httptest.NewRecorder()
	err := fmt.Errorf("resolve: %w", InvalidParameter("variant not found", nil, map[string]string{"variantId": "v9"}))

	status, resp := ErrorResponse(err, "boom")
	JSONError(rr, status, resp.Code, resp.Message, resp.Details)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var body struct {
		Error struct {
			Code    string            `json:"code"`
			Message string            `json:"message"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, CodeInvalidParameter, body.Error.Code)
	require.Equal(t, "variant not found", body.Error.Message)
	require.Equal(t, "v9", body.Error.Details["variantId"])
}

func TestErrorResponseMapping(t *testing.T) {
	status, body := ErrorResponse(Unavailable(CodeCatalogUnavailable, "catalog is unavailable", errors.New("dial")), "x")
	require.Equal(t, http.StatusServiceUnavailable, status)
	require.Equal(t, CodeCatalogUnavailable, body.Code)

	status, body = ErrorResponse(NotFound("cart not found", nil, nil), "x")
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, CodeNotFound, body.Code)

	status, body = ErrorResponse(&AppError{Message: "bare"}, "x")
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, CodeInvalidParameter, body.Code)

	status, body = ErrorResponse(fmt.Errorf("lookup: %w", context.DeadlineExceeded), "x")
	require.Equal(t, http.StatusGatewayTimeout, status)
	require.Equal(t, CodeTimeout, body.Code)

	status, body = ErrorResponse(errors.New("pq: relation missing"), "unable to build checkout")
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, CodeInternal, body.Code)
	require.Equal(t, "unable to build checkout", body.Message)
}

func TestAppErrorHelpers(t *testing.T) {
	cause := errors.New("missing")
	err := fmt.Errorf("wrap: %w", NotFound("product not found", cause, nil))

	require.True(t, IsAppError(err))
	require.True(t, HasCode(err, CodeNotFound))
	require.False(t, HasCode(err, CodeInternal))
	require.ErrorIs(t, err, cause)
	require.False(t, IsAppError(cause))

	var nilErr *AppError
	require.Equal(t, "", nilErr.Error())
	require.Nil(t, nilErr.Unwrap())
	require.Equal(t, "msg", NewAppError(CodeInternal, "msg", 500, nil).Error())
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded headers ignored", headers: map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1", "X-Real-IP": "198.51.100.4"}, remote: "10.0.0.2:1234", want: "10.0.0.2"},
		{name: "remote addr", remote: "192.0.2.10:5555", want: "192.0.2.10"},
		{name: "ipv6 remote", remote: "[2001:db8::1]:443", want: "2001:db8::1"},
		{name: "unparseable remote kept", remote: "pipe", want: "pipe"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tc.want, ClientIP(req))
		})
	}
	require.Equal(t, "", ClientIP(nil))
}
