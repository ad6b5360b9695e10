package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WilliamSoderberg/volley-bracket/brackets"
	"github.com/WilliamSoderberg/volley-bracket/services"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "missing credential", err: services.ErrAuthenticationFailed, want: http.StatusUnauthorized},
		{name: "bad login", err: services.ErrAuthInvalidCredentials, want: http.StatusUnauthorized},
		{name: "wrong code", err: fmt.Errorf("wrap: %w", services.ErrForbiddenOperation), want: http.StatusForbidden},
		{name: "settings", err: services.ErrInvalidCourts, want: http.StatusUnprocessableEntity},
		{name: "engine validation", err: brackets.ErrSlotsNotConcrete, want: http.StatusUnprocessableEntity},
		{name: "tournament", err: services.ErrTournamentNotFound, want: http.StatusNotFound},
		{name: "match", err: brackets.ErrMatchNotFound, want: http.StatusNotFound},
		{name: "version", err: services.ErrVersionConflict, want: http.StatusConflict},
		{name: "clear", err: brackets.ErrClearConflict, want: http.StatusConflict},
		{name: "unknown", err: errors.New("disk on fire"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mapServiceErrorToHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.want, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.want == http.StatusInternalServerError {
				assert.NotContains(t, body["error"], "disk on fire", "internal details stay in the log")
			} else {
				assert.Equal(t, tt.err.Error(), body["error"])
			}
		})
	}
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "ok", body: `{"name":"cup"}`},
		{name: "empty", body: ``, wantErr: "must not be empty"},
		{name: "syntax", body: `{"name":}`, wantErr: "badly-formed JSON"},
		{name: "truncated", body: `{"name":"cup"`, wantErr: "badly-formed JSON"},
		{name: "wrong type", body: `{"name":5}`, wantErr: `incorrect JSON type for field "name"`},
		{name: "unknown field", body: `{"colour":"red"}`, wantErr: `unknown key "colour"`},
		{name: "two values", body: `{"name":"a"}{"name":"b"}`, wantErr: "single JSON value"},
		{name: "too large", body: `{"name":"` + strings.Repeat("x", maxBodyBytes) + `"}`, wantErr: "must not be larger"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload
			err := readJSON(httptest.NewRecorder(), req, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "cup", dst.Name)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOriginChecker(t *testing.T) {
	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	open := originChecker(nil)
	assert.True(t, open(req("https://evil.test")))
	assert.True(t, originChecker([]string{"*"})(req("https://evil.test")))

	strict := originChecker([]string{"https://cup.test"})
	assert.True(t, strict(req("https://cup.test")))
	assert.True(t, strict(req("")), "non-browser clients send no origin")
	assert.False(t, strict(req("https://evil.test")))
}
