package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/budget"
	"github.com/xy-planning-network/budget/http/middleware"
)

func TestGetIPAddress(t *testing.T) {
	header := func(key, val string) http.Header {
		h := make(http.Header)
		h.Set(key, val)
		return h
	}

	tcs := []struct {
		name     string
		hm       http.Header
		expected string
	}{
		{"No-Match", make(http.Header), "0.0.0.0"},
		{"Only-Private-IP", header("X-Forwarded-For", "192.168.0.0"), "0.0.0.0"},
		{"Only-Shared-IP", header("X-Forwarded-For", "100.64.1.1"), "0.0.0.0"},
		{"Only-Public-IP", header("X-Forwarded-For", "1.1.1.1"), "1.1.1.1"},
		{"Get-Before-Proxy", header("X-Real-Ip", "10.0.0.1,1.1.1.1"), "1.1.1.1"},
		{"Get-First-Public", header("X-Real-Ip", "10.255.255.255,8.8.8.8,1.1.1.1,172.16.0.0"), "1.1.1.1"},
		{"Public-IPv6", header("X-Forwarded-For", "2606:4700:4700::1111"), "2606:4700:4700::1111"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, middleware.GetIPAddress(tc.hm))
		})
	}
}

func TestInjectIPAddress(t *testing.T) {
	tcs := []struct {
		name     string
		xff      string
		expected string
	}{
		{"From-Header", "8.8.8.8", "8.8.8.8"},
		{"From-Remote-Addr", "", "192.0.2.1"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			var actual string
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
			if tc.xff != "" {
				r.Header.Set("X-Forwarded-For", tc.xff)
			}

			// Act
			middleware.InjectIPAddress()(http.HandlerFunc(func(wx http.ResponseWriter, rx *http.Request) {
				actual, _ = rx.Context().Value(budget.IpAddrKey).(string)
			})).ServeHTTP(w, r)

			// Assert
			require.Equal(t, tc.expected, actual)
		})
	}
}
