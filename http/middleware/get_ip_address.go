package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/xy-planning-network/budget"
)

const unknownIP = "0.0.0.0"

// sharedAddressSpace is the carrier-grade NAT range net.IP.IsPrivate does not cover.
var sharedAddressSpace = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

// InjectIPAddress grabs the IP address in the *http.Request.Header
// and promotes it to *http.Request.Context under budget.IpAddrKey.
func InjectIPAddress() Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := GetIPAddress(r.Header)
			if ip == unknownIP {
				if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
					ip = host
				}
			}

			h.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), budget.IpAddrKey, ip)))
		})
	}
}

// GetIPAddress parses "X-Forwarded-For" and "X-Real-Ip" headers for the IP address
// from the request.
//
// GetIPAddress skips addresses from non-public ranges.
func GetIPAddress(hm http.Header) string {
	for _, h := range []string{"X-Forwarded-For", "X-Real-Ip"} {
		addresses := strings.Split(hm.Get(h), ",")
		// march from right to left until we get a public address
		// that will be the address right before our proxy.
		for i := len(addresses) - 1; i >= 0; i-- {
			ip := strings.TrimSpace(addresses[i])
			realIP := net.ParseIP(ip)
			if !realIP.IsGlobalUnicast() || isPrivate(realIP) {
				continue
			}

			return ip
		}
	}

	return unknownIP
}

func isPrivate(ip net.IP) bool {
	return ip.IsPrivate() || sharedAddressSpace.Contains(ip)
}
