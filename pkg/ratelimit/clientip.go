// Copyright Job Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the key a request is limited under: the remote host,
// or the first X-Forwarded-For entry when trustForwarded is set. Only trust
// the header behind a proxy that overwrites it; otherwise any client can
// pick its own key.
func ClientIP(r *http.Request, trustForwarded bool) string {
	if fwd := r.Header.Get("X-Forwarded-For"); trustForwarded && fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
