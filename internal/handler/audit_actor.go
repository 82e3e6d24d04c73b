package handler

import (
	"net"
	"net/http"
	"strings"

	"go-taskboard/internal/middleware"
	"go-taskboard/internal/model"
)

// actorFromRequest identifies who attempted an operation. The email comes
// from the request body because auth endpoints run before any token exists.
func actorFromRequest(r *http.Request, email string) model.AuditActor {
	actor := model.AuditActor{
		Email: strings.ToLower(strings.TrimSpace(email)),
		IP:    clientIP(r),
	}

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return actor
	}

	actor.UserID = claims.UserID
	actor.Email = claims.Email

	return actor
}

func clientIP(r *http.Request) string {
	xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	xri := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		return host
	}

	return strings.TrimSpace(r.RemoteAddr)
}
