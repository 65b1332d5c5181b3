package httptransport

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/nikolayk812/pharmacy-storefront/internal/backend"
	"go.uber.org/zap"
)

type sessionKey struct{}

func sessionFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

func (h *HTTPTransport) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			h.log.Info("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)))
		}()

		next.ServeHTTP(ww, r)
	})
}

// credential forwards the caller's bearer credential to the remote API.
func (h *HTTPTransport) credential(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if ok && strings.EqualFold(scheme, "Bearer") && strings.TrimSpace(token) != "" {
			r = r.WithContext(backend.WithCredential(r.Context(), strings.TrimSpace(token)))
		}

		next.ServeHTTP(w, r)
	})
}

// session binds the request to a cart session, starting one when the cookie
// is missing or its session has expired.
func (h *HTTPTransport) session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if cookie, err := r.Cookie(h.cfg.CookieName); err == nil && h.deps.Sessions.Exists(cookie.Value) {
			id = cookie.Value
		}

		if id == "" {
			id = h.deps.Sessions.Start()

			cookie := &http.Cookie{
				Name:     h.cfg.CookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   h.cfg.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			}
			if h.cfg.SessionTTL > 0 {
				cookie.MaxAge = int(h.cfg.SessionTTL.Seconds())
			}
			http.SetCookie(w, cookie)
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, id)))
	})
}

func (h *HTTPTransport) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		isAdmin, err := h.deps.Admin.IsAdmin(r.Context())
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if !isAdmin {
			h.writeJSON(w, http.StatusForbidden, errorView{Error: "admin access required"})
			return
		}

		next.ServeHTTP(w, r)
	})
}
