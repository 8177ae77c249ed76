package app

import (
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/mrmazuu/fyp-prototype/internal/observability"
	"github.com/mrmazuu/fyp-prototype/internal/platform/httpx"
	"github.com/mrmazuu/fyp-prototype/internal/shared"
)

// MiddlewareConfig aggregates dependencies shared by the middleware stack.
type MiddlewareConfig struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	Metrics        *observability.Metrics
}

// sessionWriter emits the session cookie right before the first header
// write, so handlers never have to think about cookie ordering.
type sessionWriter struct {
	http.ResponseWriter
	manager       *shared.SessionManager
	sess          *shared.Session
	headerWritten bool
}

func (w *sessionWriter) WriteHeader(statusCode int) {
	if !w.headerWritten {
		w.headerWritten = true
		w.manager.WriteCookie(w.ResponseWriter, w.sess)
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *sessionWriter) Write(data []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(data)
}

// MiddlewareStack installs the middleware chain. Every failure a middleware
// produces goes through the same taxonomy mapper the handlers use, so the
// envelope shape holds on every path.
func MiddlewareStack(cfg MiddlewareConfig) []func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
		SSLRedirect:           cfg.Config != nil && cfg.Config.IsProduction(),
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	})

	recoverMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					cfg.Logger.Error("panic recovered",
						slog.Any("error", rec),
						slog.String("path", r.URL.Path))
					httpx.RespondError(w, httpx.Unexpected(fmt.Errorf("%v", rec)))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}

	contentTypeMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength != 0 {
				mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
				if err != nil || mt != "application/json" {
					httpx.RespondError(w, httpx.UnsupportedMedia())
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}

	sessionMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sess, err := cfg.SessionManager.Load(ctx, r)
			if err != nil {
				cfg.Logger.Error("failed to load session", slog.Any("error", err))
				httpx.RespondError(w, httpx.Backend("", err))
				return
			}
			ctx = shared.ContextWithSession(ctx, sess)
			wrapped := &sessionWriter{
				ResponseWriter: w,
				manager:        cfg.SessionManager,
				sess:           sess,
			}
			next.ServeHTTP(wrapped, r.WithContext(ctx))
		})
	}

	limit, window := 100, time.Minute
	if cfg.Config != nil {
		if cfg.Config.ThrottleLimit > 0 {
			limit = cfg.Config.ThrottleLimit
		}
		if cfg.Config.ThrottleWindow > 0 {
			window = cfg.Config.ThrottleWindow
		}
	}
	throttleMiddleware := httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.RespondError(w, httpx.Throttled(window))
		}),
	)

	timeout := 30 * time.Second
	if cfg.Config != nil && cfg.Config.AppRequestTimeout > 0 {
		timeout = cfg.Config.AppRequestTimeout
	}

	middlewares := []func(http.Handler) http.Handler{
		chimw.RealIP,
		chimw.RequestID,
		recoverMiddleware,
		secureMiddleware.Handler,
		throttleMiddleware,
		contentTypeMiddleware,
		sessionMiddleware,
		chimw.Timeout(timeout),
	}
	if cfg.Metrics != nil {
		middlewares = append(middlewares, cfg.Metrics.Middleware)
	}
	return middlewares
}
