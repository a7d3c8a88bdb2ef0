package ctrlweb

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gorilla/sessions"

	"go.fyyur.app/fyyur/server/ctrlbase"
)

func (c *Controller) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := c.sessDB.Get(r, sessionName)
		if err != nil {
			// a stale or tampered cookie. carry on with a fresh session
			slog.Warn("decoding session", "err", err, "request_id", ctrlbase.RequestID(r))
		}
		if session == nil {
			session = sessions.NewSession(c.sessDB, sessionName)
		}
		withSession := context.WithValue(r.Context(), CtxSession, session)
		next.ServeHTTP(w, r.WithContext(withSession))
	})
}

func (c *Controller) WithRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler { //nolint:errorlint,goerr113
				panic(rec)
			}
			slog.Error("panic serving request",
				"method", r.Method,
				"path", r.URL.Path,
				"panic", rec,
				"stack", string(debug.Stack()),
				"request_id", ctrlbase.RequestID(r),
			)
			c.render(w, r, http.StatusInternalServerError, "server_error.tmpl", &templateData{})
		}()
		next.ServeHTTP(w, r)
	})
}
