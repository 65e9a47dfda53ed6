package auth

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"
)

// sessionWriter commits the session and sets its cookie right before the
// first byte of the response goes out, since headers cannot change after that.
type sessionWriter struct {
	gin.ResponseWriter
	sm        *SessionManager
	ctx       context.Context
	committed bool
	err       error
}

func (w *sessionWriter) commit() {
	if w.committed {
		return
	}
	w.committed = true

	switch w.sm.Status(w.ctx) {
	case scs.Modified:
		token, expiry, err := w.sm.Commit(w.ctx)
		if err != nil {
			w.err = err
			return
		}
		w.sm.WriteSessionCookie(w.ctx, w.ResponseWriter, token, expiry)
	case scs.Destroyed:
		w.sm.WriteSessionCookie(w.ctx, w.ResponseWriter, "", time.Time{})
	}
}

func (w *sessionWriter) WriteHeader(code int) {
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionWriter) WriteHeaderNow() {
	w.commit()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *sessionWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *sessionWriter) WriteString(s string) (int, error) {
	w.commit()
	return w.ResponseWriter.WriteString(s)
}

func (w *sessionWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.Hijack()
}

// SessionLoadSave is the gin counterpart of scs LoadAndSave. It loads the
// session named by the request cookie into the request context and saves it
// once the handler chain has produced a response. It must run before any
// other pipeline stage that reads the session.
func (sm *SessionManager) SessionLoadSave() gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		if cookie, err := c.Request.Cookie(sm.Cookie.Name); err == nil {
			token = cookie.Value
		}

		ctx, err := sm.Load(c.Request.Context(), token)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		ctx = context.WithValue(ctx, sessionLoadedKey{}, true)
		c.Request = c.Request.WithContext(ctx)

		w := &sessionWriter{
			ResponseWriter: c.Writer,
			sm:             sm,
			ctx:            ctx,
		}
		c.Writer = w

		c.Next()

		// Handlers that never wrote a body still need the cookie.
		w.commit()
		if w.err != nil {
			_ = c.Error(w.err)
		}
	}
}
