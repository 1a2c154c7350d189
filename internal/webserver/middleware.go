package webserver

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const (
	sessionKeyID = "sid"
	// ContextSessionID is the echo context key holding the dashboard session id.
	ContextSessionID = "dashboard_session_id"
)

// ZapRequestLogger logs every request through the global zap logger.
func ZapRequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogError:     true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				zap.L().Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			zap.L().Debug("request", fields...)
			return nil
		},
	})
}

// DashboardSession makes sure every API request carries a dashboard session
// id, issuing a new one in the session cookie when missing. The cookie is
// re-issued on each request, so it expires only after the idle timeout.
func DashboardSession(name string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := session.Get(name, c)
			if sess == nil {
				return err
			}
			if err != nil {
				// undecodable cookie, sess is a fresh session
				zap.L().Debug("reset dashboard session", zap.Error(err))
			}
			id, _ := sess.Values[sessionKeyID].(string)
			if id == "" {
				id = uuid.NewString()
				sess.Values[sessionKeyID] = id
			}
			// saved on every request so the cookie expiry slides with activity
			if err := sess.Save(c.Request(), c.Response()); err != nil {
				return err
			}
			c.Set(ContextSessionID, id)
			return next(c)
		}
	}
}

// SessionID returns the dashboard session id set by DashboardSession.
func SessionID(c echo.Context) string {
	id, _ := c.Get(ContextSessionID).(string)
	return id
}
