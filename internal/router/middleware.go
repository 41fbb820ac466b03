package router

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"tasktracker/internal/auth"
	apperrors "tasktracker/internal/errors"
	"tasktracker/internal/handler"
	"tasktracker/internal/metrics"
)

// claimsContextKey holds the verified *auth.TokenClaims.
const claimsContextKey = "claims"

func jwtConfig(tokens *auth.TokenService) echojwt.Config {
	return echojwt.Config{
		ContextKey:  claimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := tokens.Verify(token)
			if err != nil {
				return nil, err
			}
			metrics.IncrementTokenVerification("ok")
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			switch {
			case errors.Is(err, apperrors.ErrTokenExpired):
				metrics.IncrementTokenVerification("expired")
			case errors.Is(err, apperrors.ErrInvalidToken):
				metrics.IncrementTokenVerification("invalid")
			default:
				metrics.IncrementTokenVerification("missing")
				err = fmt.Errorf("%w: missing bearer token", apperrors.ErrAuthentication)
			}
			httpErr := apperrors.MapErrorToHTTP(err)
			return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		},
	}
}

// resolvePrincipal turns the verified token subject into a live user.
func resolvePrincipal(resolver *auth.PrincipalResolver, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(claimsContextKey).(*auth.TokenClaims)
			if !ok {
				httpErr := apperrors.MapErrorToHTTP(apperrors.ErrAuthentication)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}

			user, err := resolver.Resolve(c.Request().Context(), claims.Subject)
			if err != nil {
				if !errors.Is(err, apperrors.ErrAuthentication) {
					logger.Error("Failed to resolve principal", zap.Error(err))
				}
				httpErr := apperrors.MapErrorToHTTP(err)
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
			}

			c.Set(handler.PrincipalContextKey, user)
			return next(c)
		}
	}
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			if v.Status >= http.StatusInternalServerError {
				logger.Error("Request failed", fields...)
				return nil
			}
			logger.Info("Request", fields...)
			return nil
		},
	})
}

// requestMetrics records latency by route template, so ids never become labels.
func requestMetrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}
			metrics.RecordHTTPRequestDuration(c.Request().Method, c.Path(), strconv.Itoa(status), time.Since(start))
			return err
		}
	}
}
