package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// RoleAdmin marks back-office users with full access. Everyone else is a
// customer: read-only and scoped to their own records.
const RoleAdmin = "admin"

// CustomClaims contains the custom claims from Auth0 JWT
type CustomClaims struct {
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Roles []string `json:"https://aufwind.app/roles"`
}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"
	// AuthIDKey is the context key for the auth subject
	AuthIDKey contextKey = "auth_id"
	// CustomerIDKey is the context key for the caller's customer ID
	CustomerIDKey contextKey = "customer_id"
	// AdminKey is the context key for the admin flag
	AdminKey contextKey = "is_admin"
)

// CustomerProvider provides customer lookup by auth subject
type CustomerProvider interface {
	GetCustomerByAuthID(authID string) (customerID int32, err error)
}

// AuthMiddleware provides JWT validation middleware
type AuthMiddleware struct {
	validator        *validator.Validator
	customerProvider CustomerProvider
}

// NewAuthMiddleware creates a new AuthMiddleware with Auth0 configuration
func NewAuthMiddleware(domain, audience string, customerProvider CustomerProvider) (*AuthMiddleware, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return &AuthMiddleware{
		validator:        jwtValidator,
		customerProvider: customerProvider,
	}, nil
}

// Authenticate returns an Echo middleware that validates JWT tokens and
// resolves the caller's role and customer scope.
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			// Check Bearer prefix
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
			}

			token := parts[1]

			claims, err := m.validator.ValidateToken(c.Request().Context(), token)
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			validatedClaims, ok := claims.(*validator.ValidatedClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid claims")
			}

			authID := validatedClaims.RegisteredClaims.Subject
			isAdmin := false
			if custom, ok := validatedClaims.CustomClaims.(*CustomClaims); ok {
				for _, role := range custom.Roles {
					if role == RoleAdmin {
						isAdmin = true
					}
				}
			}

			ctx := context.WithValue(c.Request().Context(), ClaimsKey, validatedClaims)
			ctx = context.WithValue(ctx, AuthIDKey, authID)
			ctx = context.WithValue(ctx, AdminKey, isAdmin)

			// Resolve the caller's customer record; admins may have none
			if m.customerProvider != nil {
				customerID, err := m.customerProvider.GetCustomerByAuthID(authID)
				if err != nil {
					if !isAdmin {
						log.Debug().Err(err).Str("auth_id", authID).Msg("Customer lookup failed")
						return echo.NewHTTPError(http.StatusUnauthorized, "customer not found")
					}
				} else {
					ctx = context.WithValue(ctx, CustomerIDKey, customerID)
				}
			}

			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// RequireAdmin returns a middleware that rejects non-admin callers. All
// mutating ledger routes are admin-only; customers are read-only.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsAdmin(c) {
				return echo.NewHTTPError(http.StatusForbidden, "admin role required")
			}
			return next(c)
		}
	}
}

// RequireCustomerScope returns a middleware that lets admins access any
// customer and restricts customers to their own :id.
func RequireCustomerScope() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IsAdmin(c) {
				return next(c)
			}

			id, err := strconv.ParseInt(c.Param("id"), 10, 32)
			if err != nil {
				return echo.NewHTTPError(http.StatusForbidden, "access denied")
			}
			if int32(id) != GetCustomerID(c) {
				return echo.NewHTTPError(http.StatusForbidden, "access denied")
			}
			return next(c)
		}
	}
}

// GetAuthID extracts the auth subject from the context
func GetAuthID(c echo.Context) string {
	if id, ok := c.Request().Context().Value(AuthIDKey).(string); ok {
		return id
	}
	return ""
}

// GetClaims extracts the validated claims from the context
func GetClaims(c echo.Context) *validator.ValidatedClaims {
	if claims, ok := c.Request().Context().Value(ClaimsKey).(*validator.ValidatedClaims); ok {
		return claims
	}
	return nil
}

// GetCustomerID extracts the caller's customer ID from the context
func GetCustomerID(c echo.Context) int32 {
	if id, ok := c.Request().Context().Value(CustomerIDKey).(int32); ok {
		return id
	}
	return 0
}

// IsAdmin reports whether the caller carries the admin role
func IsAdmin(c echo.Context) bool {
	if admin, ok := c.Request().Context().Value(AdminKey).(bool); ok {
		return admin
	}
	return false
}
