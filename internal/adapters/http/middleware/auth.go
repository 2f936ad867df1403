package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/platform/config"
)

const (
	// ContextKeyClaims is the gin context key claims are stashed under.
	ContextKeyClaims = "claims"

	// Header names used when AuthConfig leaves them blank.
	defaultSubjectHeader = "X-User-ID"
	defaultRolesHeader   = "X-User-Roles"
	defaultScopesHeader  = "X-User-Scopes"
)

// Claims carries the identity a trusted gateway asserted for the request.
// The gateway validates credentials upstream and forwards the result via
// headers; this service never sees tokens.
type Claims struct {
	// Subject is the authenticated caller.
	Subject string

	// Roles assigned to the caller, from the roles header.
	Roles []string

	// Scopes granted to the caller, from the scopes header.
	Scopes []string
}

// HasRole reports whether the caller holds the given role.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// HasAnyRole reports whether the caller holds at least one of the roles.
func (c *Claims) HasAnyRole(roles ...string) bool {
	return slices.ContainsFunc(roles, c.HasRole)
}

// HasScope reports whether the caller was granted the given scope.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// ExtractClaims reads gateway identity headers off the request.
// Header names default to X-User-ID, X-User-Roles and X-User-Scopes
// and can be overridden in AuthConfig.
func ExtractClaims(c *gin.Context, cfg *config.AuthConfig) *Claims {
	var subjectHeader, rolesHeader, scopesHeader string
	if cfg != nil {
		subjectHeader, rolesHeader, scopesHeader = cfg.SubjectHeader, cfg.RolesHeader, cfg.ScopesHeader
	}

	claims := &Claims{
		Subject: c.GetHeader(headerOrDefault(subjectHeader, defaultSubjectHeader)),
	}

	// Roles are comma-separated, scopes space-separated per OAuth2.
	if rolesStr := c.GetHeader(headerOrDefault(rolesHeader, defaultRolesHeader)); rolesStr != "" {
		claims.Roles = parseCommaSeparated(rolesStr)
	}

	if scopesStr := c.GetHeader(headerOrDefault(scopesHeader, defaultScopesHeader)); scopesStr != "" {
		claims.Scopes = strings.Fields(scopesStr)
	}

	return claims
}

func headerOrDefault(name, fallback string) string {
	if name != "" {
		return name
	}

	return fallback
}

// GetClaims retrieves claims from the gin context, or nil if the auth
// middleware has not run.
func GetClaims(c *gin.Context) *Claims {
	value, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}

	claims, ok := value.(*Claims)
	if !ok {
		return nil
	}

	return claims
}

// RequireAuth returns middleware that rejects requests without an
// asserted subject. Extracted claims are stored for later middleware
// and handlers.
func RequireAuth(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ExtractClaims(c, cfg)
		if claims.Subject == "" {
			abortWithForbidden(c, "authentication required")
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// RequireScope returns middleware that rejects callers lacking the
// given scope. Guards the write endpoints when auth is enabled.
func RequireScope(cfg *config.AuthConfig, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !claimsFromRequest(c, cfg).HasScope(scope) {
			abortWithForbidden(c, "insufficient permissions: scope "+scope+" required")
			return
		}

		c.Next()
	}
}

// RequireRole returns middleware that rejects callers lacking the
// given role.
func RequireRole(cfg *config.AuthConfig, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !claimsFromRequest(c, cfg).HasRole(role) {
			abortWithForbidden(c, "insufficient permissions: role "+role+" required")
			return
		}

		c.Next()
	}
}

// claimsFromRequest reuses claims stored by an earlier middleware in the
// chain, extracting fresh ones otherwise.
func claimsFromRequest(c *gin.Context, cfg *config.AuthConfig) *Claims {
	claims := GetClaims(c)
	if claims == nil {
		claims = ExtractClaims(c, cfg)
		c.Set(ContextKeyClaims, claims)
	}

	return claims
}

// abortWithForbidden aborts with a 403 Forbidden envelope.
func abortWithForbidden(c *gin.Context, message string) {
	errResp := dto.NewErrorResponse(dto.ErrorCodeForbidden, message).
		WithTraceID(dto.GetTraceID(c))

	c.AbortWithStatusJSON(http.StatusForbidden, errResp)
}

// parseCommaSeparated splits a comma-separated header into trimmed values.
func parseCommaSeparated(s string) []string {
	parts := strings.Split(s, ",")

	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
