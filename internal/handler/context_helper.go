package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-ledger-api/internal/middleware"
	"github.com/noah-isme/school-ledger-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// viewerAudience resolves the audience scope for announcement reads: admins
// and staff default to the global scope, students to their class. An explicit
// query override is honoured for admins and staff only.
func viewerAudience(c *gin.Context, claims *models.JWTClaims) string {
	if claims.Role != models.RoleStudent {
		if audience := c.Query("audience"); audience != "" {
			return audience
		}
		return models.AudienceGlobal
	}
	if claims.ClassName != "" {
		return claims.ClassName
	}
	return models.AudienceGlobal
}
