package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/folio-works/portfolio-backend/internal/logger"
)

const (
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
)

// SetAdmin records the authenticated admin on c and on its request context,
// where services and the event bus pick it up.
func SetAdmin(c *gin.Context, uid, email string) {
	uid = strings.TrimSpace(uid)
	c.Set(CtxFirebaseUID, uid)
	if email = strings.TrimSpace(email); email != "" {
		c.Set(CtxEmail, email)
	}
	c.Request = c.Request.WithContext(logger.ContextWithAdminUID(c.Request.Context(), uid))
}

// UserFirebaseUID returns the admin set by SetAdmin, or "" on public routes.
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}
