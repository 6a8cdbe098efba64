package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/notes-backend/utils"
)

const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextName   = "name"
)

// bearerToken lấy token từ Authorization, X-Auth-Token (iOS) hoặc query ?token= (WebSocket)
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")

	// Nếu không có, thử X-Auth-Token (cho iOS)
	if authHeader == "" {
		authHeader = c.GetHeader("X-Auth-Token")
	}

	if authHeader == "" {
		if token := c.Query("token"); token != "" {
			return token, true
		}
		return "", false
	}

	// Tách token khỏi chuỗi "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func AuthMiddleware(verifier utils.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Thiếu hoặc sai Authorization header"})
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token không hợp lệ hoặc hết hạn"})
			return
		}

		// Lưu thông tin vào context để controller dùng
		c.Set(ContextUserID, identity.Subject)
		c.Set(ContextEmail, identity.Email)
		c.Set(ContextName, identity.Name)
		c.Next()
	}
}

// CurrentIdentity đọc lại session đã được AuthMiddleware gắn vào context
func CurrentIdentity(c *gin.Context) (utils.Identity, bool) {
	sub := c.GetString(ContextUserID)
	if sub == "" {
		return utils.Identity{}, false
	}
	return utils.Identity{
		Subject: sub,
		Email:   c.GetString(ContextEmail),
		Name:    c.GetString(ContextName),
	}, true
}
