package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sunoy2004/yanc-cms-sub001/internal/service"
)

const (
	contextUserIDKey   = "user_id"
	contextUsernameKey = "username"
	contextClaimsKey   = "auth_claims"
)

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordPayload struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Login 校验账号密码并签发 Bearer Token
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload, "invalid request body") {
		return
	}

	result, err := a.auth.Login(payload.Username, payload.Password)
	if err != nil {
		respondServiceError(c, err, "login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
		"user":       userPayload(result.User),
	})
}

// CurrentUser returns the signed in editor.
func (a *API) CurrentUser(c *gin.Context) {
	user, err := a.auth.GetUser(c.GetUint(contextUserIDKey))
	if err != nil {
		respondServiceError(c, err, "failed to load user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userPayload(user)})
}

// RefreshToken re-issues a token for a still valid one.
func (a *API) RefreshToken(c *gin.Context) {
	claims, _ := c.Get(contextClaimsKey)
	parsed, _ := claims.(*service.Claims)

	issued, err := a.auth.Refresh(parsed)
	if err != nil {
		respondServiceError(c, err, "failed to refresh token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": issued.Token, "expires_at": issued.ExpiresAt})
}

// ChangePassword 修改当前登录用户的密码
func (a *API) ChangePassword(c *gin.Context) {
	var payload changePasswordPayload
	if !bindJSON(c, &payload, "invalid request body") {
		return
	}

	if err := a.auth.ChangePassword(c.GetUint(contextUserIDKey), payload.CurrentPassword, payload.NewPassword); err != nil {
		respondServiceError(c, err, "failed to change password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

// AuthRequired 校验 Authorization: Bearer <token>，并把用户信息写入上下文
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			respondError(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}

		claims, err := a.auth.ParseToken(token)
		if err != nil {
			respondError(c, http.StatusUnauthorized, err.Error())
			c.Abort()
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			respondError(c, http.StatusUnauthorized, err.Error())
			c.Abort()
			return
		}

		// 用户被删除后其令牌立即失效
		if _, err := a.auth.GetUser(userID); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				respondError(c, http.StatusUnauthorized, service.ErrInvalidToken.Error())
			} else {
				respondServiceError(c, err, "failed to verify token")
			}
			c.Abort()
			return
		}

		c.Set(contextUserIDKey, userID)
		c.Set(contextUsernameKey, claims.Username)
		c.Set(contextClaimsKey, claims)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
