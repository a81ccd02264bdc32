package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/ceyewan/genesis/clog"
	"github.com/ceyewan/genesis/xerrors"
	"github.com/gin-gonic/gin"
)

var (
	// ErrMissingToken 请求未携带凭证
	ErrMissingToken = xerrors.New("missing token")
	// ErrInvalidToken 凭证不匹配
	ErrInvalidToken = xerrors.New("invalid token")
)

// AuthConfig 认证中间件配置。鉴权是单一静态共享密钥：
// 部署内的全部客户端持同一个 Bearer token。
type AuthConfig struct {
	token  string
	logger clog.Logger
}

// NewAuthConfig 创建认证配置
func NewAuthConfig(token string, logger clog.Logger) *AuthConfig {
	return &AuthConfig{token: token, logger: logger}
}

// RequireAuth 返回一个需要认证的中间件
// 从请求头或查询参数中获取 token 并做常数时间比较
func (a *AuthConfig) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.extractAndValidate(c); err != nil {
			a.logger.Warn("authentication failed",
				clog.String("client_ip", c.ClientIP()),
				clog.String("path", c.Request.URL.Path),
				clog.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized: " + err.Error(),
			})
			return
		}
		c.Next()
	}
}

// extractAndValidate 从请求中提取并校验 token
func (a *AuthConfig) extractAndValidate(c *gin.Context) error {
	token := c.GetHeader("Authorization")
	if token != "" {
		if strings.HasPrefix(token, "Bearer ") {
			token = strings.TrimPrefix(token, "Bearer ")
		}
	} else {
		token = c.Query("token")
	}

	if token == "" {
		return ErrMissingToken
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
		return ErrInvalidToken
	}
	return nil
}
