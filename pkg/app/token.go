package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// 默认 Token 签发者
const DefaultTokenIssuer = "page-sync-service"

// TokenConfig 定义 Token 管理器的配置
type TokenConfig struct {
	SecretKey string        `yaml:"secret-key"` // JWT 签名密钥
	Expiry    time.Duration `yaml:"expiry"`     // Token 过期时间，默认 7 天
	Issuer    string        `yaml:"issuer"`     // Token 签发者
}

// TokenManager 定义 Token 管理接口
type TokenManager interface {
	Generate(uid int64, email string, nickname string) (string, error)
	Parse(token string) (*UserEntity, error)
	GetSecretKey() string
}

// UserEntity represents the user data stored in the JWT
// UserEntity 表示存储在 JWT 中的用户数据
type UserEntity struct {
	UID      int64  `json:"uid"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
	jwt.RegisteredClaims
}

type tokenManager struct {
	config TokenConfig
}

// NewTokenManager 创建一个新的 TokenManager 实例
func NewTokenManager(cfg TokenConfig) TokenManager {
	if cfg.Expiry == 0 {
		cfg.Expiry = 7 * 24 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultTokenIssuer
	}
	return &tokenManager{config: cfg}
}

func (m *tokenManager) Generate(uid int64, email string, nickname string) (string, error) {
	now := time.Now()
	claims := &UserEntity{
		UID:      uid,
		Email:    email,
		Nickname: nickname,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.Expiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.config.SecretKey))
}

func (m *tokenManager) Parse(token string) (*UserEntity, error) {
	return ParseTokenWithKey(token, m.config.SecretKey)
}

func (m *tokenManager) GetSecretKey() string {
	return m.config.SecretKey
}

// ParseTokenWithKey parses and validates a token with the given key
// ParseTokenWithKey 使用指定密钥解析并校验 Token
func ParseTokenWithKey(tokenStr string, secretKey string) (*UserEntity, error) {
	claims := &UserEntity{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// GetTokenFromRequest extracts the token from header or query
// GetTokenFromRequest 从请求头或查询参数中提取 Token
func GetTokenFromRequest(c *gin.Context) string {
	if s, exist := c.GetQuery("authorization"); exist {
		return s
	}
	if s := c.GetHeader("Authorization"); len(s) != 0 {
		return s
	}
	if s, exist := c.GetQuery("token"); exist {
		return s
	}
	if s := c.GetHeader("Token"); len(s) != 0 {
		return s
	}
	return ""
}
