package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"table_ordering/internal/models"
	"table_ordering/internal/repository"
	"table_ordering/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const scopeKey = "scope"

type Claims struct {
	UserID  uint   `json:"user_id"`
	Role    string `json:"role"`
	VenueID *uint  `json:"venue_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies staff access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// GenerateToken creates a signed JWT for a given user
func (m *TokenManager) GenerateToken(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(m.ttl)
	claims := Claims{
		UserID:  user.ID,
		Role:    user.Role,
		VenueID: user.VenueID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	return signed, expires, err
}

func (m *TokenManager) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// UserLookup loads the stored account behind a token.
type UserLookup interface {
	GetUserByID(id uint) (*models.User, error)
}

// AuthRequired validates the bearer token, reloads the account it names and
// stores the caller's repository.Scope in the context. Role and venue come
// from the stored account so admin edits apply to tokens already issued.
func AuthRequired(tokens *TokenManager, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authorization header required (Bearer <token>)",
			})
			return
		}
		claims, err := tokens.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid or expired token",
			})
			return
		}
		user, err := users.GetUserByID(claims.UserID)
		if err != nil {
			if errors.Is(err, services.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"success": false,
					"message": "Account no longer exists",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to load account",
			})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Account is disabled",
			})
			return
		}
		c.Set(scopeKey, repository.Scope{
			UserID:  user.ID,
			Role:    user.Role,
			VenueID: user.VenueID,
		})
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, ok := GetScope(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authentication required"})
			return
		}
		for _, r := range roles {
			if scope.Role == string(r) {
				c.Next()
				return
			}
		}
		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = string(r)
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "Access denied. Required role(s): " + strings.Join(names, ", "),
		})
	}
}

// GetScope returns the caller scope set by AuthRequired.
func GetScope(c *gin.Context) (repository.Scope, bool) {
	val, exists := c.Get(scopeKey)
	if !exists {
		return repository.Scope{}, false
	}
	scope, ok := val.(repository.Scope)
	return scope, ok
}
