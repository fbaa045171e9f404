package middleware

import (
	"net/http"
	"strings"
	"time"

	"bingo-groups-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const userKey = "currentUser"

// Claims is the token payload: just the user id plus standard expiry.
type Claims struct {
	UserID uint `json:"id"`
	jwt.RegisteredClaims
}

// IssueToken signs a bearer token for the user.
func IssueToken(secret string, userID uint, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Protect validates the bearer token and resolves the caller to a verified
// identity. Websocket clients cannot set headers, so a "token" query
// parameter is accepted as a fallback.
func Protect(db *gorm.DB, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "please authenticate"})
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "please authenticate"})
			return
		}

		name := user.Name
		if name == "" {
			name = user.Username
		}
		c.Set(userKey, models.Member{ID: user.ID, Name: name, Email: user.Email})
		c.Next()
	}
}

// CurrentUser returns the identity Protect resolved. Zero value when called
// outside a protected route.
func CurrentUser(c *gin.Context) models.Member {
	if v, ok := c.Get(userKey); ok {
		if m, ok := v.(models.Member); ok {
			return m
		}
	}
	return models.Member{}
}

// SetCurrentUser injects a caller identity directly. Handler tests use this
// instead of minting tokens.
func SetCurrentUser(c *gin.Context, user models.Member) {
	c.Set(userKey, user)
}
