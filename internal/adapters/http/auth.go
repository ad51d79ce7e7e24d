package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/ArielDRighi/tarot/internal/domain"
)

const ctxRequester = "requester"

// Claims are the bearer token claims: the numeric user id in sub and the
// admin flag.
type Claims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for userID.
func IssueToken(secret []byte, userID uint, admin bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken validates an HS256 token and returns the requester it names.
func ParseToken(secret []byte, token string) (domain.Requester, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return domain.Requester{}, err
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return domain.Requester{}, errors.New("subject is not a user id")
	}
	return domain.Requester{UserID: uint(id), IsAdmin: claims.Admin}, nil
}

// AuthMiddleware resolves the bearer token into a requester. Requests
// without a token pass through anonymously; invalid tokens are rejected.
func AuthMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request())
			if !ok {
				return next(c)
			}
			requester, err := ParseToken(secret, token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:     fmt.Sprintf("invalid token: %v", err),
					RequestID: requestID(c),
				})
			}
			c.Set(ctxRequester, &requester)
			return next(c)
		}
	}
}

// RequireUser rejects anonymous requests.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if requesterFrom(c) == nil {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:     "authentication required",
					RequestID: requestID(c),
				})
			}
			return next(c)
		}
	}
}

func requesterFrom(c echo.Context) *domain.Requester {
	r, _ := c.Get(ctxRequester).(*domain.Requester)
	return r
}

func requestID(c echo.Context) string {
	id, _ := c.Get(ctxRequestID).(string)
	return id
}
