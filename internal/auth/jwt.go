package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("Invalid or expired token")

// Claims identify the signed-in user.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	secret []byte
	expiry time.Duration
}

func NewService(secret, expiresIn string) (*Service, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is not set")
	}

	expiry, err := ParseExpiry(expiresIn)
	if err != nil {
		return nil, err
	}

	return &Service{secret: []byte(secret), expiry: expiry}, nil
}

func (s *Service) Expiry() time.Duration {
	return s.expiry
}

func (s *Service) Issue(userID, email, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify accepts only HS256 tokens signed with the service secret.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ParseExpiry reads durations written as a number and a unit: s, m, h, d or
// w. An unrecognised unit is read as days.
func ParseExpiry(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 7 * 24 * time.Hour, nil
	}

	digits := strings.TrimRightFunc(value, func(r rune) bool { return r < '0' || r > '9' })
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid token expiry %q", value)
	}

	unit := time.Duration(n)
	switch value[len(digits):] {
	case "s":
		return unit * time.Second, nil
	case "m":
		return unit * time.Minute, nil
	case "h":
		return unit * time.Hour, nil
	case "w":
		return unit * 7 * 24 * time.Hour, nil
	default:
		return unit * 24 * time.Hour, nil
	}
}
