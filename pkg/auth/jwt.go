package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/config"
	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type tokenType string

const (
	accessTokenType  tokenType = "access"
	refreshTokenType tokenType = "refresh"
)

var (
	ErrTokenExpired      = errors.New("token has expired")
	ErrTokenInvalid      = errors.New("token is invalid")
	ErrTokenTypeMismatch = errors.New("wrong token type")
)

type wardClaims struct {
	jwt.RegisteredClaims
	EmployeeCode string    `json:"employee_code"`
	Name         string    `json:"name"`
	IsAdmin      bool      `json:"is_admin"`
	TokenType    tokenType `json:"token_type"`
}

type JWTManager struct {
	cfg config.JWTConfig
	now func() time.Time
}

func NewJWTManager(cfg config.JWTConfig) *JWTManager {
	return &JWTManager{cfg: cfg, now: time.Now}
}

func (m *JWTManager) GenerateTokenPair(id domain.Identity) (*domain.TokenPair, error) {
	accessToken, expiresAt, err := m.generateToken(id, accessTokenType, m.cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("generating access token: %w", err)
	}

	refreshToken, _, err := m.generateToken(id, refreshTokenType, m.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("generating refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}

func (m *JWTManager) ValidateAccessToken(tokenString string) (domain.Identity, error) {
	return m.validateToken(tokenString, accessTokenType)
}

func (m *JWTManager) ValidateRefreshToken(tokenString string) (domain.Identity, error) {
	return m.validateToken(tokenString, refreshTokenType)
}

func (m *JWTManager) generateToken(id domain.Identity, ttype tokenType, ttl time.Duration) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(ttl)

	claims := wardClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			Subject:   id.EmployeeID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			// 10s skew tolerance for clock drift between instances
			NotBefore: jwt.NewNumericDate(now.Add(-10 * time.Second)),
			ID:        uuid.NewString(),
		},
		EmployeeCode: id.EmployeeCode,
		Name:         id.Name,
		IsAdmin:      id.IsAdmin,
		TokenType:    ttype,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func (m *JWTManager) validateToken(tokenString string, expectedType tokenType) (domain.Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&wardClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.cfg.Secret), nil
		},
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Identity{}, ErrTokenExpired
		}
		return domain.Identity{}, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*wardClaims)
	if !ok || !token.Valid {
		return domain.Identity{}, ErrTokenInvalid
	}

	if claims.TokenType != expectedType {
		return domain.Identity{}, ErrTokenTypeMismatch
	}

	employeeID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.Identity{}, ErrTokenInvalid
	}

	return domain.Identity{
		EmployeeID:   employeeID,
		EmployeeCode: claims.EmployeeCode,
		Name:         claims.Name,
		IsAdmin:      claims.IsAdmin,
	}, nil
}
