// Package ingesttoken mints and validates the bearer tokens an identity
// platform presents when it pushes events to the metrics adapter.
package ingesttoken

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// Now returns the current UTC timestamp.
func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// Config configures the Validator.
type Config struct {
	SigningKey []byte
	Issuer     string
	Clock      Clock
}

// DefaultContextKey is used by GinMiddleware when no explicit key is provided.
const DefaultContextKey = "ingest_claims"

const bearerPrefix = "bearer "

// Sentinel errors exposed by the validator.
var (
	ErrMissingSigningKey = errors.New("ingest.token.missing_signing_key")
	ErrMissingIssuer     = errors.New("ingest.token.missing_issuer")
	ErrMissingSubject    = errors.New("ingest.token.missing_subject")
	ErrMissingToken      = errors.New("ingest.token.missing_token")
	ErrMissingHeader     = errors.New("ingest.token.missing_authorization")
	ErrInvalidToken      = errors.New("ingest.token.invalid_token")
	ErrInvalidIssuer     = errors.New("ingest.token.invalid_issuer")
	ErrTokenExpired      = errors.New("ingest.token.expired")
)

// Validator validates event push tokens.
type Validator struct {
	signingKey []byte
	issuer     string
	clock      Clock
}

// Claims identify the pushing platform instance.
type Claims struct {
	Source string `json:"source"`
	jwt.RegisteredClaims
}

// GetSource returns the platform instance that minted the token.
func (claims *Claims) GetSource() string {
	if claims == nil {
		return ""
	}
	return claims.Source
}

// GetExpiresAt returns the expiry timestamp.
func (claims *Claims) GetExpiresAt() time.Time {
	if claims == nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// New constructs a Validator after validating the supplied configuration.
func New(configuration Config) (*Validator, error) {
	if len(configuration.SigningKey) == 0 {
		return nil, fmt.Errorf("ingest.token.new: %w", ErrMissingSigningKey)
	}
	if strings.TrimSpace(configuration.Issuer) == "" {
		return nil, fmt.Errorf("ingest.token.new: %w", ErrMissingIssuer)
	}
	clock := configuration.Clock
	if clock == nil {
		clock = systemClock{}
	}
	return &Validator{
		signingKey: configuration.SigningKey,
		issuer:     configuration.Issuer,
		clock:      clock,
	}, nil
}

// Mint signs an HS256 token for source valid for ttl.
func Mint(configuration Config, source string, ttl time.Duration) (string, time.Time, error) {
	if strings.TrimSpace(source) == "" {
		return "", time.Time{}, fmt.Errorf("ingest.token.mint: %w", ErrMissingSubject)
	}
	if len(configuration.SigningKey) == 0 {
		return "", time.Time{}, fmt.Errorf("ingest.token.mint: %w", ErrMissingSigningKey)
	}
	clock := configuration.Clock
	if clock == nil {
		clock = systemClock{}
	}
	issuedAt := clock.Now()
	expiresAt := issuedAt.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Source: source,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    configuration.Issuer,
			Subject:   source,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt.Add(-30 * time.Second)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	signed, err := token.SignedString(configuration.SigningKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("ingest.token.mint: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken validates the provided JWT string and returns the parsed claims.
func (validator *Validator) ValidateToken(tokenString string) (*Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, fmt.Errorf("ingest.token.validate_token: %w", ErrMissingToken)
	}
	parsedToken, parseErr := jwt.ParseWithClaims(tokenString, &Claims{}, func(parsed *jwt.Token) (interface{}, error) {
		return validator.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(func() time.Time {
		return validator.clock.Now()
	}))
	if parseErr != nil {
		if errors.Is(parseErr, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("ingest.token.validate_token: %w", ErrTokenExpired)
		}
		return nil, fmt.Errorf("ingest.token.validate_token: %w", ErrInvalidToken)
	}
	if parsedToken == nil || !parsedToken.Valid {
		return nil, fmt.Errorf("ingest.token.validate_token: %w", ErrInvalidToken)
	}
	claims, ok := parsedToken.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("ingest.token.validate_token: %w", ErrInvalidToken)
	}
	if claims.Issuer != validator.issuer {
		return nil, fmt.Errorf("ingest.token.validate_token: %w", ErrInvalidIssuer)
	}
	if strings.TrimSpace(claims.Source) == "" {
		return nil, fmt.Errorf("ingest.token.validate_token: %w", ErrMissingSubject)
	}
	return claims, nil
}

// ValidateRequest reads the bearer token from the Authorization header and validates it.
func (validator *Validator) ValidateRequest(request *http.Request) (*Claims, error) {
	if request == nil {
		return nil, fmt.Errorf("ingest.token.validate_request: %w", ErrMissingToken)
	}
	header := strings.TrimSpace(request.Header.Get("Authorization"))
	if header == "" {
		return nil, fmt.Errorf("ingest.token.validate_request: %w", ErrMissingHeader)
	}
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return nil, fmt.Errorf("ingest.token.validate_request: %w", ErrMissingToken)
	}
	return validator.ValidateToken(strings.TrimSpace(header[len(bearerPrefix):]))
}

// GinMiddleware returns a Gin middleware that validates the bearer token and injects claims.
func (validator *Validator) GinMiddleware(contextKey string) gin.HandlerFunc {
	if strings.TrimSpace(contextKey) == "" {
		contextKey = DefaultContextKey
	}
	return func(contextGin *gin.Context) {
		claims, err := validator.ValidateRequest(contextGin.Request)
		if err != nil {
			contextGin.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_ingest_token"})
			return
		}
		contextGin.Set(contextKey, claims)
		contextGin.Next()
	}
}
