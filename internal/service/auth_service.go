package service

import (
	"context"
	"errors"
	"time"

	"fittrack/fitness-api/internal/domain"
	"fittrack/fitness-api/internal/identity"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// --- Error Definitions ---
var (
	ErrTokenGeneration = errors.New("failed to generate session token")
	ErrInvalidToken    = errors.New("invalid session token")
)

// AuthService runs the OAuth handshake through the identity provider and
// issues the short-lived session tokens that gate writes. Credentials never
// reach this service; the provider returns only a verified identity.
type AuthService interface {
	// NewState mints an anti-CSRF state token for a login attempt.
	NewState() string
	// LoginURL builds the provider's authorization URL for a state.
	LoginURL(state string) string
	// HandleCallback exchanges the authorization code and issues a
	// session token for the verified identity.
	HandleCallback(ctx context.Context, code string) (token string, ident *identity.Identity, err error)
	// ParseToken validates a session token and recovers the identity.
	ParseToken(token string) (*identity.Identity, error)
}

// sessionClaims is the JWT payload for a verified identity.
type sessionClaims struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// authService implements the AuthService interface.
type authService struct {
	provider      identity.Provider
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService creates a new instance of authService.
func NewAuthService(provider identity.Provider, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour * 1
	}
	return &authService{
		provider:      provider,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (s *authService) NewState() string {
	return uuid.NewString()
}

func (s *authService) LoginURL(state string) string {
	return s.provider.AuthCodeURL(state)
}

// HandleCallback trades the authorization code for a verified identity and
// wraps it in a signed session token.
func (s *authService) HandleCallback(ctx context.Context, code string) (string, *identity.Identity, error) {
	if code == "" {
		return "", nil, domain.ValidationError("authorization code is required",
			domain.FieldError{Field: "code", Message: "is required"})
	}

	ident, err := s.provider.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, identity.ErrExchangeFailed) {
			return "", nil, domain.UnauthenticatedError("authorization code was rejected")
		}
		return "", nil, domain.InternalError("identity provider exchange failed", err)
	}

	token, err := s.generateToken(ident)
	if err != nil {
		return "", nil, domain.InternalError("failed to issue session token", ErrTokenGeneration)
	}
	return token, ident, nil
}

// ParseToken validates the signature and expiry and recovers the identity.
func (s *authService) ParseToken(tokenString string) (*identity.Identity, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return &identity.Identity{
		ID:          claims.Subject,
		Username:    claims.Username,
		DisplayName: claims.DisplayName,
		Email:       claims.Email,
	}, nil
}

func (s *authService) generateToken(ident *identity.Identity) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Username:    ident.Username,
		DisplayName: ident.DisplayName,
		Email:       ident.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ident.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
