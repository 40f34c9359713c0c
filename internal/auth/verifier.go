package auth

import (
	"errors"
	"fmt"

	"github.com/estately/estate-service/internal/platform/logger"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// ErrAuthRequired indicates that an operation needs a verified identity and
// none could be established from the request.
var ErrAuthRequired = errors.New("authentication required")

// Identity is the verified subject of a bearer token. The zero value is the
// anonymous identity.
type Identity struct {
	UserID string
}

// Anonymous is the identity used when optional verification fails or no
// token is present.
var Anonymous = Identity{}

// IsAnonymous reports whether the identity carries no verified subject.
func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}

// Claims defines the JWT claims expected from the authentication provider.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens against the shared secret. It never
// issues tokens; that belongs to the authentication provider.
type Verifier struct {
	secret []byte
	logger *logger.Logger
}

// NewVerifier builds a Verifier. The secret is injected explicitly so tests
// can swap it per instance.
func NewVerifier(jwtSecret string, log *logger.Logger) *Verifier {
	return &Verifier{
		secret: []byte(jwtSecret),
		logger: log.Named("AuthVerifier"),
	}
}

func (v *Verifier) parse(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Anonymous, err
	}
	if !token.Valid {
		return Anonymous, errors.New("token is not valid")
	}
	// Fall back to the registered subject for providers that do not emit a
	// user_id claim.
	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return Anonymous, errors.New("no subject in token claims")
	}
	return Identity{UserID: userID}, nil
}

// VerifyRequired validates the token and fails with ErrAuthRequired when the
// token is absent, malformed, expired or carries a bad signature.
func (v *Verifier) VerifyRequired(tokenString string) (Identity, error) {
	if tokenString == "" {
		v.logger.Debug("VerifyRequired: no token provided")
		return Anonymous, ErrAuthRequired
	}
	identity, err := v.parse(tokenString)
	if err != nil {
		v.logger.Warn("VerifyRequired: token verification failed", zap.Error(err))
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Anonymous, fmt.Errorf("%w: token has expired", ErrAuthRequired)
		}
		return Anonymous, fmt.Errorf("%w: %v", ErrAuthRequired, err)
	}
	return identity, nil
}

// VerifyOptional degrades every verification failure to the anonymous
// identity. Callers cannot distinguish a missing token from a bad one; both
// simply mean the response is not enriched.
func (v *Verifier) VerifyOptional(tokenString string) Identity {
	if tokenString == "" {
		return Anonymous
	}
	identity, err := v.parse(tokenString)
	if err != nil {
		v.logger.Debug("VerifyOptional: degrading invalid token to anonymous", zap.Error(err))
		return Anonymous
	}
	return identity
}
