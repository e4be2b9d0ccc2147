package firebaseauth

import (
	"context"

	"municipal-tasks/internal/core/domain/entities"
	"municipal-tasks/internal/core/domain/exceptions"

	"firebase.google.com/go/auth"
	"go.uber.org/zap"
)

// TokenProvider hands back the current ID token of the client session, e.g.
// read from the token file the mobile shell keeps refreshed.
type TokenProvider func() (string, error)

// SessionSource verifies the client's ID token against Firebase Auth on every
// poll. Verification failures surface as exceptions.ErrNoSession so the
// session gate keeps backing off instead of treating them as fatal.
type SessionSource struct {
	auth  *auth.Client
	token TokenProvider
	log   *zap.Logger
}

func NewSessionSource(authClient *auth.Client, token TokenProvider, log *zap.Logger) *SessionSource {
	if authClient == nil {
		log.Fatal("firebase auth client is nil")
	}
	if token == nil {
		log.Fatal("token provider is nil")
	}
	if log == nil {
		log.Fatal("logger is nil")
	}
	return &SessionSource{
		auth:  authClient,
		token: token,
		log:   log,
	}
}

func (s *SessionSource) Current(ctx context.Context) (*entities.Session, error) {
	idToken, err := s.token()
	if err != nil || idToken == "" {
		return nil, exceptions.ErrNoSession
	}

	verified, err := s.auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.log.Debug("firebase auth: token verification failed", zap.Error(err))
		return nil, exceptions.ErrNoSession
	}

	return &entities.Session{
		UID:   verified.UID,
		Email: stringClaim(verified.Claims, "email"),
		Role:  stringClaim(verified.Claims, "role"),
	}, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
