package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"agora/domain/core"
	"agora/domain/debate"
	"agora/internal/errors"
	"agora/ports"
)

// sessionCookie names the anonymous voter session cookie
const sessionCookie = "arena_session"

type contextKey string

const (
	identityKey contextKey = "identity"
	voterKey    contextKey = "voter"
)

// Claims represents JWT claims
type Claims struct {
	Role   string `json:"role"`
	Banned bool   `json:"banned,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator parses bearer tokens into caller identities. It only
// authenticates; every authorization rule lives in the domain.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an authenticator over an HS256 shared secret
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// GenerateToken creates a signed token for an actor
func (a *Authenticator) GenerateToken(actorID core.ID, role ports.Role, banned bool, expiration time.Duration) (string, error) {
	claims := Claims{
		Role:   string(role),
		Banned: banned,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actorID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// parseToken validates a bearer token and returns the identity it carries
func (a *Authenticator) parseToken(tokenString string) (*ports.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Unauthorized("unexpected signing method")
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, errors.Unauthorized("invalid token")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.Unauthorized("invalid token claims")
	}
	return &ports.Identity{
		ActorID: core.ID(claims.Subject),
		Role:    ports.Role(claims.Role),
		Banned:  claims.Banned,
	}, nil
}

// RequireIdentity rejects requests without a valid bearer token
func (a *Authenticator) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, errors.Unauthorized("missing authorization header"))
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			writeError(w, errors.Unauthorized("invalid authorization header format"))
			return
		}
		ident, err := a.parseToken(parts[1])
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, *ident)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin rejects callers without the admin role
func (a *Authenticator) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident, ok := identityFrom(r.Context())
		if !ok || !ident.IsAdmin() {
			writeError(w, errors.Unauthorized("admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Voter resolves the voter identity: the authenticated user when a valid
// token is present, else an anonymous session cookie, minted on first vote.
func (a *Authenticator) Voter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var voter debate.VoterIdentity

		authHeader := r.Header.Get("Authorization")
		if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			if ident, err := a.parseToken(parts[1]); err == nil {
				voter.UserID = ident.ActorID.String()
			}
		}

		if voter.UserID == "" {
			cookie, err := r.Cookie(sessionCookie)
			if err != nil || cookie.Value == "" {
				sessionID := uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookie,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
				voter.SessionID = sessionID
			} else {
				voter.SessionID = cookie.Value
			}
		}

		ctx := context.WithValue(r.Context(), voterKey, voter)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// identityFrom extracts the authenticated identity from context
func identityFrom(ctx context.Context) (ports.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(ports.Identity)
	return ident, ok
}

// voterFrom extracts the voter identity from context
func voterFrom(ctx context.Context) (debate.VoterIdentity, bool) {
	voter, ok := ctx.Value(voterKey).(debate.VoterIdentity)
	return voter, ok
}
