// Package auth implements login against an external OIDC provider and the
// signed session cookie that rides on every authenticated request.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "jumak_session"

// SessionTTL is how long an issued session stays valid.
const SessionTTL = 7 * 24 * time.Hour

var (
	ErrNoIDToken      = errors.New("auth: token response carried no id_token")
	ErrNonceMismatch  = errors.New("auth: id_token nonce does not match")
	ErrInvalidSession = errors.New("auth: invalid session token")
)

// User is the identity extracted from the provider's id_token.
type User struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ProviderConfig holds the OIDC provider endpoints and client credentials.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string
}

// Service runs the authorization-code flow and signs session tokens.
type Service struct {
	oauth  *oauth2.Config
	secret []byte
	ttl    time.Duration
	log    zerolog.Logger
}

func NewService(pc ProviderConfig, sessionSecret string, log zerolog.Logger) *Service {
	return &Service{
		oauth: &oauth2.Config{
			ClientID:     pc.ClientID,
			ClientSecret: pc.ClientSecret,
			RedirectURL:  pc.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  pc.AuthURL,
				TokenURL: pc.TokenURL,
			},
		},
		secret: []byte(sessionSecret),
		ttl:    SessionTTL,
		log:    log,
	}
}

// NewStateToken returns a random value for the state and nonce parameters.
func NewStateToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("auth: rand: %v", err))
	}
	return hex.EncodeToString(b)
}

// LoginURL builds the provider redirect carrying state and nonce.
func (s *Service) LoginURL(state, nonce string) string {
	return s.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("nonce", nonce))
}

// HandleCallback exchanges the authorization code and pulls the user identity
// out of the id_token. The token arrives over the direct TLS exchange with the
// provider's token endpoint, so the claims are read without a signature check;
// the nonce still has to match the one we sent.
func (s *Service) HandleCallback(ctx context.Context, code, nonce string) (*User, error) {
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: code exchange: %w", err)
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return nil, ErrNoIDToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("auth: parse id_token: %w", err)
	}
	if got, _ := claims["nonce"].(string); got != nonce {
		return nil, ErrNonceMismatch
	}

	u := &User{
		Sub:   stringClaim(claims, "sub"),
		Email: stringClaim(claims, "email"),
		Name:  stringClaim(claims, "name"),
	}
	if u.Sub == "" {
		return nil, errors.New("auth: id_token has no sub claim")
	}
	s.log.Info().Str("sub", u.Sub).Msg("login")
	return u, nil
}

type sessionClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// IssueSession signs an HS256 session token for the user.
func (s *Service) IssueSession(u *User) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Email: u.Email,
		Name:  u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseSession validates a session token and returns its user.
func (s *Service) ParseSession(tokenStr string) (*User, error) {
	claims := &sessionClaims{}
	tok, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidSession
	}
	return &User{Sub: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
