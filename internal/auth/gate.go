// Package auth implements the shared-passcode access gate.  The core never
// runs for a caller without a valid session token issued here.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrNoPasscode is returned when no passcode is configured.  The gate fails
// closed: without a configured passcode nobody gets in.
var ErrNoPasscode = errors.New("no passcode configured")

// Gate verifies the passcode and issues short-lived session tokens.
type Gate struct {
	passcodeHash []byte
	jwtSecret    []byte
	tokenTTL     time.Duration
}

// NewGate builds a gate from either a precomputed bcrypt hash or a
// plaintext passcode (hashed at startup, for local runs).  The hash wins
// when both are set.
func NewGate(passcode, passcodeHash, jwtSecret string, tokenTTL time.Duration) (*Gate, error) {
	if jwtSecret == "" {
		return nil, errors.New("jwt secret must be set")
	}
	var hash []byte
	switch {
	case passcodeHash != "":
		hash = []byte(passcodeHash)
	case passcode != "":
		h, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash passcode: %w", err)
		}
		hash = h
	}
	return &Gate{
		passcodeHash: hash,
		jwtSecret:    []byte(jwtSecret),
		tokenTTL:     tokenTTL,
	}, nil
}

// Verify checks the submitted passcode.  ErrNoPasscode when the gate has
// nothing to compare against.
func (g *Gate) Verify(passcode string) error {
	if len(g.passcodeHash) == 0 {
		return ErrNoPasscode
	}
	return bcrypt.CompareHashAndPassword(g.passcodeHash, []byte(passcode))
}

// sessionClaims binds a token to one session's state.
type sessionClaims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// IssueToken creates a signed token carrying the session ID.
func (g *Gate) IssueToken(sessionID string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.jwtSecret)
}

// ParseToken validates a token and returns the session ID it carries.
func (g *Gate) ParseToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return g.jwtSecret, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", errors.New("invalid token claims")
	}
	return claims.SessionID, nil
}
