package ticket

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMalformed = errors.New("invalid ticket format")
	ErrSignature = errors.New("invalid ticket signature")
	ErrExpired   = errors.New("ticket expired")
)

// Claims is what a ticket vouches for.
type Claims struct {
	UserID    string
	Scope     string
	ExpiresAt time.Time
}

// Signer creates and validates tickets.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner constructs a signer. Tickets default to one minute.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a ticket for userID and scope.
func (s *Signer) Issue(userID, scope string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, fmt.Errorf("user id required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl)
	user := base64.RawURLEncoding.EncodeToString([]byte(userID))
	sc := base64.RawURLEncoding.EncodeToString([]byte(scope))
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	sig := s.sign(user, sc, ts)
	return strings.Join([]string{user, sc, ts, sig}, "."), expiresAt, nil
}

// Parse validates a ticket.
func (s *Signer) Parse(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return Claims{}, ErrMalformed
	}
	user, sc, ts, sig := parts[0], parts[1], parts[2], parts[3]
	if !hmac.Equal([]byte(s.sign(user, sc, ts)), []byte(sig)) {
		return Claims{}, ErrSignature
	}
	rawUser, err := base64.RawURLEncoding.DecodeString(user)
	if err != nil {
		return Claims{}, ErrMalformed
	}
	rawScope, err := base64.RawURLEncoding.DecodeString(sc)
	if err != nil {
		return Claims{}, ErrMalformed
	}
	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return Claims{}, ErrMalformed
	}
	claims := Claims{UserID: string(rawUser), Scope: string(rawScope), ExpiresAt: time.Unix(unix, 0)}
	if s.now().After(claims.ExpiresAt) {
		return Claims{}, ErrExpired
	}
	return claims, nil
}

func (s *Signer) sign(parts ...string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}
