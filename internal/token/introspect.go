package token

import (
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

// Status classifies the outcome of introspecting a token.
type Status int

const (
	// NoToken means there was nothing to verify.
	NoToken Status = iota
	// Valid means the signature and time claims check out.
	Valid
	// Expired means the signature is fine but exp is in the past.
	Expired
	// Invalid covers malformed tokens, bad signatures and foreign algorithms.
	Invalid
)

func (s Status) String() string {
	switch s {
	case NoToken:
		return "no_token"
	case Valid:
		return "valid"
	case Expired:
		return "expired"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of Introspect. Claims fields are set only for Valid.
type Result struct {
	Status   Status
	Subject  string
	IssuedAt *time.Time
}

// IssuedAtMillis returns iat in milliseconds since epoch, or nil when the
// token is not valid or carries no iat.
func (r Result) IssuedAtMillis() *int64 {
	if r.Status != Valid || r.IssuedAt == nil {
		return nil
	}
	ms := r.IssuedAt.Unix() * 1000
	return &ms
}

// Introspector verifies HS256 session tokens.
type Introspector struct {
	key    []byte
	leeway time.Duration
}

// NewIntrospector constructs an Introspector for the given signing key.
func NewIntrospector(key []byte) *Introspector {
	return &Introspector{key: key}
}

// WithLeeway returns a copy tolerating clock skew on time claims.
func (in *Introspector) WithLeeway(d time.Duration) *Introspector {
	cp := *in
	cp.leeway = d
	return &cp
}

// Introspect verifies tok and extracts its claims. It never returns an error:
// every failure is folded into the Status.
func (in *Introspector) Introspect(tok string) Result {
	if tok == "" {
		return Result{Status: NoToken}
	}

	var claims jwt.RegisteredClaims
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if in.leeway > 0 {
		opts = append(opts, jwt.WithLeeway(in.leeway))
	}
	parsed, err := jwt.ParseWithClaims(tok, &claims, func(*jwt.Token) (any, error) {
		return in.key, nil
	}, opts...)
	switch {
	case err == nil && parsed.Valid:
	case errors.Is(err, jwt.ErrTokenExpired):
		return Result{Status: Expired}
	default:
		return Result{Status: Invalid}
	}

	res := Result{Status: Valid, Subject: claims.Subject}
	if claims.IssuedAt != nil {
		iat := claims.IssuedAt.Time
		res.IssuedAt = &iat
	}
	return res
}

// Issue signs a new HS256 token for userID valid for ttl.
func (in *Introspector) Issue(userID uuid.UUID, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(in.key)
	return signed, exp, err
}
