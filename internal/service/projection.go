package service

import (
	"encoding/json"
	"strings"

	"github.com/and161185/shopguard/internal/model"
	"github.com/and161185/shopguard/internal/token"
)

// MaskRune replaces every character of a masked credential.
const MaskRune = '*'

// Projection is the API-safe view of a user.
type Projection struct {
	model.User
	LastLoginTime *int64 `json:"lastLoginTime"`
}

// Entry is one row of the user listing. A nil Projection is the degraded
// form, serialized as {"auth":0}.
type Entry struct {
	Projection *Projection
}

// Degraded reports whether the entry hides the user entirely.
func (e Entry) Degraded() bool { return e.Projection == nil }

// MarshalJSON emits either the projection or the degraded marker.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Projection == nil {
		return []byte(`{"auth":0}`), nil
	}
	return json.Marshal(e.Projection)
}

// Mask returns a string of the same character count made only of MaskRune,
// or nil when s is nil.
func Mask(s *string) *string {
	if s == nil {
		return nil
	}
	m := strings.Repeat(string(MaskRune), len([]rune(*s)))
	return &m
}

// Project builds the listing entry for u given the introspection of its live token.
func Project(u model.User, res token.Result) Entry {
	var lastLogin *int64
	switch res.Status {
	case token.Expired, token.Invalid:
		return Entry{}
	case token.Valid:
		lastLogin = res.IssuedAtMillis()
	}

	cp := u
	cp.Password = Mask(u.Password)
	cp.TotpSecret = Mask(u.TotpSecret)
	if u.DeletedAt != nil {
		d := *u.DeletedAt
		cp.DeletedAt = &d
	}
	return Entry{Projection: &Projection{User: cp, LastLoginTime: lastLogin}}
}
