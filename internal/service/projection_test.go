package service

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"

	"github.com/and161185/shopguard/internal/model"
	"github.com/and161185/shopguard/internal/token"
)

func strptr(s string) *string { return &s }

func sampleUser() model.User {
	deleted := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return model.User{
		ID:         uuid.Must(uuid.NewV4()),
		Username:   "bender",
		Email:      "bender@juice-sh.op",
		Password:   strptr("argon2id$c0ffee$deadbeef"),
		Role:       model.RoleCustomer,
		TotpSecret: strptr("IFTXE3SPOEYVURT2MRYGI52TKJ4HC3KH"),
		IsActive:   true,
		DeletedAt:  &deleted,
	}
}

func validResult(iat time.Time) token.Result {
	return token.Result{Status: token.Valid, IssuedAt: &iat}
}

func TestMask(t *testing.T) {
	t.Parallel()

	require.Nil(t, Mask(nil))
	for _, in := range []string{"", "a", "hunter2", "pässwörd", "line\nbreak"} {
		got := Mask(strptr(in))
		require.NotNil(t, got)
		require.Equal(t, utf8.RuneCountInString(in), utf8.RuneCountInString(*got), in)
		require.Equal(t, strings.Repeat("*", utf8.RuneCountInString(in)), *got)
		for _, r := range in {
			require.NotContains(t, *got, string(r))
		}
	}
}

func TestProject_NoToken(t *testing.T) {
	t.Parallel()

	u := sampleUser()
	e := Project(u, token.Result{Status: token.NoToken})
	require.False(t, e.Degraded())
	require.Nil(t, e.Projection.LastLoginTime)
	require.Equal(t, strings.Repeat("*", len(*u.Password)), *e.Projection.Password)
	require.Equal(t, strings.Repeat("*", len(*u.TotpSecret)), *e.Projection.TotpSecret)
	require.Equal(t, u.Email, e.Projection.Email)

	b, err := json.Marshal(e)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	require.Contains(t, m, "lastLoginTime")
	require.Nil(t, m["lastLoginTime"])
	require.NotContains(t, m, "auth")
	require.Equal(t, "bender@juice-sh.op", m["email"])
}

func TestProject_ValidToken_SetsLastLoginMillis(t *testing.T) {
	t.Parallel()

	e := Project(sampleUser(), validResult(time.Unix(1_700_000_123, 0)))
	require.NotNil(t, e.Projection.LastLoginTime)
	require.Equal(t, int64(1_700_000_123_000), *e.Projection.LastLoginTime)

	b, err := json.Marshal(e)
	require.NoError(t, err)
	require.Contains(t, string(b), `"lastLoginTime":1700000123000`)
}

func TestProject_VerificationFailureDegradesWholeEntry(t *testing.T) {
	t.Parallel()

	for _, st := range []token.Status{token.Expired, token.Invalid} {
		e := Project(sampleUser(), token.Result{Status: st})
		require.True(t, e.Degraded(), st.String())

		b, err := json.Marshal(e)
		require.NoError(t, err)
		require.JSONEq(t, `{"auth":0}`, string(b))
	}
}

func TestProject_AbsentCredentialsStayAbsent(t *testing.T) {
	t.Parallel()

	u := sampleUser()
	u.Password = nil
	u.TotpSecret = nil
	e := Project(u, token.Result{Status: token.NoToken})
	require.Nil(t, e.Projection.Password)
	require.Nil(t, e.Projection.TotpSecret)

	b, err := json.Marshal(e)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	require.NotContains(t, m, "password")
	require.NotContains(t, m, "totpSecret")
}

func TestProject_EmptyTotpStaysEmpty(t *testing.T) {
	t.Parallel()

	u := sampleUser()
	u.TotpSecret = strptr("")
	e := Project(u, token.Result{Status: token.NoToken})
	require.NotNil(t, e.Projection.TotpSecret)
	require.Equal(t, "", *e.Projection.TotpSecret)
}

func TestProject_DoesNotAliasOriginal(t *testing.T) {
	t.Parallel()

	u := sampleUser()
	origPassword := *u.Password
	origDeleted := *u.DeletedAt

	e := Project(u, token.Result{Status: token.NoToken})
	*e.Projection.Password = "changed"
	*e.Projection.DeletedAt = time.Now()
	e.Projection.Email = "changed@juice-sh.op"

	require.Equal(t, origPassword, *u.Password)
	require.Equal(t, origDeleted, *u.DeletedAt)
	require.Equal(t, "bender@juice-sh.op", u.Email)
}
