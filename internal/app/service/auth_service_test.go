package service

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"coursehub/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	auth     *AuthService
	identity *IdentityService
	users    *fakeUserRepo
	mailer   *fakeMailer
}

func newAuthFixture() *authFixture {
	users := newFakeUserRepo()
	verification, _, mailer, _ := newVerificationFixture()
	identity := NewIdentityService(users, plainHasher{}, nopLog)
	auth := NewAuthService(identity, verification, fakeTx{}, nopLog)
	auth.issueToken = func(int64) (string, error) { return "token", nil }
	return &authFixture{auth: auth, identity: identity, users: users, mailer: mailer}
}

func (f *authFixture) codeFor(t *testing.T, email string) string {
	t.Helper()
	require.NoError(t, f.auth.SendCode(context.Background(), SendCodeRequest{Email: email}))
	code := f.mailer.last(NormalizeEmail(email))
	require.NotEmpty(t, code)
	return code
}

func TestRegisterAndLogin(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	code := f.codeFor(t, "Carol@Example.com")

	resp, err := f.auth.Register(ctx, RegisterRequest{
		Nickname: "carol", Email: "Carol@Example.com", VerificationCode: code, Password: "s3cret",
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "token", resp.Token)
	assert.Equal(t, "carol@example.com", resp.User.Email)
	assert.Equal(t, "carol", resp.User.Name)

	login, err := f.auth.Login(ctx, LoginRequest{Email: "carol@example.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = f.auth.Login(ctx, LoginRequest{Email: "carol@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "s3cret"})
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestRegisterDuplicateEmailWithValidCode(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	_, err := f.auth.Register(ctx, RegisterRequest{Nickname: "d", Email: "dave@example.com", VerificationCode: f.codeFor(t, "dave@example.com"), Password: "pw"})
	require.NoError(t, err)

	f.mailer.sent = nil
	f.auth.verification.now = func() time.Time { return time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC) }
	_, err = f.auth.Register(ctx, RegisterRequest{Nickname: "d2", Email: "dave@example.com", VerificationCode: f.codeFor(t, "dave@example.com"), Password: "pw"})
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
}

func TestRegisterRejectsWrongCode(t *testing.T) {
	f := newAuthFixture()
	code := f.codeFor(t, "erin@example.com")
	wrong := "999999"
	if code == wrong {
		wrong = "999998"
	}
	_, err := f.auth.Register(context.Background(), RegisterRequest{Nickname: "erin", Email: "erin@example.com", VerificationCode: wrong, Password: "pw"})
	assert.ErrorIs(t, err, common.ErrInvalidOrExpiredCode)

	_, err = f.users.FindByEmail(context.Background(), nil, "erin@example.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	cases := map[string]RegisterRequest{
		"missing nickname": {Email: "a@example.com", VerificationCode: "123456", Password: "pw"},
		"bad email":        {Nickname: "a", Email: "nope", VerificationCode: "123456", Password: "pw"},
		"missing code":     {Nickname: "a", Email: "a@example.com", Password: "pw"},
		"missing password": {Nickname: "a", Email: "a@example.com", VerificationCode: "123456"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.auth.Register(ctx, req)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	}
}

func TestConcurrentRegisterWithSameCode(t *testing.T) {
	f := newAuthFixture()
	code := f.codeFor(t, "frank@example.com")

	var wg sync.WaitGroup
	var successes int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.auth.Register(context.Background(), RegisterRequest{
				Nickname: "frank", Email: "frank@example.com", VerificationCode: code, Password: "pw",
			})
			if err == nil {
				atomic.AddInt32(&successes, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), successes)
}

func TestUpdateProfile(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	resp, err := f.auth.Register(ctx, RegisterRequest{Nickname: "gina", Email: "gina@example.com", VerificationCode: f.codeFor(t, "gina@example.com"), Password: "pw"})
	require.NoError(t, err)
	id, err := strconv.ParseInt(resp.User.ID, 10, 64)
	require.NoError(t, err)

	name, avatar := "Gina G", "https://cdn.example.com/g.png"
	me, err := f.identity.UpdateProfile(ctx, id, UpdateProfileRequest{DisplayName: &name, AvatarURL: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "Gina G", me.Name)
	require.NotNil(t, me.Avatar)
	assert.Equal(t, avatar, *me.Avatar)

	bad := "javascript:alert(1)"
	_, err = f.identity.UpdateProfile(ctx, id, UpdateProfileRequest{AvatarURL: &bad})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = f.identity.Me(ctx, 424242)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}
