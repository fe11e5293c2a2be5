package service

import (
	"context"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/testutil"
	"inkwell/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type tokenStub struct{}

func (tokenStub) IssueToken(u *models.User) (string, error) {
	return "token-" + u.Username, nil
}

func signupForm(username string) validation.SignupSubmission {
	return validation.SignupSubmission{
		Username:        username,
		Email:           username + "@example.com",
		Password:        "correct horse",
		PasswordConfirm: "correct horse",
	}
}

func TestUserService_Signup(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	users := repository.NewUserRepository(db)
	svc := NewUserService(users, tokenStub{})
	ctx := context.Background()

	user, token, err := svc.Signup(ctx, signupForm("anna"))
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "token-anna", token)

	stored, err := users.GetByUsername(ctx, "anna")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("correct horse")))

	_, _, err = svc.Signup(ctx, signupForm("anna"))
	assertFieldError(t, err, "username")

	mismatch := signupForm("boris")
	mismatch.PasswordConfirm = "something else"
	_, _, err = svc.Signup(ctx, mismatch)
	assertFieldError(t, err, "password_confirm")
}

func TestUserService_Login(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	svc := NewUserService(repository.NewUserRepository(db), tokenStub{})
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, signupForm("anna"))
	require.NoError(t, err)

	user, token, err := svc.Login(ctx, "anna", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "anna", user.Username)
	assert.Equal(t, "token-anna", token)

	_, _, err = svc.Login(ctx, "anna", "wrong")
	assertCode(t, err, models.CodeUnauthorized)

	_, _, err = svc.Login(ctx, "nobody", "correct horse")
	assertCode(t, err, models.CodeUnauthorized)
}
