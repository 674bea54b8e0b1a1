package util

import (
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims AccessClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestValidateToken(t *testing.T) {
	token := signToken(t, "secret", AccessClaims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	userID, err := ValidateToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)

	_, err = ValidateToken("other", token)
	assert.Error(t, err)

	_, err = ValidateToken("secret", "")
	assert.Error(t, err)
}

func TestValidateTokenFallsBackToSubject(t *testing.T) {
	token := signToken(t, "secret", AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u-2"},
	})
	userID, err := ValidateToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "u-2", userID)
}

func TestValidateTokenExpired(t *testing.T) {
	token := signToken(t, "secret", AccessClaims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	_, err := ValidateToken("secret", token)
	assert.Error(t, err)
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{}, ParseTags(""))
	assert.Equal(t, []string{"go", "ulster"}, ParseTags(" go, ,ulster "))
}

func TestGenerateUniqueFilename(t *testing.T) {
	a := GenerateUniqueFilename("my photo.png")
	b := GenerateUniqueFilename("my photo.png")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "-my_photo.png"))
	assert.True(t, strings.HasSuffix(GenerateUniqueFilename("../../etc/passwd"), "-passwd"))
}

func TestValidateNotBlank(t *testing.T) {
	v := validator.New()
	require.NoError(t, v.RegisterValidation("notblank", ValidateNotBlank))

	type patch struct {
		Content *string `validate:"omitempty,notblank"`
	}
	blank := "   "
	text := "hello"
	assert.Error(t, v.Struct(patch{Content: &blank}))
	assert.NoError(t, v.Struct(patch{Content: &text}))
	assert.NoError(t, v.Struct(patch{}))
}
