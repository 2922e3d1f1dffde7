package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/userdir/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestRegisterRequest_Validate(t *testing.T) {
	valid := func() RegisterRequest {
		return RegisterRequest{Login: " alice ", Email: "a@x.com", Password: "pw", Age: ptr(30)}
	}

	in, err := valid().Validate()
	require.NoError(t, err)
	assert.Equal(t, models.NewUser{Login: "alice", Email: "a@x.com", Password: "pw", Age: 30}, in)

	zeroAge := valid()
	zeroAge.Age = ptr(0)
	_, err = zeroAge.Validate()
	assert.NoError(t, err)

	withDescription := valid()
	withDescription.Description = ptr(strings.Repeat("é", models.DescriptionMaxLen))
	in, err = withDescription.Validate()
	require.NoError(t, err)
	assert.Equal(t, *withDescription.Description, in.Description)

	cases := map[string]func(r *RegisterRequest){
		"missing login":    func(r *RegisterRequest) { r.Login = "  " },
		"missing email":    func(r *RegisterRequest) { r.Email = "" },
		"missing password": func(r *RegisterRequest) { r.Password = "" },
		"missing age":      func(r *RegisterRequest) { r.Age = nil },
		"negative age":     func(r *RegisterRequest) { r.Age = ptr(-1) },
		"age too large":    func(r *RegisterRequest) { r.Age = ptr(MaxAge + 1) },
		"bad email":        func(r *RegisterRequest) { r.Email = "not-an-email" },
		"display name":     func(r *RegisterRequest) { r.Email = "Alice <a@x.com>" },
		"long password":    func(r *RegisterRequest) { r.Password = strings.Repeat("p", 73) },
		"invalid utf8":     func(r *RegisterRequest) { r.Password = "\xff\xfe" },
		"long description": func(r *RegisterRequest) { r.Description = ptr(strings.Repeat("d", models.DescriptionMaxLen+1)) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := valid()
			mutate(&req)
			_, err := req.Validate()
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestUpdateUserRequest_Validate(t *testing.T) {
	patch, err := UpdateUserRequest{}.Validate()
	require.NoError(t, err)
	assert.True(t, patch.Empty())

	patch, err = UpdateUserRequest{Email: ptr(" b@x.com "), Age: ptr(41)}.Validate()
	require.NoError(t, err)
	require.NotNil(t, patch.Email)
	assert.Equal(t, "b@x.com", *patch.Email)
	assert.Equal(t, 41, *patch.Age)
	assert.Nil(t, patch.Password)
	assert.Nil(t, patch.Description)

	patch, err = UpdateUserRequest{Description: ptr("")}.Validate()
	require.NoError(t, err)
	require.NotNil(t, patch.Description)
	assert.Empty(t, *patch.Description)

	bad := []UpdateUserRequest{
		{Email: ptr("nope")},
		{Password: ptr("")},
		{Age: ptr(-3)},
		{Age: ptr(MaxAge + 1)},
		{Description: ptr(strings.Repeat("d", models.DescriptionMaxLen+1))},
	}
	for _, req := range bad {
		_, err := req.Validate()
		assert.ErrorIs(t, err, ErrValidation)
	}
}
