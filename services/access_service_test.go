package services

import (
	"testing"

	"github.com/akinalp/sohbet/pkg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessService_ValidCode(t *testing.T) {
	svc := NewAccessService("gizli-kod")

	token, err := svc.ValidateCode("gizli-kod")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Her doğrulama taze bir token üretir
	token2, err := svc.ValidateCode("gizli-kod")
	require.NoError(t, err)
	assert.NotEqual(t, token, token2)
}

func TestAccessService_WrongCode(t *testing.T) {
	svc := NewAccessService("gizli-kod")

	_, err := svc.ValidateCode("yanlis")
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)

	// Boş kod da sadece yanlış bir koddur
	_, err = svc.ValidateCode("")
	assert.ErrorIs(t, err, pkg.ErrUnauthorized)
}

func TestAccessService_MissingSecret(t *testing.T) {
	// Secret tanımsızsa istek anında generic server error döner —
	// doğru kod bile kabul edilmez
	svc := NewAccessService("")

	_, err := svc.ValidateCode("herhangi")
	assert.ErrorIs(t, err, pkg.ErrInternal)
	assert.NotErrorIs(t, err, pkg.ErrUnauthorized)
}
