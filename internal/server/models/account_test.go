package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccount_HasPassword(t *testing.T) {
	empty := ""
	hash := "$2a$10$abc"

	assert.False(t, (&Account{}).HasPassword())
	assert.False(t, (&Account{PasswordHash: &empty}).HasPassword())
	assert.True(t, (&Account{PasswordHash: &hash}).HasPassword())
}
