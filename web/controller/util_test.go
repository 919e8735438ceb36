package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeNext(t *testing.T) {
	assert.True(t, safeNext("/"))
	assert.True(t, safeNext("/edit_comment/5/"))
	assert.False(t, safeNext(""))
	assert.False(t, safeNext("//evil.example/"))
	assert.False(t, safeNext("/\\evil.example/"))
	assert.False(t, safeNext("https://evil.example/"))
}
