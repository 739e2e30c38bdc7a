package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash_Short(t *testing.T) {
	h := NewHash([]byte("weights"))
	assert.Len(t, h.String(), 64)
	assert.Equal(t, h.String()[:12], h.Short())
	assert.Equal(t, "abc", Hash("abc").Short())
}
