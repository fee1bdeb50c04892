package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReverseFieldInputKey(t *testing.T) {
	assert.Equal(t, "child_posts", reverseFieldInputKey("posts"))
}
