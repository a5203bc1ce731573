package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTextureCount(t *testing.T) {
	assert.NoError(t, Validate(0, 16))
	assert.NoError(t, Validate(16, 16))
	assert.Error(t, Validate(17, 16))
}
