package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFull(t *testing.T) {
	v := Full()
	assert.True(t, strings.HasPrefix(v, "stumpcast/"))

	suffix := strings.TrimPrefix(v, "stumpcast/")
	assert.NotEmpty(t, suffix)
	// Test binaries carry no VCS revision.
	if suffix != "dev" {
		assert.Len(t, suffix, 8)
	}
}
