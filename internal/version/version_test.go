package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrent(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })
	Version = "1.2.3"

	info := Current()
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, GitSHA, info.GitSHA)
	assert.Equal(t, "canine 1.2.3 ("+GitSHA+", built "+BuildTime+")", info.String())
}
