package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	t.Run("Should report injected build variables", func(t *testing.T) {
		prevVersion, prevCommit := Version, CommitHash
		t.Cleanup(func() { Version, CommitHash = prevVersion, prevCommit })
		Version, CommitHash = "v1.2.3", "abc123"

		info := Get()
		assert.Equal(t, "v1.2.3", info.Version)
		assert.Equal(t, "abc123", info.CommitHash)
		assert.Equal(t, runtime.Version(), info.GoVersion)
		assert.Contains(t, info.String(), "normorder v1.2.3 (commit abc123")
	})
}
