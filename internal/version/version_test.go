package version_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Norgate-AV/winmon/internal/version"
)

func TestGetVersion(t *testing.T) {
	t.Parallel()

	v := version.GetVersion()
	assert.NotEmpty(t, v, "Version should not be empty")

	if v != "dev" {
		assert.Regexp(t, `^v?\d+\.\d+\.\d+`, v, "Version should match semver pattern")
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	info := version.Get()
	assert.Equal(t, version.GetVersion(), info.Version)
	assert.NotEmpty(t, info.Commit)
	assert.NotEmpty(t, info.Date)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestInfoString(t *testing.T) {
	t.Parallel()

	s := version.Info{
		Version:   "v1.2.3",
		Commit:    "abc1234",
		Date:      "2026-01-02",
		GoVersion: "go1.25.4",
		Platform:  "windows/amd64",
	}.String()

	assert.Equal(t, "v1.2.3 (commit: abc1234, built: 2026-01-02, go1.25.4 windows/amd64)", s)
}
