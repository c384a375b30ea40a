package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		info BuildInfo
		want string
	}{
		{"development", BuildInfo{Version: "dev", BuildTime: "unknown"}, "dev (development build)"},
		{"unparseable time", BuildInfo{Version: "v1.2.0", BuildTime: "yesterday"}, "v1.2.0 (built yesterday)"},
		{"release", BuildInfo{Version: "v1.2.0", BuildTime: "2026-03-01T09:30:00Z", GitCommit: "0123456789abcdef"}, "v1.2.0 (built 2026-03-01 09:30:00 UTC, commit 01234567)"},
		{"short commit", BuildInfo{Version: "v1.2.0", BuildTime: "2026-03-01T09:30:00Z", GitCommit: "abc"}, "v1.2.0 (built 2026-03-01 09:30:00 UTC, commit abc)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, format(tt.info))
		})
	}
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}
