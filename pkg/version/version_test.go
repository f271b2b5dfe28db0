package version

import (
	"strings"
	"testing"
)

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	for _, want := range []string{"vaani version", Version, GitCommit} {
		if !strings.Contains(info, want) {
			t.Errorf("GetVersionInfo() = %q, want it to contain %q", info, want)
		}
	}
}
