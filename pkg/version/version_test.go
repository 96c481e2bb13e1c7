package version

import (
	"encoding/json"
	"regexp"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/navindex/pkg/navigator"
)

func TestVersion_FollowsSemverOrDev(t *testing.T) {
	// Given: the version package is imported

	// When: accessing Version

	// Then: it is "dev" or semver injected by ldflags
	if Version == "dev" {
		return
	}
	semverRegex := regexp.MustCompile(`^\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?$`)
	require.True(t, semverRegex.MatchString(Version), "Version should follow semver format, got: %s", Version)
}

func TestString_ReturnsFormattedString(t *testing.T) {
	str := String()

	assert.Contains(t, str, "navindex "+Version)
	assert.Contains(t, str, "commit:")
	assert.Contains(t, str, "go: "+runtime.Version())
	assert.Contains(t, str, "format: v1")
}

func TestShort_ReturnsVersionOnly(t *testing.T) {
	assert.Equal(t, Version, Short())
}

func TestGetInfo_CarriesFormatRange(t *testing.T) {
	// Given/When: structured info
	info := GetInfo()

	// Then: the artifact format range matches the codec
	assert.Equal(t, navigator.FormatVersion, info.FormatVersion)
	assert.Equal(t, navigator.MinSupportedVersion, info.FormatsReadMin)
	assert.Equal(t, navigator.MaxSupportedVersion, info.FormatsReadMax)
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Arch)
	assert.NotEmpty(t, info.Commit)
}

func TestGetInfo_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(GetInfo())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, k := range []string{"version", "commit", "date", "go_version", "os", "arch", "format_version"} {
		assert.Contains(t, raw, k)
	}
}

func TestCommit_PrefersLdflags(t *testing.T) {
	old := Commit
	t.Cleanup(func() { Commit = old })

	Commit = "abc1234"

	assert.Equal(t, "abc1234", GetInfo().Commit)
}
