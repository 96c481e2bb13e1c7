package ui

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTTY_WithBuffer_ReturnsFalse(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
}

func TestIsTTY_WithNil_ReturnsFalse(t *testing.T) {
	assert.False(t, IsTTY(nil))
}

func TestIsTTY_WithRegularFile_ReturnsFalse(t *testing.T) {
	// Given: a regular file
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	// Then: it is not a terminal
	assert.False(t, IsTTY(f))
}

func TestDetectNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.True(t, DetectNoColor())
}

func TestDetectCI(t *testing.T) {
	t.Setenv("GITHUB_ACTIONS", "true")
	assert.True(t, DetectCI())
}

func TestColorEnabled_NonTTY(t *testing.T) {
	buf := &bytes.Buffer{}

	assert.False(t, ColorEnabled(buf, false))
	assert.Equal(t, "plain", StylesFor(buf, false).Header.Render("plain"))
}
