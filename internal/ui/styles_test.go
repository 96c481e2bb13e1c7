package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoColorStyles_RenderPlainText(t *testing.T) {
	styles := NoColorStyles()

	for _, s := range []string{
		styles.Header.Render("x"), styles.Kind.Render("x"),
		styles.Selected.Render("x"), styles.Warning.Render("x"),
	} {
		assert.Equal(t, "x", s)
	}
}

func TestDefaultStyles_KeepText(t *testing.T) {
	// Given: default styles
	styles := DefaultStyles()

	// When: rendering tree markers
	active := styles.Active.Render("▾")
	kind := styles.Kind.Render("[module]")

	// Then: the text survives styling
	assert.Contains(t, active, "▾")
	assert.Contains(t, kind, "[module]")
}

func TestGetStyles(t *testing.T) {
	assert.Equal(t, "test", GetStyles(true).Success.Render("test"))
	assert.Contains(t, GetStyles(false).Success.Render("test"), "test")
}
