package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePackageName(t *testing.T) {
	valid := []string{
		"yay",
		"tealdeer-bin",
		"lib32-glibc",
		"python-aiohttp",
		"ttf-ms-fonts+extras",
		"zoom@latest",
		"a",
	}
	for _, name := range valid {
		assert.NoError(t, ValidatePackageName(name), "expected %q to be accepted", name)
	}

	invalid := []string{
		"",
		"-starts-with-dash",
		".hidden",
		"../evil",
		"has space",
		"semi;colon",
		"dollar$sign",
		"new\nline",
		"slash/name",
	}
	for _, name := range invalid {
		assert.Error(t, ValidatePackageName(name), "expected %q to be rejected", name)
	}
}
