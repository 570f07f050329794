package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 0))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 100, Percent(5, 5))
}

func TestParseLimit(t *testing.T) {
	assert.Equal(t, 10, ParseLimit("", 10, 50))
	assert.Equal(t, 10, ParseLimit("abc", 10, 50))
	assert.Equal(t, 10, ParseLimit("-3", 10, 50))
	assert.Equal(t, 25, ParseLimit("25", 10, 50))
	assert.Equal(t, 50, ParseLimit("500", 10, 50))
	assert.Equal(t, 500, ParseLimit("500", 10, 0))
}

func TestMustParseUint(t *testing.T) {
	assert.Equal(t, uint(42), MustParseUint("42"))
	assert.Equal(t, uint(0), MustParseUint("x"))
}

func TestHasAllowedExtension(t *testing.T) {
	assert.True(t, HasAllowedExtension("avatar.PNG", AllowedImageExtensions))
	assert.False(t, HasAllowedExtension("avatar.svg", AllowedImageExtensions))
	assert.False(t, HasAllowedExtension("avatar", AllowedImageExtensions))
}

func TestDataURL(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,AQI=", DataURL("image/png", []byte{1, 2}))
}
