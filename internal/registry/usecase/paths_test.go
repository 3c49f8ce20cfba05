package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCratePath(t *testing.T) {
	assert.Equal(t, "crates/serde/serde-1.0.0.crate", CratePath("serde", "1.0.0"))
}

func TestReadmePath(t *testing.T) {
	assert.Equal(t, "readmes/serde/serde-1.0.0.html", ReadmePath("serde", "1.0.0"))
}

func TestCrateLocation(t *testing.T) {
	assert.Empty(t, crateLocation("", "serde", "1.0.0"))
	assert.Equal(t,
		"https://cdn.example/crates/serde/serde-1.0.0.crate",
		crateLocation("cdn.example", "serde", "1.0.0"))
	assert.Equal(t,
		"https://cdn.example/crates/semver/semver-1.0.0%2Bmeta.crate",
		crateLocation("cdn.example", "semver", "1.0.0+meta"))
}
