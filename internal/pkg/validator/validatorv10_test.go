package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidKeyword(t *testing.T) {
	for _, name := range []string{"web", "Web", "1password", "c++", "no-std", "foo_bar", "x"} {
		assert.True(t, ValidKeyword(name), "%q should be valid", name)
	}

	for _, name := range []string{"", "-leading-dash", "+plus-first", "_underscore-first", "has space", "ümlaut", "semi;colon"} {
		assert.False(t, ValidKeyword(name), "%q should be invalid", name)
	}
}

func TestValidateStruct(t *testing.T) {
	v, err := NewV10Validator()
	require.NoError(t, err)

	type payload struct {
		Name    string `validate:"required,cratename"`
		Keyword string `validate:"omitempty,keyword"`
	}

	require.NoError(t, v.Validate(payload{Name: "serde", Keyword: "json"}))

	err = v.Validate(payload{Name: "-bad-", Keyword: ";"})
	require.Error(t, err)

	var vErr V10ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Values(), "name")
	assert.Contains(t, vErr.Values(), "keyword")
}
