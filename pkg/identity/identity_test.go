package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/COSC-499-W2025/capstone-project-team-12-sub000/pkg/identity"
)

func TestCanonicalize(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Jane.Doe@Example.com":              "jane.doe",
		"jane.doe+ci@example.com":           "jane.doe",
		"  JANE@x.org ":                     "jane",
		"no-at-sign":                        "no-at-sign",
		"":                                  "",
		"123+jane@users.noreply.github.com": "123",
	}

	for in, want := range tests {
		assert.Equal(t, want, identity.Canonicalize(in), in)
	}
}

func TestNoreplyUsername(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "jane", identity.NoreplyUsername("12345+Jane@users.noreply.github.com"))
	assert.Equal(t, "jane", identity.NoreplyUsername("jane@users.noreply.github.com"))
	assert.Empty(t, identity.NoreplyUsername("jane@example.com"))
}

func TestMatcher(t *testing.T) {
	t.Parallel()

	m := identity.NewMatcher([]string{"Jane@example.com"}, false)

	assert.False(t, m.Empty())
	assert.True(t, m.Matches("jane@example.com"))
	assert.True(t, m.Matches("jane+work@company.io"), "local part decides")
	assert.False(t, m.Matches("john@example.com"))
	assert.False(t, m.Matches("12345+jane@users.noreply.github.com"))
	assert.False(t, m.Matches(""))
}

func TestMatcher_Noreply(t *testing.T) {
	t.Parallel()

	m := identity.NewMatcher([]string{"jane@example.com"}, true)

	assert.True(t, m.Matches("12345+jane@users.noreply.github.com"))
	assert.True(t, m.Matches("jane@users.noreply.github.com"))
	assert.True(t, m.Matches("jane@example.com"))
}

func TestMatcher_Empty(t *testing.T) {
	t.Parallel()

	m := identity.NewMatcher(nil, false)

	assert.True(t, m.Empty())
	assert.False(t, m.Matches("anyone@example.com"))
}
