// Package identity canonicalizes commit author emails so a user can be
// recognized across the addresses they commit with.
package identity

import (
	"regexp"
	"strings"
)

// githubNoreplyRe matches username@users.noreply.github.com and the
// 12345+username form, capturing the username.
var githubNoreplyRe = regexp.MustCompile(`^(?:\d+\+)?([^@]+)@users\.noreply\.github\.com$`)

// Canonicalize returns the lower-cased email local part with any "+tag"
// suffix removed: "Jane.Doe+ci@Example.com" becomes "jane.doe".
func Canonicalize(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	local, _, _ := strings.Cut(email, "@")
	local, _, _ = strings.Cut(local, "+")

	return local
}

// NoreplyUsername returns the GitHub username encoded in a noreply address,
// or "".
func NoreplyUsername(email string) string {
	m := githubNoreplyRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(email)))
	if m == nil {
		return ""
	}

	return m[1]
}

// Matcher decides whether a commit author is the target user.
type Matcher struct {
	keys         map[string]struct{}
	matchNoreply bool
}

// NewMatcher builds a matcher for the given user emails. When matchNoreply
// is set, GitHub noreply addresses are reduced to their username before
// comparison.
func NewMatcher(emails []string, matchNoreply bool) *Matcher {
	m := &Matcher{keys: map[string]struct{}{}, matchNoreply: matchNoreply}

	for _, e := range emails {
		if key := m.key(e); key != "" {
			m.keys[key] = struct{}{}
		}
	}

	return m
}

func (m *Matcher) key(email string) string {
	if m.matchNoreply {
		if user := NoreplyUsername(email); user != "" {
			return user
		}
	}

	return Canonicalize(email)
}

// Empty reports whether the matcher has no target identities.
func (m *Matcher) Empty() bool {
	return len(m.keys) == 0
}

// Matches reports whether email belongs to the target user.
func (m *Matcher) Matches(email string) bool {
	key := m.key(email)
	if key == "" {
		return false
	}

	_, ok := m.keys[key]

	return ok
}
