package permissions

import (
	"testing"

	"github.com/lekhoni/lekhoni/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	for _, s := range []string{
		`read("any")`,
		`write("user:u1")`,
		`read("user:abc-123")`,
	} {
		entry, err := Parse(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, entry.String())
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, s := range []string{
		"",
		"read",
		`admin("any")`,
		`read("team:editors")`,
		`read("user:")`,
		`read(any)`,
	} {
		_, err := Parse(s)
		assert.Error(t, err, s)
	}
}

func TestInitialPublic(t *testing.T) {
	entries := Initial("u1", true)
	assert.ElementsMatch(t, []string{
		`read("user:u1")`,
		`write("user:u1")`,
		`read("any")`,
	}, entries)
}

func TestInitialPrivate(t *testing.T) {
	entries := Initial("u1", false)
	assert.ElementsMatch(t, []string{
		`read("user:u1")`,
		`write("user:u1")`,
	}, entries)
}

func TestPatchPublicByOwnerIsIdempotent(t *testing.T) {
	entries := Patch(nil, "u1", "u1", true)

	countAnyRead := func(entries []string) int {
		n := 0
		for _, e := range entries {
			if e == `read("any")` {
				n++
			}
		}
		return n
	}

	assert.Equal(t, 1, countAnyRead(entries))
	assert.Contains(t, entries, `read("user:u1")`)
	assert.Contains(t, entries, `write("user:u1")`)

	// repeated application must not grow the list
	again := Patch(entries, "u1", "u1", true)
	assert.ElementsMatch(t, entries, again)
	assert.Equal(t, 1, countAnyRead(again))
}

func TestPatchPrivateRemovesEveryAnyRead(t *testing.T) {
	current := []string{`read("any")`, `read("any")`, `read("user:u1")`, `write("user:u1")`}
	entries := Patch(current, "u1", "u1", false)
	assert.NotContains(t, entries, `read("any")`)
	assert.Contains(t, entries, `read("user:u1")`)
	assert.Contains(t, entries, `write("user:u1")`)
}

func TestPatchKeepsActingUserAccess(t *testing.T) {
	// an admin editing someone else's post keeps access for both
	entries := Patch([]string{`read("user:owner")`, `write("user:owner")`}, "owner", "admin", true)
	assert.Contains(t, entries, `read("user:owner")`)
	assert.Contains(t, entries, `write("user:owner")`)
	assert.Contains(t, entries, `read("user:admin")`)
	assert.Contains(t, entries, `write("user:admin")`)
}

func TestPatchPreservesOpaqueEntries(t *testing.T) {
	entries := Patch([]string{`delete("team:legacy")`}, "u1", "u1", false)
	assert.Contains(t, entries, `delete("team:legacy")`)
}

func TestAllowsRead(t *testing.T) {
	public := []string{`read("any")`}
	private := []string{`read("user:u1")`, `write("user:u1")`}

	assert.True(t, AllowsRead(public, ""))
	assert.True(t, AllowsRead(public, models.UserID("u2")))
	assert.False(t, AllowsRead(private, ""))
	assert.False(t, AllowsRead(private, models.UserID("u2")))
	assert.True(t, AllowsRead(private, models.UserID("u1")))
}
