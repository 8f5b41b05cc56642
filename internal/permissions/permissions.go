// Package permissions models document access-control entries as tagged
// subject+action pairs. The store persists them in their serialized string
// form (`read("any")`, `write("user:<id>")`), so entries round-trip through
// Parse and String at the storage boundary; strings that fail to parse are
// carried along untouched.
package permissions

import (
	"fmt"
	"strings"

	"github.com/lekhoni/lekhoni/internal/models"
)

type Action string

const (
	Read  Action = "read"
	Write Action = "write"
)

type SubjectKind string

const (
	// SubjectAny grants the action to everyone, signed in or not.
	SubjectAny  SubjectKind = "any"
	SubjectUser SubjectKind = "user"
)

type Subject struct {
	Kind SubjectKind
	User models.UserID
}

func Any() Subject {
	return Subject{Kind: SubjectAny}
}

func User(id models.UserID) Subject {
	return Subject{Kind: SubjectUser, User: id}
}

// Entry is one access-control entry on a document.
type Entry struct {
	Action  Action
	Subject Subject
}

func (e Entry) String() string {
	switch e.Subject.Kind {
	case SubjectAny:
		return fmt.Sprintf(`%s("any")`, e.Action)
	default:
		return fmt.Sprintf(`%s("user:%s")`, e.Action, e.Subject.User)
	}
}

// Parse turns a serialized entry back into its structured form.
func Parse(s string) (Entry, error) {
	open := strings.Index(s, `("`)
	if open < 0 || !strings.HasSuffix(s, `")`) {
		return Entry{}, fmt.Errorf("malformed permission entry %q", s)
	}

	action := Action(s[:open])
	if action != Read && action != Write {
		return Entry{}, fmt.Errorf("unknown permission action %q", s[:open])
	}

	role := s[open+2 : len(s)-2]
	if role == "any" {
		return Entry{Action: action, Subject: Any()}, nil
	}
	if id, ok := strings.CutPrefix(role, "user:"); ok && id != "" {
		return Entry{Action: action, Subject: User(models.UserID(id))}, nil
	}
	return Entry{}, fmt.Errorf("unknown permission role %q", role)
}

// Initial computes the entries for a freshly created document: owner read and
// write, plus public read when the post is active.
func Initial(owner models.UserID, public bool) []string {
	entries := []Entry{
		{Action: Read, Subject: User(owner)},
		{Action: Write, Subject: User(owner)},
	}
	if public {
		entries = append(entries, Entry{Action: Read, Subject: Any()})
	}
	return serialize(entries, nil)
}

// Patch recomputes a document's entries for a target visibility. Entries that
// do not parse are preserved verbatim. The result is stable under repeated
// application:
//   - public adds a single any-read entry, non-public removes every any-read,
//   - the owner always keeps read and write,
//   - the acting user (an admin editing someone else's post) keeps read and
//     write as well.
func Patch(current []string, owner models.UserID, actor models.UserID, public bool) []string {
	entries := make([]Entry, 0, len(current))
	opaque := make([]string, 0)
	for _, s := range current {
		entry, err := Parse(s)
		if err != nil {
			opaque = append(opaque, s)
			continue
		}
		entries = append(entries, entry)
	}

	anyRead := Entry{Action: Read, Subject: Any()}
	if public {
		entries = ensure(entries, anyRead)
	} else {
		entries = remove(entries, anyRead)
	}

	if owner != "" {
		entries = ensure(entries, Entry{Action: Read, Subject: User(owner)})
		entries = ensure(entries, Entry{Action: Write, Subject: User(owner)})
	}
	if actor != "" {
		entries = ensure(entries, Entry{Action: Read, Subject: User(actor)})
		entries = ensure(entries, Entry{Action: Write, Subject: User(actor)})
	}

	return serialize(entries, opaque)
}

// AllowsRead reports whether any entry grants read access to the given user.
// An empty user id matches only the any-read entry.
func AllowsRead(current []string, user models.UserID) bool {
	for _, s := range current {
		entry, err := Parse(s)
		if err != nil || entry.Action != Read {
			continue
		}
		if entry.Subject.Kind == SubjectAny {
			return true
		}
		if user != "" && entry.Subject.User == user {
			return true
		}
	}
	return false
}

func ensure(entries []Entry, entry Entry) []Entry {
	for _, e := range entries {
		if e == entry {
			return entries
		}
	}
	return append(entries, entry)
}

func remove(entries []Entry, entry Entry) []Entry {
	kept := entries[:0]
	for _, e := range entries {
		if e != entry {
			kept = append(kept, e)
		}
	}
	return kept
}

func serialize(entries []Entry, opaque []string) []string {
	result := make([]string, 0, len(entries)+len(opaque))
	seen := make(map[Entry]bool)
	for _, e := range entries {
		if seen[e] {
			continue
		}
		seen[e] = true
		result = append(result, e.String())
	}
	return append(result, opaque...)
}
