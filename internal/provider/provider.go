package provider

import (
	"errors"
	"fmt"
	"strings"
)

// UsernamePlaceholder is substituted with the user's input on submit
const UsernamePlaceholder = "{username}"

// GenericName is the display name of the catch-all entry whose input box
// doubles as the identifier field
const GenericName = "OpenID"

// actionScheme marks provider URLs that name a client-side action
const actionScheme = "javascript:"

var (
	ErrEmptyID     = errors.New("provider id is empty")
	ErrDuplicateID = errors.New("duplicate provider id")
)

// Kind distinguishes navigable identifier templates from actions
type Kind string

const (
	KindURL    Kind = "url"
	KindAction Kind = "action"
)

// Size is the icon size class
type Size string

const (
	SizeLarge Size = "large"
	SizeSmall Size = "small"
)

// Action names a callback registered with the picker
type Action struct {
	Name string
	Arg  string
}

// Entry describes one identity provider
type Entry struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Image string `yaml:"image,omitempty"`
	URL   string `yaml:"url,omitempty"`
	Label string `yaml:"label,omitempty"`

	kind   Kind
	action *Action
}

// Kind reports whether the entry carries a URL template or an action
func (e *Entry) Kind() Kind {
	if e.kind == "" {
		e.classify()
	}
	return e.kind
}

// Action returns the parsed action, nil for URL providers
func (e *Entry) Action() *Action {
	if e.Kind() != KindAction {
		return nil
	}
	return e.action
}

// BuiltIn reports whether the icon comes from the shared sprite sheet
func (e *Entry) BuiltIn() bool {
	return e.Image == ""
}

// NeedsInput reports whether the user must type something before submit
func (e *Entry) NeedsInput() bool {
	return e.Label != ""
}

// IsGeneric reports whether this is the catch-all OpenID entry
func (e *Entry) IsGeneric() bool {
	return e.Name == GenericName
}

func (e *Entry) classify() {
	rest, ok := strings.CutPrefix(e.URL, actionScheme)
	if !ok {
		e.kind = KindURL
		return
	}
	e.kind = KindAction
	e.action = ParseAction(rest)
}

// ParseAction reads "name", "name()" or "name('arg')" into an Action.
// Anything more elaborate is kept verbatim as the name.
func ParseAction(s string) *Action {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ";"))
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return &Action{Name: s}
	}
	name := strings.TrimSpace(s[:open])
	arg := strings.TrimSpace(s[open+1 : len(s)-1])
	if len(arg) >= 2 && (arg[0] == '\'' || arg[0] == '"') && arg[len(arg)-1] == arg[0] {
		arg = arg[1 : len(arg)-1]
	}
	return &Action{Name: name, Arg: arg}
}

// Table is an ordered list of entries rendered at one size
type Table []Entry

// Tables are the two disjoint provider lists
type Tables struct {
	Large Table `yaml:"large"`
	Small Table `yaml:"small"`
}

// Active is the merged lookup of all providers by id
type Active map[string]*Entry

// Merge combines both tables; on an id collision the small entry wins
func (t Tables) Merge() Active {
	active := make(Active, len(t.Large)+len(t.Small))
	for _, table := range []Table{t.Large, t.Small} {
		for i := range table {
			e := table[i]
			e.classify()
			active[e.ID] = &e
		}
	}
	return active
}

// Lookup returns the entry for id
func (a Active) Lookup(id string) (*Entry, bool) {
	e, ok := a[id]
	return e, ok
}

// Validate checks ids are present, unique per table and disjoint across tables
func (t Tables) Validate() error {
	seen := make(map[string]Size)
	check := func(size Size, table Table) error {
		local := make(map[string]bool, len(table))
		for i, e := range table {
			if strings.TrimSpace(e.ID) == "" {
				return fmt.Errorf("%s[%d]: %w", size, i, ErrEmptyID)
			}
			if local[e.ID] {
				return fmt.Errorf("%s[%d] %q: %w", size, i, e.ID, ErrDuplicateID)
			}
			local[e.ID] = true
			if other, ok := seen[e.ID]; ok {
				return fmt.Errorf("%s[%d] %q also listed in %s: %w", size, i, e.ID, other, ErrDuplicateID)
			}
			seen[e.ID] = size
		}
		return nil
	}
	if err := check(SizeLarge, t.Large); err != nil {
		return err
	}
	return check(SizeSmall, t.Small)
}

// Warnings lists suspicious but accepted entries
func (t Tables) Warnings() []string {
	var warnings []string
	for _, table := range []Table{t.Large, t.Small} {
		for _, e := range table {
			if e.Name == "" {
				warnings = append(warnings, fmt.Sprintf("provider %q has no display name", e.ID))
			}
			if strings.Contains(e.URL, UsernamePlaceholder) && e.Label == "" {
				warnings = append(warnings, fmt.Sprintf("provider %q uses %s but has no label, the username will always be empty", e.ID, UsernamePlaceholder))
			}
		}
	}
	return warnings
}

// Len counts entries across both tables
func (t Tables) Len() int {
	return len(t.Large) + len(t.Small)
}
