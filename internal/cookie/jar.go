package cookie

import (
	"strings"
	"time"
)

// Jar is an in-memory cookie store that behaves like a browser's
// document.cookie for a single origin. Expired cookies disappear on read.
type Jar struct {
	cookies []Cookie
	now     func() time.Time
}

// NewJar creates an empty jar
func NewJar() *Jar {
	return &Jar{now: time.Now}
}

// NewJarAt creates an empty jar with a fixed clock
func NewJarAt(now func() time.Time) *Jar {
	return &Jar{now: now}
}

// Set replaces any cookie with the same name and path
func (j *Jar) Set(c Cookie) {
	for i, existing := range j.cookies {
		if existing.Name == c.Name && existing.Path == c.Path {
			j.cookies = append(j.cookies[:i], j.cookies[i+1:]...)
			break
		}
	}
	if !c.Expires.IsZero() && !c.Expires.After(j.now()) {
		return
	}
	j.cookies = append(j.cookies, c)
}

// Get reads the cookie string the way page script would
func (j *Jar) Get(name string) (string, bool) {
	return ReadValue(j.String(), name)
}

// String renders the unexpired cookies as "name=value; name=value"
func (j *Jar) String() string {
	live := j.live()
	parts := make([]string, 0, len(live))
	for _, c := range live {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

func (j *Jar) live() []Cookie {
	now := j.now()
	live := j.cookies[:0:0]
	for _, c := range j.cookies {
		if c.Expires.IsZero() || c.Expires.After(now) {
			live = append(live, c)
		}
	}
	return live
}

var _ Store = (*Jar)(nil)
