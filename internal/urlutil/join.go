// Package urlutil builds the picker's relative and absolute URLs.
package urlutil

import (
	"net/url"
	"path"
	"strings"
)

// JoinPath joins path segments onto base, keeping a trailing slash when the
// last segment has one. base may be absolute or a bare path like "/login/".
func JoinPath(base string, paths ...string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	u.Path = path.Join(append([]string{u.Path}, paths...)...)
	if len(paths) > 0 && strings.HasSuffix(paths[len(paths)-1], "/") && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String(), nil
}

// SetQuery returns target with key set to value, preserving the other
// query parameters already present
func SetQuery(target, key, value string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
