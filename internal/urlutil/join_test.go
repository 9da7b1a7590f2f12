package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinPath(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		paths []string
		want  string
	}{
		{name: "root base path", base: "/", paths: []string{"select"}, want: "/select"},
		{name: "nested base path", base: "/login/", paths: []string{"submit"}, want: "/login/submit"},
		{name: "asset path", base: "/login/", paths: []string{"assets", "openid.css"}, want: "/login/assets/openid.css"},
		{name: "trailing slash preserved", base: "/login", paths: []string{"static/"}, want: "/login/static/"},
		{name: "absolute base", base: "https://example.com/auth", paths: []string{"select"}, want: "https://example.com/auth/select"},
		{name: "no segments", base: "https://example.com", paths: nil, want: "https://example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JoinPath(tt.base, tt.paths...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJoinPath_InvalidBase(t *testing.T) {
	_, err := JoinPath("://bad", "x")
	assert.Error(t, err)
}

func TestSetQuery(t *testing.T) {
	got, err := SetQuery("https://rp.example.com/verify", "openid_identifier", "https://me.yahoo.com/")
	require.NoError(t, err)
	assert.Equal(t, "https://rp.example.com/verify?openid_identifier=https%3A%2F%2Fme.yahoo.com%2F", got)

	got, err = SetQuery("/verify?next=%2Fhome&openid_identifier=old", "openid_identifier", "new")
	require.NoError(t, err)
	assert.Equal(t, "/verify?next=%2Fhome&openid_identifier=new", got)
}
