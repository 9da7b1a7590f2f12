package config

import (
	"errors"
	"fmt"
	"os"
)

// exampleConfig is written by config-init. It passes ValidateFile once
// CSRF_SECRET is exported.
const exampleConfig = `{
  "version": "v0.0.1-DEV_EDITION",
  "server": {
    "addr": ":8080",
    "baseURL": "http://localhost:8080",
    "basePath": "/",
    "name": "Sign in with OpenID",
    "verifyURL": "http://localhost:8000/openid/verify",
    "hiddenFieldId": "openid_identifier",
    "csrfSecret": {"$env": "CSRF_SECRET"}
  },
  "picker": {
    "cookie_expires": 180,
    "img_path": "/static/images/",
    "locale": "en",
    "signin_text": "Sign-In",
    "image_title": "log in with {provider}"
  },
  "providers": {
    "watch": false
  }
}
`

// WriteExample writes a starter config to path, refusing to overwrite
func WriteExample(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("config file %s already exists", path)
		}
		return fmt.Errorf("creating config file: %w", err)
	}
	if _, err := f.WriteString(exampleConfig); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing config file: %w", err)
	}
	return f.Close()
}
