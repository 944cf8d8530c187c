package config

import (
	"os"
	"path/filepath"
	"strings"

	pe "github.com/zhubert/parley/internal/errors"
)

// tokenPath returns the path to the stored bearer token
func tokenPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "token"), nil
}

// LoadToken returns the bearer token to send with every request.
// PARLEY_TOKEN (or a .env entry) wins over the stored token.
func LoadToken() (string, error) {
	if tok := strings.TrimSpace(os.Getenv(EnvToken)); tok != "" {
		return tok, nil
	}

	path, err := tokenPath()
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", pe.TokenMissing()
	}
	if err != nil {
		return "", pe.E(pe.Op("config.LoadToken"), pe.KindIO, err)
	}

	tok := strings.TrimSpace(string(data))
	if tok == "" {
		return "", pe.TokenMissing()
	}
	return tok, nil
}

// SaveToken stores the bearer token readable only by the current user.
func SaveToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return pe.E(pe.Op("config.SaveToken"), pe.KindInvalid, "token is empty")
	}

	dir, err := configDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return pe.E(pe.Op("config.SaveToken"), pe.KindIO, err)
	}

	path := filepath.Join(dir, "token")
	if err := os.WriteFile(path, []byte(token+"\n"), 0600); err != nil {
		return pe.E(pe.Op("config.SaveToken"), pe.KindIO, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0600); err != nil {
		return pe.E(pe.Op("config.SaveToken"), pe.KindIO, err)
	}
	return nil
}

// HasStoredToken reports whether a token file exists, ignoring PARLEY_TOKEN.
func HasStoredToken() bool {
	path, err := tokenPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// ClearToken removes the stored token. Reports whether one was present.
func ClearToken() (bool, error) {
	path, err := tokenPath()
	if err != nil {
		return false, err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, pe.E(pe.Op("config.ClearToken"), pe.KindIO, err)
	}
	return true, nil
}
