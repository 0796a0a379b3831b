package notifier

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileTokenStore keeps the refresh token in a JSON file. An environment
// override takes precedence on load, which is how CI injects the secret
// without a checked-in token file. Saves also mirror the rotated token to
// rotationPath when set, so CI can update its secret after a run.
type FileTokenStore struct {
	path         string
	rotationPath string
	envOverride  string
}

// NewFileTokenStore returns new FileTokenStore backed by path.
func NewFileTokenStore(path, rotationPath, envOverride string) *FileTokenStore {
	return &FileTokenStore{
		path:         path,
		rotationPath: rotationPath,
		envOverride:  envOverride,
	}
}

// Load returns the refresh token: the override when present, else the file's.
func (s *FileTokenStore) Load() (string, error) {
	if token := strings.TrimSpace(s.envOverride); token != "" {
		return token, nil
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("can't read token file: %w", err)
	}

	var stored struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(raw, &stored); err != nil {
		return "", fmt.Errorf("can't decode token file: %w", err)
	}

	token := strings.TrimSpace(stored.RefreshToken)
	if token == "" {
		return "", fmt.Errorf("token file %s holds no refresh token", s.path)
	}

	return token, nil
}

// Save atomically rewrites the token file with the rotated token and mirrors
// it to the rotation path when configured.
func (s *FileTokenStore) Save(refreshToken string) error {
	payload, err := json.MarshalIndent(map[string]string{"refresh_token": refreshToken}, "", "  ")
	if err != nil {
		return fmt.Errorf("can't encode token file: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("can't create token directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-token-*")
	if err != nil {
		return fmt.Errorf("can't create temp token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("can't write temp token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("can't close temp token file: %w", err)
	}

	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("can't restrict token file mode: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("can't replace token file: %w", err)
	}

	if s.rotationPath != "" {
		if err := os.WriteFile(s.rotationPath, []byte(refreshToken), 0o600); err != nil {
			return fmt.Errorf("can't write rotation file: %w", err)
		}
	}

	return nil
}
