package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
)

// configPath determines the directory holding stored credentials.
func configPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		if isValidDir(xdg) {
			return xdg, nil
		}
	}

	if runtime.GOOS == "windows" {
		if path := tryWindowsPaths(); path != "" {
			return path, nil
		}
	}

	usr, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}

	configDir := filepath.Join(usr.HomeDir, ".config")
	if isValidDir(configDir) {
		return configDir, nil
	}

	return "", errors.New("no valid config path found")
}

// isValidDir checks if a given path is a valid directory.
func isValidDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// tryWindowsPaths attempts to find the appropriate configuration path on Windows.
func tryWindowsPaths() string {
	if path := os.Getenv("LOCALAPPDATA"); isValidDir(path) {
		return path
	}

	if home := os.Getenv("HOME"); home != "" {
		if path := filepath.Join(home, "AppData", "Local"); isValidDir(path) {
			return path
		}
	}

	return ""
}

// readJSONFile reads a JSON file and unmarshals it into the provided variable.
func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, v)
}

// credentials is the on-disk shape of stored API credentials.
type credentials struct {
	APIKey string `json:"api_key"`
}

// getAPIKey retrieves the API key from the environment or from the stored
// credentials file.
func getAPIKey() (string, error) {
	if key := os.Getenv("PLUME_API_KEY"); key != "" {
		return key, nil
	}

	configDir, err := configPath()
	if err != nil {
		return "", fmt.Errorf("failed to get config path: %w", err)
	}

	var creds credentials
	path := filepath.Join(configDir, "plume", "credentials.json")
	if err := readJSONFile(path, &creds); err != nil {
		return "", fmt.Errorf("no API key: set PLUME_API_KEY or store one in %s", path)
	}
	if creds.APIKey == "" {
		return "", fmt.Errorf("empty api_key in %s", path)
	}

	return creds.APIKey, nil
}
