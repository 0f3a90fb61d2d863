package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/pagescore/internal/model"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".pagescore"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile loads the configuration file from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
// Callers should handle this error appropriately based on whether
// the config file path was explicitly specified by the user.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .pagescore in the current directory
// 3. Look for .pagescore in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// pagesDocument is the wrapped form of a page export: {"pages": [...]}.
type pagesDocument struct {
	Pages []model.PageRecord `json:"pages" yaml:"pages"`
}

// LoadPages reads a page export in YAML or JSON.
// The file holds either a list of pages or a document with a "pages" key.
func LoadPages(path string) ([]model.PageRecord, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided pages path is intentional
	if err != nil {
		return nil, fmt.Errorf("read pages file: %w", err)
	}

	var pages []model.PageRecord
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		pages, err = decodeJSONPages(data)
	case ".yaml", ".yml":
		pages, err = decodeYAMLPages(data)
	default:
		return nil, ErrUnsupportedPagesFormat
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return pages, nil
}

func decodeJSONPages(data []byte) ([]model.PageRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var pages []model.PageRecord
		if err := json.Unmarshal(trimmed, &pages); err != nil {
			return nil, err
		}
		return pages, nil
	}
	var doc pagesDocument
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return doc.Pages, nil
}

func decodeYAMLPages(data []byte) ([]model.PageRecord, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		var pages []model.PageRecord
		if err := node.Content[0].Decode(&pages); err != nil {
			return nil, err
		}
		return pages, nil
	}
	var doc pagesDocument
	if err := node.Content[0].Decode(&doc); err != nil {
		return nil, err
	}
	return doc.Pages, nil
}
