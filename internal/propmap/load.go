package propmap

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func EnsureLoaded(path string) (*Map, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("empty property map path")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("property map path %s is a directory", path)
	}
	return Load(path)
}
