package core

import (
	"fmt"
	"strings"
)

func NormalizePath(path string) string {
	path = strings.TrimSpace(path)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if path != "/" && strings.HasSuffix(path, "/") {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

func ValidateRoutePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("path must start with /")
	}

	if strings.Contains(path, "?") {
		return fmt.Errorf("path cannot contain query string")
	}

	if strings.Contains(path, "#") {
		return fmt.Errorf("path cannot contain fragment")
	}

	if strings.Contains(path, "..") {
		return fmt.Errorf("path cannot contain parent directory references")
	}

	if strings.Contains(path, "*") {
		return fmt.Errorf("path cannot contain wildcards")
	}

	return nil
}
