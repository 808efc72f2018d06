package app

import (
	"fmt"
	"strings"

	"github.com/dkeye/Relay/internal/domain"
	"golang.org/x/mod/semver"
)

// ParseVersion accepts MAJOR.MINOR.PATCH with an optional leading "v" and
// optional pre-release or build suffix. Shorthands like "1.2" are rejected.
func ParseVersion(raw string) (string, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", domain.ErrVersionInvalid
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("%w: %q", domain.ErrVersionInvalid, raw)
	}
	core, _, _ := strings.Cut(v, "+")
	core, _, _ = strings.Cut(core, "-")
	if strings.Count(core, ".") != 2 {
		return "", fmt.Errorf("%w: %q", domain.ErrVersionInvalid, raw)
	}
	return v, nil
}

// CheckVersion reports whether client is compatible with server: same major
// and minor, any patch.
func CheckVersion(client, server string) error {
	c, err := ParseVersion(client)
	if err != nil {
		return err
	}
	s, err := ParseVersion(server)
	if err != nil {
		return fmt.Errorf("server version: %w", err)
	}
	if semver.MajorMinor(c) != semver.MajorMinor(s) {
		return fmt.Errorf("%w: client %s, server %s", domain.ErrVersionMismatch, c, s)
	}
	return nil
}
