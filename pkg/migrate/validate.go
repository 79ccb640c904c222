package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/multierr"
)

const (
	gooseUp   = "-- +goose Up"
	gooseDown = "-- +goose Down"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// ValidateDir checks every .sql file in dir and reports all problems at once:
// file naming, duplicate versions and the goose Up/Down annotations.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	var problems error
	versions := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			problems = multierr.Append(problems, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name))
			continue
		}
		if prev, ok := versions[m[1]]; ok {
			problems = multierr.Append(problems, fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name))
		}
		versions[m[1]] = name

		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			problems = multierr.Append(problems, fmt.Errorf("read file %q: %w", name, err))
			continue
		}
		problems = multierr.Append(problems, checkAnnotations(name, string(content)))
	}
	return problems
}

func checkAnnotations(name, content string) error {
	up := strings.Index(content, gooseUp)
	down := strings.Index(content, gooseDown)
	switch {
	case up < 0:
		return fmt.Errorf("migration %q missing %q", name, gooseUp)
	case down < 0:
		return fmt.Errorf("migration %q missing %q", name, gooseDown)
	case down < up:
		return fmt.Errorf("migration %q has %q before %q", name, gooseDown, gooseUp)
	}
	return nil
}
