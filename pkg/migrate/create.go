package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

const migrationTemplate = `%s
-- +goose StatementBegin
-- %s
-- +goose StatementEnd

%s
-- +goose StatementBegin
-- rollback %s
-- +goose StatementEnd
`

// CreateSQLMigration writes an empty goose migration named
// <dir>/<YYYYMMDDHHMMSS>_<name>.sql and returns its path.
func CreateSQLMigration(dir string, name string) (string, error) {
	return createSQLMigration(dir, name, time.Now().UTC())
}

func createSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	slug := sanitizeName(name)
	if slug == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}

	filename := fmt.Sprintf("%s_%s.sql", now.Format(versionLayout), slug)
	if !sqlFileRe.MatchString(filename) {
		return "", fmt.Errorf("generated filename %q is not a valid migration name", filename)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}
	fullpath := filepath.Join(dir, filename)
	if _, err := os.Stat(fullpath); err == nil {
		return "", fmt.Errorf("migration already exists: %s", fullpath)
	}

	body := fmt.Sprintf(migrationTemplate, gooseUp, slug, gooseDown, slug)
	if err := os.WriteFile(fullpath, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

func sanitizeName(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "_")
	slug = nameSanitizeRe.ReplaceAllString(slug, "_")
	return strings.Trim(slug, "_")
}
