package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Pair holds the paths of a newly created up/down migration pair.
type Pair struct {
	Version  string
	UpPath   string
	DownPath string
}

// Create writes an empty up/down migration pair named after the current
// timestamp so files sort in creation order.
func Create(migrationsDir, name string) (*Pair, error) {
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	version := time.Now().Format("20060102150405")
	base := fmt.Sprintf("%s_%s", version, slugify(name))

	p := &Pair{
		Version:  version,
		UpPath:   filepath.Join(migrationsDir, base+".up.sql"),
		DownPath: filepath.Join(migrationsDir, base+".down.sql"),
	}

	header := fmt.Sprintf("-- %s\n\n", name)
	if err := os.WriteFile(p.UpPath, []byte(header), 0o644); err != nil {
		return nil, fmt.Errorf("write up migration: %w", err)
	}
	if err := os.WriteFile(p.DownPath, []byte(header), 0o644); err != nil {
		_ = os.Remove(p.UpPath)
		return nil, fmt.Errorf("write down migration: %w", err)
	}
	return p, nil
}

// List returns the base names of the migration pairs in a directory.
func List(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok {
			names = append(names, base)
		}
	}
	return names, nil
}

// slugify lowercases a migration name and squeezes separators into single
// underscores so it is safe as a file name component.
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			s := b.String()
			if s != "" && !strings.HasSuffix(s, "_") {
				b.WriteByte('_')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
