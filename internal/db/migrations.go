package db

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	embeddedmigrations "github.com/terraincognita07/autobuyer/migrations"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	migrationNamePattern = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.sql$`)
	addColumnPattern     = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+([^\s]+)\s+ADD\s+COLUMN\s+([^\s]+)\b`)
)

var ErrEmptyMigration = errors.New("migration has no statements")

// Migration is one forward-only schema step read from the embedded files.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// MigrationState pairs a known migration with whether it has been applied.
type MigrationState struct {
	Migration
	Applied bool
}

// Migrate applies every embedded migration that is not yet recorded in
// schema_migrations and returns the names it applied, in order.
func Migrate(database *gorm.DB, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := createMigrationLedger(database); err != nil {
		return nil, err
	}

	states, err := MigrationStatus(database)
	if err != nil {
		return nil, err
	}

	applied := make([]string, 0)
	for _, state := range states {
		if state.Applied {
			continue
		}
		if err := runMigration(database, state.Migration); err != nil {
			return applied, err
		}
		logger.Info("applied migration", zap.Int("version", state.Version), zap.String("name", state.Name))
		applied = append(applied, state.Name)
	}
	return applied, nil
}

// MigrationStatus lists the embedded migrations by version. The ledger table
// must already exist.
func MigrationStatus(database *gorm.DB) ([]MigrationState, error) {
	migrations, err := embeddedMigrations(embeddedmigrations.Files)
	if err != nil {
		return nil, err
	}

	var recorded []string
	if err := database.Table("schema_migrations").Pluck("version", &recorded).Error; err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}
	appliedVersions := make(map[string]bool, len(recorded))
	for _, version := range recorded {
		appliedVersions[strings.TrimSpace(version)] = true
	}

	states := make([]MigrationState, 0, len(migrations))
	for _, migration := range migrations {
		states = append(states, MigrationState{
			Migration: migration,
			Applied:   appliedVersions[migrationVersionKey(migration.Version)],
		})
	}
	return states, nil
}

func createMigrationLedger(database *gorm.DB) error {
	err := database.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`).Error
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

func embeddedMigrations(files fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	migrations := make([]Migration, 0, len(entries))
	byVersion := make(map[int]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matches := migrationNamePattern.FindStringSubmatch(entry.Name())
		if matches == nil {
			continue
		}

		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, fmt.Errorf("migration %s: bad version: %w", entry.Name(), err)
		}
		if previous, ok := byVersion[version]; ok {
			return nil, fmt.Errorf("migrations %s and %s share version %d", previous, entry.Name(), version)
		}
		byVersion[version] = entry.Name()

		body, err := fs.ReadFile(files, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, Migration{Version: version, Name: entry.Name(), SQL: string(body)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

func migrationVersionKey(version int) string {
	return fmt.Sprintf("%04d", version)
}

func runMigration(database *gorm.DB, migration Migration) error {
	statements := sqlStatements(migration.SQL)
	if len(statements) == 0 {
		return fmt.Errorf("%s: %w", migration.Name, ErrEmptyMigration)
	}

	return database.Transaction(func(tx *gorm.DB) error {
		for _, statement := range statements {
			present, err := columnAlreadyAdded(tx, statement)
			if err != nil {
				return fmt.Errorf("migration %s: %w", migration.Name, err)
			}
			if present {
				continue
			}
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("migration %s: %q: %w", migration.Name, statement, err)
			}
		}

		return tx.Exec(
			`INSERT INTO schema_migrations(version, name) VALUES (?, ?)`,
			migrationVersionKey(migration.Version),
			migration.Name,
		).Error
	})
}

func sqlStatements(script string) []string {
	statements := make([]string, 0)
	for _, part := range strings.Split(script, ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

// columnAlreadyAdded lets ADD COLUMN statements be replayed against databases
// that already carry the column.
func columnAlreadyAdded(database *gorm.DB, statement string) (bool, error) {
	matches := addColumnPattern.FindStringSubmatch(statement)
	if matches == nil {
		return false, nil
	}
	table := unquoteIdentifier(matches[1])
	column := unquoteIdentifier(matches[2])

	var columns []struct {
		Name string `gorm:"column:name"`
	}
	query := fmt.Sprintf(`PRAGMA table_info("%s")`, strings.ReplaceAll(table, `"`, `""`))
	if err := database.Raw(query).Scan(&columns).Error; err != nil {
		return false, fmt.Errorf("table_info %s: %w", table, err)
	}
	for _, existing := range columns {
		if strings.EqualFold(existing.Name, column) {
			return true, nil
		}
	}
	return false, nil
}

func unquoteIdentifier(identifier string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(identifier), "\"`[]"))
}
