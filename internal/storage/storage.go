package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"neardup/internal/models"
)

// Storage persists scanned files, duplicate groups and the text
// vocabulary in a local sqlite database
type Storage struct {
	db     *sql.DB
	dbPath string
}

// NewStorage creates a new Storage
func NewStorage(dbPath string) (*Storage, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Storage{db: db, dbPath: dbPath}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Current schema version
const schemaVersion = 2

// migrations defines all schema migrations
// Each migration should be idempotent (safe to run multiple times)
var migrations = []struct {
	version     int
	description string
	up          string
}{
	{
		version:     1,
		description: "Initial schema",
		up:          "", // Handled by base schema creation
	},
	{
		version:     2,
		description: "Add vocabulary table for fuzzy word lookup",
		up: `
			CREATE TABLE IF NOT EXISTS vocab (
				word TEXT PRIMARY KEY,
				count INTEGER NOT NULL DEFAULT 0
			);
			CREATE INDEX IF NOT EXISTS idx_vocab_count ON vocab(count);
		`,
	},
}

// init creates the database schema
func (s *Storage) init() error {
	// Create schema_version table first
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	// Create base schema; mod_time is stored as unix seconds
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		path TEXT UNIQUE NOT NULL,
		kind TEXT NOT NULL,
		sha256 TEXT NOT NULL DEFAULT '',
		fingerprint INTEGER NOT NULL,
		file_size INTEGER NOT NULL,
		mod_time INTEGER NOT NULL,
		score REAL NOT NULL,
		group_id INTEGER DEFAULT 0,
		lines INTEGER DEFAULT 0,
		words INTEGER DEFAULT 0,
		width INTEGER DEFAULT 0,
		height INTEGER DEFAULT 0,
		format TEXT DEFAULT '',
		has_exif INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_files_fingerprint ON files(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_files_sha256 ON files(sha256);
	CREATE INDEX IF NOT EXISTS idx_files_group_id ON files(group_id);
	CREATE INDEX IF NOT EXISTS idx_files_kind ON files(kind);

	CREATE TABLE IF NOT EXISTS scan_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		folder TEXT NOT NULL,
		scanned_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		total_files INTEGER NOT NULL,
		total_groups INTEGER NOT NULL,
		total_duplicates INTEGER NOT NULL
	);
	`

	if _, err = s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Run migrations
	if err := s.migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// migrate runs pending schema migrations
func (s *Storage) migrate() error {
	currentVersion := s.getSchemaVersion()

	for _, m := range migrations {
		if m.version <= currentVersion || m.up == "" {
			continue
		}

		// Check if migration is needed (table might already exist)
		if m.version == 2 && s.tableExists("vocab") {
			s.setSchemaVersion(m.version)
			continue
		}

		if _, err := s.db.Exec(m.up); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.description, err)
		}

		s.setSchemaVersion(m.version)
	}

	return nil
}

// getSchemaVersion returns the current schema version
func (s *Storage) getSchemaVersion() int {
	var version int
	err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0
	}
	return version
}

// setSchemaVersion records a migration as applied
func (s *Storage) setSchemaVersion(version int) {
	s.db.Exec(`INSERT OR REPLACE INTO schema_version (version) VALUES (?)`, version)
}

// tableExists checks if a table exists
func (s *Storage) tableExists(table string) bool {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?
	`, table).Scan(&count)
	if err != nil {
		return false
	}
	return count > 0
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveFiles saves or updates multiple files
func (s *Storage) SaveFiles(files []*models.FileInfo) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO files
			(path, kind, sha256, fingerprint, file_size, mod_time, score, group_id, lines, words, width, height, format, has_exif)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, f := range files {
		// Cast uint64 to int64 for SQLite compatibility
		fpInt := int64(f.Fingerprint)
		hasExifInt := 0
		if f.HasExif {
			hasExifInt = 1
		}
		_, err := stmt.Exec(
			f.Path,
			string(f.Kind),
			f.SHA256,
			fpInt,
			f.FileSize,
			f.ModTime.Unix(),
			f.Score,
			f.GroupID,
			f.Lines,
			f.Words,
			f.Width,
			f.Height,
			f.Format,
			hasExifInt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert file %s: %w", f.Path, err)
		}
	}

	return tx.Commit()
}

const fileColumns = `id, path, kind, sha256, fingerprint, file_size, mod_time, score, group_id, lines, words, width, height, format, has_exif`

// scanFileRow reads one files row into a FileInfo
func scanFileRow(rows *sql.Rows) (*models.FileInfo, error) {
	f := &models.FileInfo{}
	var kind string
	var fpInt, modTime int64
	var hasExifInt int
	err := rows.Scan(
		&f.ID,
		&f.Path,
		&kind,
		&f.SHA256,
		&fpInt,
		&f.FileSize,
		&modTime,
		&f.Score,
		&f.GroupID,
		&f.Lines,
		&f.Words,
		&f.Width,
		&f.Height,
		&f.Format,
		&hasExifInt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	f.Kind = models.FileKind(kind)
	f.Fingerprint = uint64(fpInt)
	f.ModTime = time.Unix(modTime, 0)
	f.HasExif = hasExifInt == 1
	return f, nil
}

// GetAllFiles returns all stored files
func (s *Storage) GetAllFiles() ([]*models.FileInfo, error) {
	rows, err := s.db.Query(`SELECT ` + fileColumns + ` FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []*models.FileInfo
	for rows.Next() {
		f, err := scanFileRow(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	return files, rows.Err()
}

// UpdateGroups updates group IDs for files
func (s *Storage) UpdateGroups(groups []*models.DuplicateGroup) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Reset all group IDs
	if _, err = tx.Exec("UPDATE files SET group_id = 0"); err != nil {
		return fmt.Errorf("failed to reset groups: %w", err)
	}

	stmt, err := tx.Prepare("UPDATE files SET group_id = ? WHERE path = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, group := range groups {
		for _, f := range group.Files {
			if _, err := stmt.Exec(group.ID, f.Path); err != nil {
				return fmt.Errorf("failed to update group for %s: %w", f.Path, err)
			}
		}
	}

	return tx.Commit()
}

// GetFilesByGroupID returns files in a specific group, best first
func (s *Storage) GetFilesByGroupID(groupID int) ([]*models.FileInfo, error) {
	rows, err := s.db.Query(`SELECT `+fileColumns+` FROM files WHERE group_id = ? ORDER BY score DESC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []*models.FileInfo
	for rows.Next() {
		f, err := scanFileRow(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	return files, rows.Err()
}

// DeleteFile removes a file from the database
func (s *Storage) DeleteFile(path string) error {
	_, err := s.db.Exec("DELETE FROM files WHERE path = ?", path)
	return err
}

// RecordScan records a scan in history
func (s *Storage) RecordScan(folder string, totalFiles, totalGroups, totalDuplicates int) error {
	_, err := s.db.Exec(`
		INSERT INTO scan_history (folder, total_files, total_groups, total_duplicates)
		VALUES (?, ?, ?, ?)
	`, folder, totalFiles, totalGroups, totalDuplicates)
	return err
}

// GetGroupCount returns the number of duplicate groups
func (s *Storage) GetGroupCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(DISTINCT group_id) FROM files WHERE group_id > 0").Scan(&count)
	return count, err
}

// GetDuplicateGroups returns all duplicate groups with their files
func (s *Storage) GetDuplicateGroups() ([]*models.DuplicateGroup, error) {
	rows, err := s.db.Query("SELECT DISTINCT group_id FROM files WHERE group_id > 0 ORDER BY group_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groupIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		groupIDs = append(groupIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var groups []*models.DuplicateGroup
	for _, id := range groupIDs {
		files, err := s.GetFilesByGroupID(id)
		if err != nil {
			return nil, err
		}

		if len(files) < 2 {
			continue
		}

		group := &models.DuplicateGroup{
			ID:     id,
			Files:  files,
			Keep:   files[0], // Already sorted by score DESC
			Remove: files[1:],
		}
		groups = append(groups, group)
	}

	return groups, nil
}

// SaveVocabulary merges word counts into the vocab table
func (s *Storage) SaveVocabulary(vocab map[string]int) error {
	if len(vocab) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO vocab (word, count) VALUES (?, ?)
		ON CONFLICT(word) DO UPDATE SET count = count + excluded.count
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for word, count := range vocab {
		if _, err := stmt.Exec(word, count); err != nil {
			return fmt.Errorf("failed to save word %q: %w", word, err)
		}
	}

	return tx.Commit()
}

// AddWord inserts a word or bumps its count
func (s *Storage) AddWord(word string, count int) error {
	_, err := s.db.Exec(`
		INSERT INTO vocab (word, count) VALUES (?, ?)
		ON CONFLICT(word) DO UPDATE SET count = count + excluded.count
	`, word, count)
	return err
}

// GetVocabulary returns all words, most frequent first
func (s *Storage) GetVocabulary() ([]*models.WordCount, error) {
	rows, err := s.db.Query(`SELECT word, count FROM vocab ORDER BY count DESC, word`)
	if err != nil {
		return nil, fmt.Errorf("failed to query vocab: %w", err)
	}
	defer rows.Close()

	var words []*models.WordCount
	for rows.Next() {
		wc := &models.WordCount{}
		if err := rows.Scan(&wc.Word, &wc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		words = append(words, wc)
	}

	return words, rows.Err()
}

// DeleteWords removes words from the vocab table
func (s *Storage) DeleteWords(words []string) error {
	if len(words) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("DELETE FROM vocab WHERE word = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, word := range words {
		if _, err := stmt.Exec(word); err != nil {
			return fmt.Errorf("failed to delete word %q: %w", word, err)
		}
	}

	return tx.Commit()
}
