// Package repo implements the data persistence layer for domain entities,
// backed by GORM over pure-Go SQLite. This file contains database
// bootstrapping: opening the handle, applying PRAGMAs, and pool settings.
//
// All repository functions are context-aware and accept a *gorm.DB handle,
// making them safe for use within transactions or connection-scoped
// operations. They follow the "thin repository" approach: no business logic,
// only CRUD persistence and query composition.
//
// Error semantics:
//   - When a record is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - When an insert violates a uniqueness constraint, functions return
//     ErrDuplicate.
//   - On other DB errors (connectivity, FK violations, etc.), the raw gorm
//     error is propagated.
package repo

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate is returned when an insert conflicts with an existing row,
// such as registering a message that is already an inbox.
var ErrDuplicate = errors.New("repo: record already exists")

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
// extraPragmas are executed verbatim after the built-in ones, letting
// deployments tune cache size or mmap without a rebuild.
func OpenSQLite(path string, extraPragmas ...string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	// PRAGMAs are per-connection; pin the pool to one connection so they
	// hold for every statement. SQLite allows a single writer anyway.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")
	for _, p := range extraPragmas {
		if err := db.Exec(p).Error; err != nil {
			return nil, err
		}
	}

	return db, nil
}

// translateErr maps gorm's translated uniqueness violation onto ErrDuplicate
// and passes everything else through.
func translateErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}
