package repo

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Migration is a single versioned schema script. Scripts only ever move the
// schema forward; there are no down migrations.
type Migration struct {
	Version int
	SQL     string
}

// DefaultMigrations is the full schema history, applied in order on top of
// PRAGMA user_version tracking.
var DefaultMigrations = []Migration{
	{Version: 1, SQL: migrationBase},
	{Version: 2, SQL: migrationDestination},
	{Version: 3, SQL: migrationTicketDefaults},
}

const migrationBase = `
CREATE TABLE user (
    id INTEGER PRIMARY KEY
) STRICT;
CREATE TABLE guild (
    id INTEGER PRIMARY KEY
) STRICT;
CREATE TABLE member (
    guild_id INTEGER NOT NULL REFERENCES guild (id) ON DELETE CASCADE,
    user_id INTEGER NOT NULL REFERENCES user (id) ON DELETE CASCADE,
    PRIMARY KEY (guild_id, user_id)
) STRICT, WITHOUT ROWID;
CREATE TABLE channel (
    id INTEGER PRIMARY KEY,
    guild_id INTEGER REFERENCES guild (id) ON DELETE CASCADE
) STRICT;
CREATE TABLE message (
    id INTEGER PRIMARY KEY,
    channel_id INTEGER NOT NULL REFERENCES channel (id) ON DELETE CASCADE
) STRICT;
CREATE TABLE inbox (
    id INTEGER PRIMARY KEY REFERENCES message (id) ON DELETE CASCADE,
    starter_content TEXT,
    max_tickets_per_user INTEGER NOT NULL DEFAULT 1
) STRICT;
CREATE TABLE inbox_staff (
    inbox_id INTEGER NOT NULL REFERENCES inbox (id) ON DELETE CASCADE,
    mention TEXT NOT NULL,
    PRIMARY KEY (inbox_id, mention)
) STRICT, WITHOUT ROWID;
CREATE TABLE ticket (
    id INTEGER PRIMARY KEY REFERENCES channel (id) ON DELETE CASCADE,
    inbox_id INTEGER NOT NULL REFERENCES inbox (id) ON DELETE CASCADE,
    owner_id INTEGER NOT NULL REFERENCES user (id) ON DELETE CASCADE
) STRICT;
CREATE INDEX ix_channel_guild_id ON channel (guild_id);
CREATE INDEX ix_message_channel_id ON message (channel_id);
CREATE INDEX ix_ticket_inbox_id ON ticket (inbox_id);
CREATE INDEX ix_ticket_owner_id ON ticket (owner_id);
`

const migrationDestination = `
ALTER TABLE inbox ADD COLUMN destination_channel_id INTEGER REFERENCES channel (id);
`

const migrationTicketDefaults = `
ALTER TABLE inbox ADD COLUMN counter INTEGER NOT NULL DEFAULT 0;
ALTER TABLE inbox ADD COLUMN default_ticket_name TEXT;
`

// Migrate brings the database schema up to date. The current version is read
// from PRAGMA user_version; an unrecognized non-zero version (a database
// created by a newer build) is left untouched with a warning rather than
// risking a destructive replay.
func Migrate(db *gorm.DB, log zerolog.Logger, migrations []Migration) error {
	var version int
	if err := db.Raw("PRAGMA user_version").Scan(&version).Error; err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version > 0 && !versionExists(migrations, version) {
		log.Warn().
			Int("version", version).
			Msg("Unrecognized database version, skipping migrations")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, m := range migrations {
			if m.Version <= version {
				continue
			}
			log.Info().Int("version", m.Version).Msg("Migrating database")
			if err := tx.Exec(m.SQL).Error; err != nil {
				return fmt.Errorf("migrate to v%d: %w", m.Version, err)
			}
			version = m.Version
		}
		return tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", version)).Error
	})
}

func versionExists(migrations []Migration, version int) bool {
	for _, m := range migrations {
		if m.Version == version {
			return true
		}
	}
	return false
}
