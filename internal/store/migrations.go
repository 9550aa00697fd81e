package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
)`

// migrations holds the ordered schema migrations per dialect.
// Each migration's version must be sequential starting from 1.
var migrations = map[dialect][]migration{
	dialectSQLite: {
		{
			version: 1,
			sql: `
CREATE TABLE IF NOT EXISTS todos (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	description TEXT,
	completed   INTEGER NOT NULL DEFAULT 0 CHECK(completed IN (0, 1)),
	priority    TEXT NOT NULL DEFAULT 'medium' CHECK(priority IN ('low', 'medium', 'high', 'unknown')),
	status      TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('active', 'inactive', 'pending')),
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME
);

CREATE INDEX IF NOT EXISTS idx_todos_status ON todos(status);
CREATE INDEX IF NOT EXISTS idx_todos_priority ON todos(priority);

INSERT INTO schema_version (version) VALUES (1);
`,
		},
	},
	dialectPostgres: {
		{
			version: 1,
			sql: `
CREATE TABLE IF NOT EXISTS todos (
	id          BIGSERIAL PRIMARY KEY,
	title       VARCHAR(255) NOT NULL,
	description TEXT,
	completed   BOOLEAN NOT NULL DEFAULT FALSE,
	priority    TEXT NOT NULL DEFAULT 'medium' CHECK(priority IN ('low', 'medium', 'high', 'unknown')),
	status      TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('active', 'inactive', 'pending')),
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_todos_status ON todos(status);
CREATE INDEX IF NOT EXISTS idx_todos_priority ON todos(priority);

INSERT INTO schema_version (version) VALUES (1);
`,
		},
	},
}
