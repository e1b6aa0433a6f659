package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// sqliteMigrations is the ordered list of SQLite schema migrations.
// Each migration's version must be sequential starting from 1.
// due_date holds YYYY-MM-DD text so comparisons against a date string
// order chronologically.
var sqliteMigrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS pdfs (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL CHECK(length(name) <= 100),
	created_at DATETIME NOT NULL,
	due_date   TEXT,
	status     TEXT NOT NULL DEFAULT 'PENDING'
		CHECK(status IN ('PENDING', 'PRINTED', 'SENT', 'CANCELED'))
);

CREATE INDEX IF NOT EXISTS idx_pdfs_created_at ON pdfs(created_at);
CREATE INDEX IF NOT EXISTS idx_pdfs_due_date ON pdfs(due_date);
CREATE INDEX IF NOT EXISTS idx_pdfs_status ON pdfs(status);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}

// postgresMigrations mirrors sqliteMigrations for PostgreSQL.
var postgresMigrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS pdfs (
	id         TEXT PRIMARY KEY,
	name       VARCHAR(100) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	due_date   DATE,
	status     VARCHAR(20) NOT NULL DEFAULT 'PENDING'
		CHECK (status IN ('PENDING', 'PRINTED', 'SENT', 'CANCELED'))
);

CREATE INDEX IF NOT EXISTS idx_pdfs_created_at ON pdfs(created_at);
CREATE INDEX IF NOT EXISTS idx_pdfs_due_date ON pdfs(due_date);
CREATE INDEX IF NOT EXISTS idx_pdfs_status ON pdfs(status);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
