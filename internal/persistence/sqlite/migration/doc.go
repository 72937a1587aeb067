// Package migration applies versioned SQL schema changes to SQLite databases.
//
// Migration files are read from an fs.FS (usually an embedded directory) and
// follow the naming convention {version}_{description}.sql, for example
// "001_initial_schema.sql". Each file runs inside its own transaction and is
// recorded in the schema_migrations table so it is applied exactly once.
//
// Example usage:
//
//	db, err := migration.OpenDB(migration.DefaultSQLiteConfig("artistbook.db"))
//	manager := migration.NewManager(migration.NewFSScanner(files, "migrations"), migration.NewSQLiteExecutor(db), logger)
//	applied, err := manager.Run(ctx)
package migration
