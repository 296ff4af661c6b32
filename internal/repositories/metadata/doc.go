// Package metadata provides the durable key/value medium that stands in for
// browser local storage.
//
// # Overview
//
// Repository is the contract used by the session store and the user
// directory. Two implementations exist:
//
//   - SQLRepository over the `metadata` table, for SQLite (modernc) and
//     PostgreSQL (pgx stdlib); queries are written with '?' and rebound
//     per dialect.
//   - RedisRepository over plain string keys under a namespace prefix.
//
// Typical Usage
//
//	repo := metadata.NewSQLRepository(db, dbx.DialectSQLite)
//	_ = repo.Set(ctx, "users", []byte("[]"))
//	v, _ := repo.Get(ctx, "users")
package metadata
