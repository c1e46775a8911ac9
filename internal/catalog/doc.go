// Package catalog persists curated VRChat worlds, user-defined groups, and
// imported photos in SQLite.
//
// The Store owns the database connection, schema initialization, and the CRUD
// surface used by the CLI and the world service. FindByExternalID is the one
// query the suggestion engine depends on: it answers whether a world is
// already cataloged and returns (nil, nil) when it is not.
//
// Schema changes bump schemaVersion in schema.go; an existing database with a
// different version is rejected with ErrSchemaMismatch rather than migrated.
package catalog
