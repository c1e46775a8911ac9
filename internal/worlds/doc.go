// Package worlds coordinates the catalog, remote world lookups, preferences,
// and the suggestion engine behind the user-facing operations: accepting or
// dismissing suggestions, adding worlds by hand or by ID, and importing
// screenshots into the catalog.
package worlds
