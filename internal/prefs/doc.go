// Package prefs persists the user's mutable preferences: the screenshot
// directory to scan, how many days back a scan looks, and the world IDs the
// user dismissed from suggestions.
//
// Preferences live in a small JSON document next to the catalog database.
// A missing, empty, or corrupt document reads as defaults so a bad file never
// blocks scanning, but write failures are always returned to the caller.
// Read-modify-write operations hold an advisory file lock so two worldshelf
// processes cannot lose each other's dismissals.
package prefs
