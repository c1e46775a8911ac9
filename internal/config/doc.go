// Package config loads, normalizes, and validates worldshelf configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// WORLDSHELF_USER_AGENT. The Config type centralizes the static knobs the CLI
// needs: where the catalog database and logs live, how the VRChat lookup
// service is reached, and how photo scans are bounded.
//
// Mutable user preferences (photo directory, scan window, dismissed worlds)
// are not part of this package; they live in internal/prefs so the CLI can
// rewrite them without touching the hand-edited TOML file.
package config
