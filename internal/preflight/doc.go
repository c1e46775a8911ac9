// Package preflight provides readiness checks for the filesystem paths and
// remote service worldshelf depends on.
//
// The CLI "worldshelf doctor" command runs them before a user points the tool
// at a screenshot folder. The VRChat check touches the network and only runs
// when explicitly requested.
package preflight
