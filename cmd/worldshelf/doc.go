// Package main hosts the worldshelf CLI entrypoint and command graph.
//
// The Cobra command tree opens the catalog, preferences, and VRChat lookup
// client per invocation and hands them to the worlds service. Commands stay
// thin: add behavior to the internal packages first, then surface it here.
package main
