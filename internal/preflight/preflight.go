package preflight

import (
	"context"

	"worldshelf/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Options selects the optional checks RunAll performs.
type Options struct {
	// PhotoDirectory is the configured screenshot folder; empty skips it.
	PhotoDirectory string
	// Online enables the VRChat reachability check.
	Online bool
}

// RunAll executes the applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Photo store", cfg.PhotoStoreDir()),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}

	if opts.PhotoDirectory != "" {
		results = append(results, CheckReadableDirectory("Screenshot folder", opts.PhotoDirectory))
	} else {
		results = append(results, Result{Name: "Screenshot folder", Detail: "not set (worldshelf prefs set --photo-dir)"})
	}

	if opts.Online {
		results = append(results, CheckVRChat(ctx, cfg.VRChat.BaseURL, cfg.VRChat.UserAgent))
	}

	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
