// Package toolcache stores extracted tool directories on disk and finds them
// again on later runs.
//
// The layout matches the hosted-runner tool cache so entries written by other
// setup actions are visible and vice versa:
//
//	<root>/<tool>/<version>/<arch>/            extracted files
//	<root>/<tool>/<version>/<arch>.complete    marker written last
//
// A directory without its marker is an interrupted write and is never
// reported as an entry.
//
// # Usage
//
//	store := toolcache.NewStore(toolcache.DefaultRoot())
//	loc := toolcache.NewLocator(store, "ruff", logger)
//	if e := loc.TryGetCached(ctx, "x86_64", "0.5.0"); e.Hit() {
//	    fmt.Println(e.Path)
//	}
package toolcache
