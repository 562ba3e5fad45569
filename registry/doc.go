// Package registry provides the ordered hook registry the dispatch engine
// reads and the plugin subsystem fills.
//
// Registration order is semantically significant: it is the execution
// order for synchronous dispatch and the priority order for first-match
// dispatch. Lookup returns descriptors in exactly the order they were
// registered.
//
// The registry is safe for concurrent use. It may be mutated between
// dispatch operations (plugin reloads do this), but descriptors already
// handed out by Lookup are unaffected by later mutation.
package registry
