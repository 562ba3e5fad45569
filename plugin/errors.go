package plugin

import "errors"

// Plugin system errors.
var (
	// ErrManifestNotFound is returned when a directory has no plugin.json.
	ErrManifestNotFound = errors.New("plugin manifest not found")

	// ErrInvalidName is returned when a manifest carries an invalid
	// plugin or part name.
	ErrInvalidName = errors.New("invalid plugin name")

	// ErrNoParts is returned when a manifest declares no parts.
	ErrNoParts = errors.New("plugin manifest declares no parts")

	// ErrNilManifest is returned when a nil manifest is provided.
	ErrNilManifest = errors.New("manifest is nil")

	// ErrAlreadyLoaded is returned when loading an already loaded plugin.
	ErrAlreadyLoaded = errors.New("plugin is already loaded")

	// ErrNotLoaded is returned when using an unloaded plugin.
	ErrNotLoaded = errors.New("plugin is not loaded")

	// ErrStateClosed is returned when using a closed Lua state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrFunctionNotFound is returned when a manifest references a Lua
	// function the plugin does not define.
	ErrFunctionNotFound = errors.New("lua function not found")
)
