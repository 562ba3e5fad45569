// Package plugin loads Lua plugins and exposes their functions as hook
// functions.
//
// A plugin is a directory containing a plugin.json manifest and Lua
// sources executed on an embedded Lua runtime. The manifest declares one
// or more parts; each part maps hook names to the Lua functions that
// implement them. The Manager loads discovered plugins and registers
// their hook functions into the registry the dispatch engine reads.
//
// # Lua hook functions
//
// A Lua hook function receives the hook name, the invocation context as a
// table, and a completion callback:
//
//	function onSave(hook, ctx, settle)
//	    return ctx.path
//	end
//
// Returning a value (or calling settle with one) settles the invocation.
// Lua cannot distinguish "no return" from "return nil", so both map to
// the engine's no-value sentinel; a Lua error surfaces as the hook
// function's failure.
//
// The context table is marshalled into the Lua state; mutations made by
// Lua code are not visible to other hook functions.
//
// # Concurrency
//
// A Lua state is not safe for concurrent use, so all hook functions of
// one plugin serialize on the plugin's state even when the engine runs
// them concurrently. Functions from different plugins run concurrently.
package plugin
