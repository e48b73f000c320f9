package engine

// Package engine defines the contract the launcher requires from an
// acquisition engine: readiness queries, run/cancel commands, stage access,
// and typed lifecycle event subscriptions. Engine failures are translated
// into classified errors at this boundary so callers never inspect
// engine-specific error text.
