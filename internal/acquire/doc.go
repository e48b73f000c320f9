package acquire

// Package acquire implements the acquisition progress controller: it owns
// the run-state machine and frame counter for one sequence on one engine,
// translates the engine's asynchronous lifecycle notifications into a
// UI-safe status stream, and gates duplicate run requests. It holds no
// hardware state and never mutates the sequence it was given.
