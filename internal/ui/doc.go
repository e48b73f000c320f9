package ui

// Package ui contains the Fyne-based desktop user interface for the
// launcher. It wires operator actions to the acquisition controller and the
// engine, and renders sequence details, run progress, and the stage
// positions editor. Engine callbacks reach widgets only through fyne.Do.
