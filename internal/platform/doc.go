package platform

// Package platform contains filesystem glue shared by the CLI and the UI:
// home-relative path expansion, directory creation, and existence checks.
