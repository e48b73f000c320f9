package ui

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Window sizing
const (
	LauncherWidth  float32 = 480
	LauncherHeight float32 = 320

	PositionsWidth  float32 = 560
	PositionsHeight float32 = 420
)

// Text fragments
const (
	DashPlaceholder = "—"

	LabelStart         = "Start time-lapse"
	LabelStop          = "Stop"
	LabelOpenSequence  = "Open sequence…"
	LabelBuildSimple   = "Build simple TL"
	LabelEditPositions = "Edit positions…"
	LabelSettings      = "Settings…"
)

// Dialog titles
const (
	TitleLauncher     = "Micro-Manager time-lapse launcher"
	TitlePositions    = "Stage positions"
	TitleNotReady     = "Micro-Manager not configured"
	TitleStillRunning = "Time-lapse running"
)
