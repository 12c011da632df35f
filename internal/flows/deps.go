package flows

// Deps groups flow dependency sets. The console builds this once and delegates
// each operation to the matching flow. Request deps close over a single call,
// so requests go through RunRequest directly.
type Deps struct {
	Login   LoginDeps
	Refresh RefreshDeps
}
