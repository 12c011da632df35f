// Package nav keeps the console's view in sync with a URL fragment and a
// browser-style history stack.
//
// Navigation state is either a section ("dashboard", "users", ...) or a user
// profile with a sub-view. Transitions are computed by the pure function
// [Reduce], which returns the next [Model] plus a list of effects (push or
// replace a history entry, persist the last section, render, load). The
// [Controller] applies those effects against injected History, View and
// Loader implementations.
//
// # What this package must NOT do
//
//   - Push history entries while replaying a back/forward navigation.
//   - Push on initial load; the initial entry is replaced.
//   - Import trackAdmin.
package nav
