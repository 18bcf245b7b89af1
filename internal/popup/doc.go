// Package popup manages floating popup windows drawn over a terminal grid.
// It handles popup creation from text content, option resolution, placement
// through the layout engine, scope ownership, auto-close timers, and the
// move/hide/show/close lifecycle.
//
// A Manager is driven from a single control thread. Auto-close timers are
// delivered back to that thread by the timer.Scheduler and re-enter through
// Close, so a timer close and a user close behave the same.
package popup
