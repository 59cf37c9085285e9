// Package ui contains the Bubble Tea program for the instance picker.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with one message at a time. Each
//     tea.Msg type is routed through a typed handler registry so key input,
//     window resizes, throbber ticks and the load result are handled by
//     focused functions.
//   - Key handling (input.go) maps keys onto internal/ui/state.Session
//     operations. Once the session stops running, Update returns tea.Quit.
//
// State ownership:
//   - internal/ui/state.Session owns the query, load status, filtered view,
//     selection and exit action. The model only adds presentation state:
//     terminal size, the list viewport, the throbber and the query caret.
//
// Backend interactions:
//   - A backend.Loader runs the instance lookup once. waitForLoad blocks on
//     its channel and turns the single result into instancesLoadedMsg. The
//     command is not re-armed afterwards.
package ui
