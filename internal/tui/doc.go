// Package tui provides the interactive terminal prompt for cadre.
//
// The prompt reads task descriptions, delegates each one through the
// engine and renders the assembled team next to the agent catalog.
//
// Usage:
//
//	program := tui.NewProgram(engine)
//	if _, err := program.Run(); err != nil {
//	    return err
//	}
package tui
