// Package driving defines primary ports: the interfaces through which
// external actors (TUI, CLI) drive the core search engine.
package driving
