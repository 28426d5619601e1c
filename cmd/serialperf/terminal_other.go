//go:build !windows

package main

// enableTerminalStatus is a no-op outside Windows: Unix terminals
// interpret ANSI escapes without any setup.
func enableTerminalStatus() {}
