// Package packguard provides the command-line interface for the packguard
// tool. It configures subcommands (scan, rules, history), parses flags, and
// executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/packguard/packguard/cmd/packguard"
//	func main() { packguard.Execute() }
package packguard
