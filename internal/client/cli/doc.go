// Package cli implements the interactive tracker client: a line-oriented
// REPL over the application services. Commands cover authentication,
// profile and weight management, cache synchronization and, behind a dev
// flag, the date simulation and offline tooling.
package cli
