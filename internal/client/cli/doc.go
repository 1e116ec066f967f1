// Package cli provides the interactive citywatch command-line client.
//
// It stands in for the mobile screens: sign up or log in, report an
// incident, browse the incident list by category and see your own reports.
// The REPL only talks to the session store and the incident repository,
// never to a backend adapter directly.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See runREPL for the command table.
package cli
