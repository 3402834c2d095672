// Package service provides the lifecycle state machine that fugue
// applications and transports compose with.
//
// A Service moves through init -> starting -> running -> stopping -> stopped.
// A failed OnStart or OnStop hook moves it to the terminal failed state.
package service
