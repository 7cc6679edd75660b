package lendingpool

import "github.com/rs/zerolog"

// Log is satisfied by *zerolog.Logger.
type Log interface {
	Info() *zerolog.Event
	Debug() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
}
