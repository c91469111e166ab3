package config

import "time"

type GameType string

const (
	Wingo30s  GameType = "30s"
	Wingo60s  GameType = "60s"
	Wingo180s GameType = "180s"
	Wingo300s GameType = "300s"
)

// GameDurations maps every game type to its round duration. The map is the
// authoritative list of game types: a type absent here does not exist.
var GameDurations = map[GameType]time.Duration{
	Wingo30s:  30 * time.Second,
	Wingo60s:  60 * time.Second,
	Wingo180s: 180 * time.Second,
	Wingo300s: 300 * time.Second,
}

func GameTypes() []GameType {
	return []GameType{Wingo30s, Wingo60s, Wingo180s, Wingo300s}
}

func (g GameType) Valid() bool {
	_, ok := GameDurations[g]
	return ok
}

func (g GameType) Duration() time.Duration {
	return GameDurations[g]
}
