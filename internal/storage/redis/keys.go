package redis

import (
	"fmt"

	"github.com/mcoot/scrimbot/internal/model"
)

// Key prefix for all bot data
const keyPrefix = "scrim"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// playersIndexKey returns the Redis key for the SET of all player ids
func playersIndexKey() string {
	return fmt.Sprintf("%s:idx:players", keyPrefix)
}

// gameKey returns the Redis key for a Game
func gameKey(code model.GameCode) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, code)
}

// gamesIndexKey returns the Redis key for the ZSET of game codes scored by creation time
func gamesIndexKey() string {
	return fmt.Sprintf("%s:idx:games", keyPrefix)
}

// activeGamesIndexKey returns the Redis key for the SET of pending and locked game codes
func activeGamesIndexKey() string {
	return fmt.Sprintf("%s:idx:active_games", keyPrefix)
}

// participantsKey returns the Redis key for the ZSET of a game's players scored by join time
func participantsKey(code model.GameCode) string {
	return fmt.Sprintf("%s:participants:%s", keyPrefix, code)
}

// winnersKey returns the Redis key for the SET of a game's winning players
func winnersKey(code model.GameCode) string {
	return fmt.Sprintf("%s:winners:%s", keyPrefix, code)
}

// playerGamesKey returns the Redis key for the SET of games a player joined
func playerGamesKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:idx:player_games:%s", keyPrefix, id)
}

// sanctionKey returns the Redis key for a Sanction
func sanctionKey(id model.SanctionID) string {
	return fmt.Sprintf("%s:sanction:%s", keyPrefix, id)
}

// sanctionsByEndIndexKey returns the Redis key for the ZSET of sanction ids scored by end time
func sanctionsByEndIndexKey() string {
	return fmt.Sprintf("%s:idx:sanctions_by_end", keyPrefix)
}

// playerSanctionsKey returns the Redis key for the SET of a player's sanction ids
func playerSanctionsKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:idx:player_sanctions:%s", keyPrefix, id)
}
