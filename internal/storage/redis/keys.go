package redis

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/leveltrack/leveltrack/internal/model"
)

// Key prefix for all progress-related data
const keyPrefix = "leveltrack"

// IDs are caller-supplied free text, so every key component is
// path-escaped before interpolation. Without this, an ID containing
// the delimiter collides two distinct keys or splits an index member
// at the wrong spot.

func escape(s string) string {
	return url.PathEscape(s)
}

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, escape(string(id)))
}

// prizeKey returns the Redis key for a Prize
func prizeKey(id model.PrizeID) string {
	return fmt.Sprintf("%s:prize:%s", keyPrefix, escape(string(id)))
}

// levelKey returns the Redis key for a Level
func levelKey(id model.LevelID) string {
	return fmt.Sprintf("%s:level:%s", keyPrefix, escape(string(id)))
}

// levelIndexKey returns the Redis key for the SET of all level IDs
func levelIndexKey() string {
	return fmt.Sprintf("%s:idx:levels", keyPrefix)
}

// progressKey returns the Redis key for a PlayerLevel
func progressKey(playerID model.PlayerID, levelID model.LevelID) string {
	return fmt.Sprintf("%s:progress:%s:%s", keyPrefix, escape(string(playerID)), escape(string(levelID)))
}

// progressIndexKey returns the Redis key for the LIST of progress
// members in insertion order
func progressIndexKey() string {
	return fmt.Sprintf("%s:idx:progress", keyPrefix)
}

// grantKey returns the Redis key for a PlayerLevelPrize
func grantKey(playerID model.PlayerID, levelID model.LevelID) string {
	return fmt.Sprintf("%s:grant:%s:%s", keyPrefix, escape(string(playerID)), escape(string(levelID)))
}

// progressMember encodes a (player, level) pair as an index member.
// PathEscape removes "/" from both components, so the separator stays
// unambiguous.
func progressMember(playerID model.PlayerID, levelID model.LevelID) string {
	return fmt.Sprintf("%s/%s", escape(string(playerID)), escape(string(levelID)))
}

// parseProgressMember splits an index member back into its pair
func parseProgressMember(member string) (model.PlayerID, model.LevelID, bool) {
	rawPlayer, rawLevel, ok := strings.Cut(member, "/")
	if !ok {
		return "", "", false
	}
	playerID, err := url.PathUnescape(rawPlayer)
	if err != nil {
		return "", "", false
	}
	levelID, err := url.PathUnescape(rawLevel)
	if err != nil {
		return "", "", false
	}
	return model.PlayerID(playerID), model.LevelID(levelID), true
}
