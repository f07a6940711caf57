package table

import (
	"regexp"
	"strings"

	"ctrnf-scores/internal/domain"
)

var whitespace = regexp.MustCompile(`\s+`)

var separators = [][2]string{
	{" vs. ", "v"},
	{" vs ", "v"},
	{" v ", "v"},
	{"vs.", "v"},
	{"vs", "v"},
	{" ", "_"},
}

// ParseLobbyType resolves free text such as "Itemless 3 vs 3" to a lobby type
// that is scored on a leaderboard.
func ParseLobbyType(text string) (domain.LobbyType, bool) {
	code := whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
	for _, sep := range separators {
		code = strings.ReplaceAll(code, sep[0], sep[1])
	}
	if !strings.HasPrefix(code, "insta") && !strings.HasPrefix(code, "battle") {
		code = "race_" + code
	}

	lobbyType := domain.LobbyType(code)
	if !lobbyType.Known() {
		for _, known := range domain.LobbyTypes {
			if strings.Contains(code, string(known)) {
				lobbyType = known
				break
			}
		}
	}

	if !lobbyType.Known() || lobbyType.Board() == "" {
		return "", false
	}
	return lobbyType, true
}
