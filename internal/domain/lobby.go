package domain

type LobbyType string

const (
	RaceItemsFFA     LobbyType = "race_ffa"
	RaceItemsDuos    LobbyType = "race_duos"
	RaceItems3v3     LobbyType = "race_3v3"
	RaceItems4v4     LobbyType = "race_4v4"
	RaceSurvival     LobbyType = "race_survival"
	RaceItemless1v1  LobbyType = "race_itemless_1v1"
	RaceItemlessFFA  LobbyType = "race_itemless_ffa"
	RaceItemlessDuos LobbyType = "race_itemless_duos"
	RaceItemless3v3  LobbyType = "race_itemless_3v3"
	RaceItemless4v4  LobbyType = "race_itemless_4v4"
	Battle1v1        LobbyType = "battle_1v1"
	BattleFFA        LobbyType = "battle_ffa"
	BattleDuos       LobbyType = "battle_duos"
	Battle3v3        LobbyType = "battle_3v3"
	Battle4v4        LobbyType = "battle_4v4"
	InstaDuos        LobbyType = "insta_duos"
	Insta3v3         LobbyType = "insta_3v3"
	Insta4v4         LobbyType = "insta_4v4"
)

const (
	BoardSolos      = "8-jFwF"
	BoardItemless   = "Yg67aT"
	BoardTeams      = "9ur6s5"
	BoardInstaTeams = "3NM8MD"
	BoardBattle     = "2pgqJQ"
)

// Category is the team-size bucket used to pick scheme parameters.
type Category int

const (
	CategorySolo Category = iota
	CategoryDuos
	Category3v3
	Category4v4
)

type lobbyInfo struct {
	board    string
	category Category
	teams    int
	players  int
}

// LobbyTypes lists every known code in resolution order.
var LobbyTypes = []LobbyType{
	RaceItemsFFA, RaceItemsDuos, RaceItems3v3, RaceItems4v4, RaceSurvival,
	RaceItemless1v1, RaceItemlessFFA, RaceItemlessDuos, RaceItemless3v3, RaceItemless4v4,
	Battle1v1, BattleFFA, BattleDuos, Battle3v3, Battle4v4,
	InstaDuos, Insta3v3, Insta4v4,
}

var lobbies = map[LobbyType]lobbyInfo{
	RaceItemsFFA:     {BoardSolos, CategorySolo, 8, 8},
	RaceItemsDuos:    {BoardTeams, CategoryDuos, 4, 8},
	RaceItems3v3:     {BoardTeams, Category3v3, 2, 6},
	RaceItems4v4:     {BoardTeams, Category4v4, 2, 8},
	RaceSurvival:     {"", CategorySolo, 8, 8},
	RaceItemless1v1:  {"", CategorySolo, 2, 2},
	RaceItemlessFFA:  {BoardItemless, CategorySolo, 4, 4},
	RaceItemlessDuos: {BoardItemless, CategoryDuos, 4, 8},
	RaceItemless3v3:  {BoardItemless, Category3v3, 2, 6},
	RaceItemless4v4:  {BoardItemless, Category4v4, 2, 8},
	Battle1v1:        {"", CategorySolo, 2, 2},
	BattleFFA:        {BoardBattle, CategorySolo, 4, 4},
	BattleDuos:       {BoardBattle, CategoryDuos, 2, 4},
	Battle3v3:        {BoardBattle, Category3v3, 2, 6},
	Battle4v4:        {BoardBattle, Category4v4, 2, 8},
	InstaDuos:        {BoardInstaTeams, CategoryDuos, 4, 8},
	Insta3v3:         {BoardInstaTeams, Category3v3, 2, 6},
	Insta4v4:         {BoardInstaTeams, Category4v4, 2, 8},
}

func (t LobbyType) Known() bool {
	_, ok := lobbies[t]
	return ok
}

// Board returns the leaderboard id the lobby type is scored on, or "" when the
// mode has no board.
func (t LobbyType) Board() string {
	return lobbies[t].board
}

func (t LobbyType) Category() Category {
	return lobbies[t].category
}

func (t LobbyType) TeamMode() bool {
	info, ok := lobbies[t]
	return ok && info.category != CategorySolo
}

// DefaultSize returns the usual team and player counts of a full lobby.
func (t LobbyType) DefaultSize() (teams, players int) {
	info := lobbies[t]
	return info.teams, info.players
}

// BoardLobbyTypes returns the lobby types scored on a board, in resolution order.
func BoardLobbyTypes(boardID string) []LobbyType {
	var out []LobbyType
	for _, t := range LobbyTypes {
		if lobbies[t].board == boardID {
			out = append(out, t)
		}
	}
	return out
}
