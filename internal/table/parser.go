package table

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"ctrnf-scores/internal/domain"
)

type lineKind int

const (
	lineNone lineKind = iota
	lineComment
	lineTeam
	linePlayer
	linePenalty
)

// templateLine is an accepted line of the canonical template. owner is the
// serial of the team a marker or penalty line belongs to, zero otherwise.
type templateLine struct {
	text  string
	owner int
}

type parser struct {
	teamMode bool
	last     lineKind
	letter   rune
	serial   int
	names    map[string]struct{}
	teams    []domain.Team
	serials  []int
	lines    []templateLine
}

// Parse turns a results table into a ranked match. The returned match carries
// the canonical template of the accepted lines.
func Parse(text string) (domain.Match, error) {
	var lines []string
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	header := slices.IndexFunc(lines, headerPattern.MatchString)
	if header < 0 {
		return domain.Match{}, parseErr("lobby header not found")
	}

	var prefix []string
	for _, l := range lines[:header] {
		if commentPattern.MatchString(l) {
			prefix = append(prefix, l)
		}
	}

	m := headerPattern.FindStringSubmatch(lines[header])
	number, err := strconv.Atoi(m[2])
	if err != nil || number <= 0 {
		return domain.Match{}, parseErr("invalid lobby number %q", m[2])
	}
	title := strings.TrimSpace(m[3])
	lobbyType, ok := ParseLobbyType(title)
	if !ok {
		return domain.Match{}, parseErr("unsupported lobby type %q", title)
	}

	p := &parser{
		teamMode: lobbyType.TeamMode(),
		letter:   'A',
		names:    make(map[string]struct{}),
	}
	body := lines[header+1:]
	for i, line := range body {
		if err := p.consume(line, i == len(body)-1); err != nil {
			return domain.Match{}, err
		}
	}
	if err := p.dropEmptyTeams(); err != nil {
		return domain.Match{}, err
	}

	return domain.Match{
		BoardID:     lobbyType.Board(),
		LobbyNumber: number,
		LobbyName:   lobbyName(number, title),
		LobbyType:   lobbyType,
		TeamMode:    p.teamMode,
		Teams:       SortTeams(p.teams),
		Template:    p.template(prefix, lines[header]),
	}, nil
}

func lobbyName(number int, title string) string {
	if i := strings.Index(title, "#"); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}
	return fmt.Sprintf("Lobby #%d - %s", number, title)
}

func (p *parser) consume(line string, final bool) error {
	switch {
	case commentPattern.MatchString(line):
		p.lines = append(p.lines, templateLine{text: line + "\n"})
		p.last = lineComment
	case penaltyPattern.MatchString(line):
		p.penaltyLine(line)
	case p.isTeamLine(line):
		// a marker on the last line cannot have players
		if final {
			return nil
		}
		p.teamLine(line)
	case playerShaped(line):
		return p.playerLine(line)
	}
	return nil
}

func (p *parser) isTeamLine(line string) bool {
	if !p.teamMode {
		return false
	}
	if !playerShaped(line) {
		return true
	}
	m := teamPattern.FindStringSubmatch(line)
	return m != nil && m[1] != "" && m[2] != ""
}

func (p *parser) teamLine(line string) {
	// a marker right after an empty team replaces it
	if n := len(p.teams); n > 0 && len(p.teams[n-1].Players) == 0 {
		p.removeTeam(n - 1)
		p.letter--
	}

	team := domain.Team{Name: fmt.Sprintf("Team %c", p.letter)}
	if m := teamPattern.FindStringSubmatch(line); m != nil {
		name := m[1]
		if m[2] == "" && m[3] == "" {
			name = m[0]
		}
		if name = stripEmoji(name); name != "" {
			team.Name = name
		}
		team.Color = m[2]
		if m[3] != "" {
			team.Penalty = -sumExpr(m[3])
		}
	}
	p.letter++

	p.serial++
	p.teams = append(p.teams, team)
	p.serials = append(p.serials, p.serial)

	text := line + "\n"
	if p.last == linePenalty || p.last == linePlayer {
		text = "\n" + text
	}
	p.lines = append(p.lines, templateLine{text: text, owner: p.serial})
	p.last = lineTeam
}

func (p *parser) penaltyLine(line string) {
	if !p.teamMode || len(p.teams) == 0 {
		return
	}
	if p.last != linePenalty && p.last != lineTeam && p.last != linePlayer {
		return
	}

	m := penaltyPattern.FindStringSubmatch(line)
	v := abs(clamp(sumExpr(m[2]), maxPenalty))
	if strings.EqualFold(m[1], "bonus") {
		v = -v
	}
	n := len(p.teams) - 1
	p.teams[n].Penalty += v

	p.lines = append(p.lines, templateLine{text: line + "\n", owner: p.serials[n]})
	p.last = linePenalty
}

func (p *parser) playerLine(line string) error {
	player, err := parsePlayer(line)
	if err != nil {
		return err
	}
	if _, dup := p.names[player.Name]; dup {
		return parseErr("duplicate player %q", player.Name)
	}
	p.names[player.Name] = struct{}{}

	if p.teamMode {
		if len(p.teams) == 0 {
			return parseErr("player %q is not in a team", player.Name)
		}
		t := &p.teams[len(p.teams)-1]
		t.Players = append(t.Players, player)
		t.Score += player.Score
		t.Penalty += player.Penalty
	} else {
		p.teams = append(p.teams, domain.Team{
			Name:    player.Name,
			Players: []domain.Player{player},
			Score:   player.Score,
			Penalty: player.Penalty,
		})
		p.serials = append(p.serials, 0)
	}

	p.lines = append(p.lines, templateLine{text: line + "\n"})
	p.last = linePlayer
	return nil
}

func (p *parser) removeTeam(i int) {
	serial := p.serials[i]
	p.lines = slices.DeleteFunc(p.lines, func(l templateLine) bool {
		return l.owner == serial
	})
	p.teams = slices.Delete(p.teams, i, i+1)
	p.serials = slices.Delete(p.serials, i, i+1)
}

func (p *parser) dropEmptyTeams() error {
	for i := len(p.teams) - 1; i >= 0; i-- {
		if len(p.teams[i].Players) == 0 {
			p.removeTeam(i)
		}
	}
	if len(p.teams) < 2 {
		return parseErr("a lobby needs at least two teams with players, found %d", len(p.teams))
	}
	return nil
}

func (p *parser) template(prefix []string, header string) string {
	var b strings.Builder
	if len(prefix) > 0 {
		b.WriteString(strings.Join(prefix, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString(header)
	b.WriteString("\n\n")
	for _, l := range p.lines {
		b.WriteString(l.text)
	}
	return strings.TrimSpace(blankRuns.ReplaceAllString(b.String(), "\n\n"))
}
