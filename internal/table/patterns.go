package table

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"ctrnf-scores/internal/domain"
)

const (
	maxTracks  = 32
	maxScore   = 99
	maxPenalty = 99
)

var (
	headerPattern  = regexp.MustCompile(`(?i)^(lobby)\s*#?(\d+)\s*-?\s*(.+)`)
	commentPattern = regexp.MustCompile(`^(//|#)`)
	penaltyPattern = regexp.MustCompile(`(?i)^(Penalty|Bonus)\s+([+\-0-9]+)\s*$`)
	playerPattern  = regexp.MustCompile(`(?i)^(\S+)(?:\s+\[?([A-Za-z\-_]{2,7})\]?)?\s+((?:[+\-]?[0-9|])+)(\s+\(?[+\-0-9]+\)?)?(?:\s.*)?$`)
	teamPattern    = regexp.MustCompile(`^(.*?)\s*(#[0-9A-Fa-f]+)?(?:\s*(\([+\-0-9]+\)?))?(?:\s[^#(]*)?$`)
	blankRuns      = regexp.MustCompile(`\n{3,}`)
)

func parseErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrParse, fmt.Sprintf(format, args...))
}

// playerShaped reports whether the line looks like a player entry. The words
// Penalty and Bonus on their own are never player names.
func playerShaped(line string) bool {
	m := playerPattern.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	return !strings.EqualFold(m[1], "penalty") && !strings.EqualFold(m[1], "bonus")
}

func parsePlayer(line string) (domain.Player, error) {
	m := playerPattern.FindStringSubmatch(line)
	if m == nil {
		return domain.Player{}, parseErr("could not parse player line %q", line)
	}

	tokens := strings.Split(m[3], "|")
	if len(tokens) > maxTracks {
		tokens = tokens[:maxTracks]
	}

	p := domain.Player{
		Name:   strings.TrimSpace(m[1]),
		Flag:   m[2],
		Scores: make([]int, 0, len(tokens)),
	}
	deductions := 0
	for _, tok := range tokens {
		score, deduction, err := parseTrack(tok)
		if err != nil {
			return domain.Player{}, parseErr("player %q has an invalid score %q", p.Name, tok)
		}
		p.Scores = append(p.Scores, score)
		p.Score += score
		deductions += deduction
	}

	adjustment := 0
	if m[4] != "" {
		adjustment = sumExpr(m[4])
	}
	p.Penalty = -clamp(adjustment-deductions, maxPenalty)
	return p, nil
}

// parseTrack reads one score token: n, a+b or a-b where b is a deduction.
func parseTrack(tok string) (score, deduction int, err error) {
	switch {
	case tok == "":
		return 0, 0, nil
	case strings.Contains(tok, "+"):
		parts := strings.Split(tok, "+")
		a, err := nonNegative(parts[0])
		if err != nil {
			return 0, 0, err
		}
		b, err := nonNegative(parts[1])
		if err != nil {
			return 0, 0, err
		}
		return min(a+b, maxScore), 0, nil
	case strings.Contains(tok, "-"):
		parts := strings.Split(tok, "-")
		a, err := nonNegative(parts[0])
		if err != nil {
			return 0, 0, err
		}
		b, err := nonNegative(parts[1])
		if err != nil {
			return 0, 0, err
		}
		return min(a, maxScore), b, nil
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, 0, err
	}
	return min(max(n, 0), maxScore), 0, nil
}

func nonNegative(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return max(n, 0), nil
}

// sumExpr evaluates expressions like "(10-5+3)" left to right.
func sumExpr(s string) int {
	s = strings.NewReplacer("(", "", ")", "").Replace(strings.TrimSpace(s))
	sum, sign := 0, 1
	var cur strings.Builder
	flush := func() {
		n, _ := strconv.Atoi(strings.TrimSpace(cur.String()))
		sum += sign * n
		cur.Reset()
	}
	for _, r := range s {
		switch r {
		case '+':
			flush()
			sign = 1
		case '-':
			flush()
			sign = -1
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return sum
}

func clamp(v, limit int) int {
	return min(max(v, -limit), limit)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func stripEmoji(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch {
		case unicode.Is(unicode.So, r), unicode.Is(unicode.Sk, r) && r > 0xFF:
			return -1
		case r == 0x200D, r >= 0xFE00 && r <= 0xFE0F, r >= 0xE0020 && r <= 0xE007F:
			return -1
		}
		return r
	}, s))
}
