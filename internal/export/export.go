// Package export renders ledger collections as CSV for the spreadsheet
// importer. The importer expects ";"-joined cells for multi-value columns,
// embedded JSON for maps, and CRLF line endings, so the field formatting is
// done by hand instead of encoding/csv.
package export

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kritsw/courtledger/internal/ledger"
)

var playerHeader = []string{"id", "name", "gender", "level", "active", "status", "visitCount", "shuttleCount"}

// PlayersCSV renders the full player roster.
func PlayersCSV(players []ledger.Player) string {
	rows := [][]string{playerHeader}
	for _, p := range players {
		rows = append(rows, []string{
			p.ID,
			p.Name,
			string(p.Gender),
			p.Level.String(),
			strconv.FormatBool(p.Active),
			string(p.Status),
			strconv.Itoa(p.VisitCount),
			formatNum(p.ShuttleCount),
		})
	}
	return render(rows)
}

var sessionHeader = []string{"id", "name", "startTime", "endTime", "currency", "isClosed", "gameIds", "presentPlayerIds", "paymentStatus"}

// SessionsCSV renders the session history.
func SessionsCSV(sessions []ledger.Session) string {
	rows := [][]string{sessionHeader}
	for _, s := range sessions {
		endTime := ""
		if s.EndTime != nil {
			endTime = strconv.FormatInt(*s.EndTime, 10)
		}
		payment, _ := json.Marshal(s.PaymentStatus)
		rows = append(rows, []string{
			s.ID,
			s.Name,
			strconv.FormatInt(s.StartTime, 10),
			endTime,
			s.Currency,
			strconv.FormatBool(s.IsClosed),
			strings.Join(s.GameIDs, ";"),
			strings.Join(s.PresentPlayerIDs, ";"),
			string(payment),
		})
	}
	return render(rows)
}

var gameHeader = []string{"id", "sessionId", "createdAt", "sequenceId", "shuttlesUsed", "players", "genderMix", "avgLevel", "notes", "isActive", "scoreA", "scoreB"}

// GamesCSV renders game records, one row per game.
func GamesCSV(games []ledger.GameRecord) string {
	rows := [][]string{gameHeader}
	for _, g := range games {
		rows = append(rows, []string{
			g.ID,
			g.SessionID,
			strconv.FormatInt(g.CreatedAt, 10),
			strconv.Itoa(g.SequenceID),
			formatNum(g.ShuttlesUsed),
			strings.Join(g.PlayerIDs, ";"),
			g.GenderMix,
			formatNum(g.AvgLevel),
			g.Notes,
			strconv.FormatBool(g.IsActive),
			g.ScoreA,
			g.ScoreB,
		})
	}
	return render(rows)
}

func render(rows [][]string) string {
	var b strings.Builder
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = formatField(cell)
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteString("\r\n")
	}
	return b.String()
}

// formatField quotes a cell when it contains a delimiter, quote or newline,
// doubling any embedded quotes.
func formatField(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
