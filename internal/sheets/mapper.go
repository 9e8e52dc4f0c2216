package sheets

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/kritsw/courtledger/internal/ledger"
)

// The sheet backend stores every cell loosely typed: multi-value columns are
// ";"-joined, maps are embedded JSON, and booleans round-trip as either real
// booleans or "true"/"false" strings. The mappers below absorb all of that.

func PlayerToRow(p ledger.Player) Row {
	return Row{
		"id":           p.ID,
		"name":         p.Name,
		"gender":       string(p.Gender),
		"level":        p.Level.String(),
		"active":       p.Active,
		"status":       string(p.Status),
		"visitCount":   p.VisitCount,
		"shuttleCount": p.ShuttleCount,
	}
}

func RowToPlayer(r Row) ledger.Player {
	return ledger.Player{
		ID:           toStr(r["id"]),
		Name:         toStr(r["name"]),
		Gender:       ledger.Gender(toStr(r["gender"])),
		Level:        ledger.ParseLevel(toStr(r["level"])),
		Active:       toBool(r["active"]),
		Status:       ledger.PlayerStatus(toStr(r["status"])),
		VisitCount:   int(toNum(r["visitCount"])),
		ShuttleCount: toNum(r["shuttleCount"]),
	}
}

func SessionToRow(s ledger.Session) Row {
	payment, _ := json.Marshal(s.PaymentStatus)
	row := Row{
		"id":               s.ID,
		"name":             s.Name,
		"startTime":        s.StartTime,
		"currency":         s.Currency,
		"isClosed":         s.IsClosed,
		"gameIds":          strings.Join(s.GameIDs, ";"),
		"presentPlayerIds": strings.Join(s.PresentPlayerIDs, ";"),
		"paymentStatus":    string(payment),
	}
	if s.EndTime != nil {
		row["endTime"] = *s.EndTime
	}
	return row
}

func RowToSession(r Row) ledger.Session {
	s := ledger.Session{
		ID:               toStr(r["id"]),
		Name:             toStr(r["name"]),
		StartTime:        int64(toNum(r["startTime"])),
		Currency:         toStr(r["currency"]),
		IsClosed:         toBool(r["isClosed"]),
		GameIDs:          splitIDs(toStr(r["gameIds"])),
		PresentPlayerIDs: splitIDs(toStr(r["presentPlayerIds"])),
		PaymentStatus:    map[string]bool{},
	}
	if v, ok := r["endTime"]; ok && toStr(v) != "" {
		end := int64(toNum(v))
		s.EndTime = &end
	}
	if raw := toStr(r["paymentStatus"]); raw != "" {
		_ = json.Unmarshal([]byte(raw), &s.PaymentStatus)
	}
	return s
}

func GameToRow(g ledger.GameRecord) Row {
	return Row{
		"id":           g.ID,
		"sessionId":    g.SessionID,
		"createdAt":    g.CreatedAt,
		"sequenceId":   g.SequenceID,
		"shuttlesUsed": g.ShuttlesUsed,
		"players":      strings.Join(g.PlayerIDs, ";"),
		"genderMix":    g.GenderMix,
		"avgLevel":     g.AvgLevel,
		"notes":        g.Notes,
		"isActive":     g.IsActive,
		"scoreA":       g.ScoreA,
		"scoreB":       g.ScoreB,
	}
}

func RowToGame(r Row) ledger.GameRecord {
	return ledger.GameRecord{
		ID:           toStr(r["id"]),
		SessionID:    toStr(r["sessionId"]),
		CreatedAt:    int64(toNum(r["createdAt"])),
		SequenceID:   int(toNum(r["sequenceId"])),
		ShuttlesUsed: toNum(r["shuttlesUsed"]),
		PlayerIDs:    splitIDs(toStr(r["players"])),
		GenderMix:    toStr(r["genderMix"]),
		AvgLevel:     toNum(r["avgLevel"]),
		Notes:        toStr(r["notes"]),
		IsActive:     toBool(r["isActive"]),
		ScoreA:       toStr(r["scoreA"]),
		ScoreB:       toStr(r["scoreB"]),
	}
}

func SettingsToRow(s ledger.Settings) Row {
	return Row{
		"currency":         s.Currency,
		"courtFee":         s.CourtFee,
		"shuttlePrice":     s.ShuttlePrice,
		"enableAutoSelect": s.EnableAutoSelect,
	}
}

func RowToSettings(r Row) ledger.Settings {
	s := ledger.DefaultSettings()
	if v := toStr(r["currency"]); v != "" {
		s.Currency = v
	}
	if _, ok := r["courtFee"]; ok {
		s.CourtFee = toNum(r["courtFee"])
	}
	if _, ok := r["shuttlePrice"]; ok {
		s.ShuttlePrice = toNum(r["shuttlePrice"])
	}
	if _, ok := r["enableAutoSelect"]; ok {
		s.EnableAutoSelect = toBool(r["enableAutoSelect"])
	}
	return s
}

func toStr(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return ""
	}
}

func toNum(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		n, _ := strconv.ParseFloat(t, 64)
		return n
	default:
		return 0
	}
}

func toBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(t, "true")
	case float64:
		return t != 0
	default:
		return false
	}
}

func splitIDs(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ";")
}
