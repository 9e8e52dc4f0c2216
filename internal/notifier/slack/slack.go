package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kritsw/courtledger/internal/ledger"
	"github.com/kritsw/courtledger/internal/metrics"
	"github.com/kritsw/courtledger/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// SendSessionSummary posts the end-of-session cost breakdown.
func (s *Notifier) SendSessionSummary(sess *ledger.Session, costs []ledger.PlayerCost, settings ledger.Settings, dryRun bool) error {
	msg := s.formatSessionSummary(sess, costs, settings)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// SendGameResult posts the final score of a finished game.
func (s *Notifier) SendGameResult(game *ledger.GameRecord, players []ledger.Player, dryRun bool) error {
	msg := s.formatGameResult(game, players)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// formatSessionSummary creates the Slack message for a closed session using Block Kit.
func (s *Notifier) formatSessionSummary(sess *ledger.Session, costs []ledger.PlayerCost, settings ledger.Settings) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏸 %s wrapped up! 🏸", sess.Name), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("Games played: %d\nPlayers: %d", len(sess.GameIDs), len(sess.PresentPlayerIDs))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	if len(costs) > 0 {
		var lines []string
		var total float64
		for _, c := range costs {
			mark := "⏳"
			if c.Paid {
				mark = "✅"
			}
			lines = append(lines, fmt.Sprintf("%s %s: %.2f %s (%.2g shuttles)", mark, c.Player.Name, c.Amount, settings.Currency, c.Shuttles))
			total += c.Amount
		}
		costText := "Costs:\n" + strings.Join(lines, "\n")
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", costText, true, false), nil, nil))

		totalText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("Total collected: %.2f %s", total, settings.Currency), true, false)
		blocks = append(blocks, slack.NewContextBlock("", totalText))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatGameResult creates the Slack message for a finished game using Block Kit.
func (s *Notifier) formatGameResult(game *ledger.GameRecord, players []ledger.Player) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏸 Game finished! 🏸", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}
	teamName := func(ids []string) string {
		var parts []string
		for _, id := range ids {
			if n, ok := names[id]; ok {
				parts = append(parts, n)
			}
		}
		return strings.Join(parts, " & ")
	}

	var teamA, teamB string
	if len(game.PlayerIDs) == 4 {
		teamA = teamName(game.PlayerIDs[:2])
		teamB = teamName(game.PlayerIDs[2:])
	}

	if game.ScoreA != "" || game.ScoreB != "" {
		resultText := fmt.Sprintf("• %s: %s\n• %s: %s", teamA, game.ScoreA, teamB, game.ScoreB)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", resultText, true, false), nil, nil))
	} else {
		matchupText := fmt.Sprintf("%s vs %s", teamA, teamB)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", matchupText, true, false), nil, nil))
	}

	var contextElements []slack.MixedElement
	if game.Notes != "" {
		contextElements = append(contextElements, slack.NewTextBlockObject("plain_text", game.Notes, true, false))
	}
	if game.ShuttlesUsed > 0 {
		contextElements = append(contextElements, slack.NewTextBlockObject("plain_text", fmt.Sprintf("%.2g shuttles used", game.ShuttlesUsed), true, false))
	}
	if len(contextElements) > 0 {
		blocks = append(blocks, slack.NewContextBlock("", contextElements...))
	}

	return slack.NewBlockMessage(blocks...)
}
