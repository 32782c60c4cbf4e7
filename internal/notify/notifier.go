// Package notify posts order notifications to a Slack channel.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/storefront/internal/domain"
)

// SlackAPI abstracts the subset of the Slack client used by Notifier.
type SlackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slacklib.MsgOption) (string, string, error)
}

// Notifier announces placed orders. A Notifier without a Slack client only
// logs the order.
type Notifier struct {
	api     SlackAPI
	channel string
}

// New creates a Notifier posting to channel through api. A nil api disables
// posting.
func New(api SlackAPI, channel string) *Notifier {
	return &Notifier{api: api, channel: channel}
}

// NewSlack builds a Notifier from a bot token. An empty token yields a
// log-only Notifier.
func NewSlack(botToken, channel string, opts ...slacklib.Option) *Notifier {
	if botToken == "" {
		return New(nil, channel)
	}
	return New(slacklib.New(botToken, opts...), channel)
}

// Enabled reports whether notifications are posted to Slack.
func (n *Notifier) Enabled() bool {
	return n.api != nil
}

// OrderPlaced posts a summary of order placed by username.
func (n *Notifier) OrderPlaced(ctx context.Context, order *domain.Order, username string) error {
	text := OrderSummary(order, username)

	if n.api == nil {
		log.Info().Int64("order_id", order.ID).Str("user", username).Msg("notify: " + text)
		return nil
	}

	_, _, err := n.api.PostMessageContext(ctx, n.channel,
		slacklib.MsgOptionText(text, false),
		slacklib.MsgOptionBlocks(BuildOrderBlocks(order, username)...),
	)
	if err != nil {
		return fmt.Errorf("notify.Notifier.OrderPlaced: %w", err)
	}

	return nil
}
