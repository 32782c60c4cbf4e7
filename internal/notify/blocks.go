package notify

import (
	"fmt"
	"strings"

	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/storefront/internal/domain"
)

// OrderSummary is the plain-text fallback for an order notification.
func OrderSummary(order *domain.Order, username string) string {
	return fmt.Sprintf("New order #%d by %s: %d item(s), total $%.2f",
		order.ID, username, len(order.Items), order.Total())
}

// BuildOrderBlocks builds Slack Block Kit blocks for a placed order: a header
// section followed by one line per order item.
func BuildOrderBlocks(order *domain.Order, username string) []slacklib.Block {
	header := fmt.Sprintf("*Order #%d* by *%s*\n*Total:* `$%.2f`", order.ID, username, order.Total())
	blocks := []slacklib.Block{
		slacklib.NewSectionBlock(
			slacklib.NewTextBlockObject(slacklib.MarkdownType, header, false, false),
			nil,
			nil,
		),
	}

	if len(order.Items) == 0 {
		return blocks
	}

	var lines strings.Builder
	for _, it := range order.Items {
		name := fmt.Sprintf("product %d", it.ProductID)
		if it.Product != nil {
			name = it.Product.Name
		}
		fmt.Fprintf(&lines, "• %s × %d @ $%.2f\n", name, it.Quantity, it.Price)
	}

	blocks = append(blocks,
		slacklib.NewDividerBlock(),
		slacklib.NewSectionBlock(
			slacklib.NewTextBlockObject(slacklib.MarkdownType, strings.TrimSuffix(lines.String(), "\n"), false, false),
			nil,
			nil,
		),
	)

	return blocks
}
