package telegram

import (
	"context"
	"fmt"

	"dorm_maintenance/internal/domain/maintenance"
	domainTelegram "dorm_maintenance/internal/domain/telegram"
)

// DueNotifier posts due items to the operators' chat with Done and Skip buttons.
type DueNotifier struct {
	client domainTelegram.Client
	chatID int64
}

func NewDueNotifier(client domainTelegram.Client, chatID int64) *DueNotifier {
	return &DueNotifier{client: client, chatID: chatID}
}

func (n *DueNotifier) NotifyDue(ctx context.Context, item maintenance.DueItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.client.SendMessage(n.chatID, formatDueItem(item), dueItemMarkup(item)); err != nil {
		return fmt.Errorf("failed to send due notification for schedule %d: %w", item.ScheduleID, err)
	}
	return nil
}
