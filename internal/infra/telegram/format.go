package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"dorm_maintenance/internal/domain/maintenance"

	"gopkg.in/telebot.v3"
)

// Inline button identifiers. Payloads: done "<id>", skip "<id>|<YYYYMMDD>".
const (
	uniqueDone = "mnt_done"
	uniqueSkip = "mnt_skip"
)

func dueItemMarkup(item maintenance.DueItem) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	id := strconv.FormatInt(item.ScheduleID, 10)
	btnDone := markup.Data("Выполнено", uniqueDone, id)
	btnSkip := markup.Data("Пропустить", uniqueSkip, id, item.DueDate.Compact())
	markup.Inline(markup.Row(btnDone, btnSkip))
	return markup
}

func formatDueItem(item maintenance.DueItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Плановое обслуживание #%d: %s\n", item.ScheduleID, item.Title)
	b.WriteString("Объект: ")
	if item.Scope == maintenance.ScopeAssetGroup && item.AssetGroupName != "" {
		b.WriteString(item.AssetGroupName)
	} else {
		b.WriteString("всё общежитие")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Срок: %s (%s)", item.DueDate.String(), dueRelative(item.DaysUntilDue))
	if item.CycleMonths != nil && *item.CycleMonths > 0 {
		fmt.Fprintf(&b, "\nПериодичность: раз в %d мес.", *item.CycleMonths)
	}
	if item.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(item.Description)
	}
	return b.String()
}

func dueRelative(days int) string {
	switch {
	case days == 0:
		return "сегодня"
	case days > 0:
		return fmt.Sprintf("через %d дн.", days)
	default:
		return fmt.Sprintf("просрочено на %d дн.", -days)
	}
}

func formatDueList(items []maintenance.DueItem) string {
	if len(items) == 0 {
		return "Сейчас нет работ, требующих внимания."
	}
	var b strings.Builder
	b.WriteString("--- Требуют внимания ---\n")
	for _, item := range items {
		fmt.Fprintf(&b, "#%d %s: %s (%s)\n", item.ScheduleID, item.Title, item.DueDate.String(), dueRelative(item.DaysUntilDue))
	}
	return b.String()
}

func formatUpcomingList(schedules []*maintenance.Schedule, days int, loc *time.Location) string {
	if len(schedules) == 0 {
		return fmt.Sprintf("На ближайшие %d дн. плановых работ нет.", days)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "--- Плановые работы на %d дн. ---\n", days)
	for _, s := range schedules {
		due, _ := s.DueDate(loc)
		fmt.Fprintf(&b, "#%d %s: %s\n", s.ID, s.Title, due.String())
	}
	return b.String()
}

func parseScheduleID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid schedule id %q", raw)
	}
	return id, nil
}

// parseSkipPayload decodes the data of a skip button.
func parseSkipPayload(data string) (int64, maintenance.Date, error) {
	parts := strings.Split(data, "|")
	if len(parts) != 2 {
		return 0, maintenance.Date{}, fmt.Errorf("invalid skip payload %q", data)
	}
	id, err := parseScheduleID(parts[0])
	if err != nil {
		return 0, maintenance.Date{}, err
	}
	due, err := maintenance.ParseCompactDate(parts[1])
	if err != nil {
		return 0, maintenance.Date{}, err
	}
	return id, due, nil
}

// parseSkipArgs handles "/skip <id> <YYYY-MM-DD>".
func parseSkipArgs(args []string) (int64, maintenance.Date, error) {
	if len(args) != 2 {
		return 0, maintenance.Date{}, fmt.Errorf("expected 2 arguments, got %d", len(args))
	}
	id, err := parseScheduleID(args[0])
	if err != nil {
		return 0, maintenance.Date{}, err
	}
	due, err := maintenance.ParseDate(args[1])
	if err != nil {
		return 0, maintenance.Date{}, err
	}
	return id, due, nil
}

// parseUpcomingArgs handles "/upcoming [days]".
func parseUpcomingArgs(args []string, def int) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("expected at most 1 argument, got %d", len(args))
	}
	days, err := strconv.Atoi(args[0])
	if err != nil || days < 0 {
		return 0, fmt.Errorf("invalid days %q", args[0])
	}
	return days, nil
}
