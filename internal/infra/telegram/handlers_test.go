package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"dorm_maintenance/internal/app"
	"dorm_maintenance/internal/domain/maintenance"
	idb "dorm_maintenance/internal/infra/database"
	"dorm_maintenance/internal/infra/logger"
	"dorm_maintenance/internal/infra/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

const (
	testAdminID    = int64(1001)
	testStrangerID = int64(2002)
	testChatID     = int64(-100500)
)

type botCall struct {
	method string
	params map[string]any
}

// botAPIRecorder stands in for the Bot API: it records every call and answers with a message.
type botAPIRecorder struct {
	mu    sync.Mutex
	calls []botCall
}

func (r *botAPIRecorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	params := map[string]any{}
	_ = json.NewDecoder(req.Body).Decode(&params)

	r.mu.Lock()
	r.calls = append(r.calls, botCall{method: path.Base(req.URL.Path), params: params})
	r.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, `{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":-100500,"type":"group"}}}`)
}

func (r *botAPIRecorder) texts(method string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.calls {
		if c.method != method {
			continue
		}
		text, _ := c.params["text"].(string)
		out = append(out, text)
	}
	return out
}

func (r *botAPIRecorder) lastText(t *testing.T, method string) string {
	t.Helper()
	texts := r.texts(method)
	require.NotEmpty(t, texts, "no %s calls", method)
	return texts[len(texts)-1]
}

func (r *botAPIRecorder) reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

type botEnv struct {
	api         *botAPIRecorder
	bot         *telebot.Bot
	maintenance *app.MaintenanceService
	loc         *time.Location
	boiler      *maintenance.Schedule
}

// newBotEnv wires every handler against an in-memory store. The service zone is UTC+9 and
// "now" is 2025-01-15 08:00 there, which is still 2025-01-14 in UTC.
func newBotEnv(t *testing.T) *botEnv {
	t.Helper()
	ctx := context.Background()

	api := &botAPIRecorder{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	b, err := telebot.NewBot(telebot.Settings{Token: "test", URL: srv.URL, Offline: true, Synchronous: true})
	require.NoError(t, err)

	db, dialect, err := idb.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	loc := time.FixedZone("JST", 9*60*60)
	clock := app.ClockFunc(func() time.Time { return time.Date(2025, 1, 15, 8, 0, 0, 0, loc) })
	schedules := idb.NewScheduleRepository(db, dialect)
	skips := idb.NewSkipRepository(db, dialect)
	groups := idb.NewAssetGroupRepository(db, dialect)

	maintenanceService := app.NewMaintenanceService(schedules, skips, groups, clock, loc, logger.Discard())
	adminService := app.NewAdminService(groups, testAdminID, logger.Discard())
	notificationService := app.NewNotificationServiceImpl(schedules, skips, nil, clock, loc, logger.Discard())

	RegisterBotCommands(b, adminService, logger.Discard())
	RegisterAdminHandlers(ctx, b, AdminHandlerDeps{
		AdminService:        adminService,
		MaintenanceService:  maintenanceService,
		NotificationService: notificationService,
		Location:            loc,
		UpcomingDefaultDays: 7,
	}, logger.Discard())
	RegisterMaintenanceResponseHandlers(ctx, b, maintenanceService, adminService, loc, logger.Discard())

	cycle := 3
	due := time.Date(2025, 1, 15, 0, 0, 0, 0, loc)
	boiler, err := maintenanceService.CreateSchedule(ctx, app.ScheduleInput{
		Scope:            maintenance.ScopeGlobal,
		CycleMonths:      &cycle,
		NotifyBeforeDays: 3,
		Title:            "Бойлер",
		NextDueAt:        &due,
	})
	require.NoError(t, err)

	return &botEnv{api: api, bot: b, maintenance: maintenanceService, loc: loc, boiler: boiler}
}

func (e *botEnv) command(senderID int64, text string) {
	e.bot.ProcessUpdate(telebot.Update{Message: &telebot.Message{
		ID:     1,
		Sender: &telebot.User{ID: senderID, FirstName: "Анна"},
		Chat:   &telebot.Chat{ID: senderID, Type: telebot.ChatPrivate},
		Text:   text,
	}})
}

func (e *botEnv) press(senderID int64, unique string, data ...string) {
	e.bot.ProcessUpdate(telebot.Update{Callback: &telebot.Callback{
		ID:      "cb-1",
		Sender:  &telebot.User{ID: senderID},
		Message: &telebot.Message{ID: 7, Chat: &telebot.Chat{ID: testChatID}, Text: "Плановое обслуживание #1: Бойлер"},
		Data:    "\f" + unique + "|" + strings.Join(data, "|"),
	}})
}

func (e *botEnv) reload(t *testing.T) *maintenance.Schedule {
	t.Helper()
	s, err := e.maintenance.GetSchedule(context.Background(), e.boiler.ID)
	require.NoError(t, err)
	return s
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestDoneCallback_ReportsNextDueInServiceZone(t *testing.T) {
	env := newBotEnv(t)

	env.press(testAdminID, uniqueDone, idString(env.boiler.ID))

	assert.Equal(t, []string{"Готово!"}, env.api.texts("answerCallbackQuery"))
	edited := env.api.lastText(t, "editMessageText")
	assert.True(t, strings.HasPrefix(edited, "Плановое обслуживание #1: Бойлер\n\n"))
	assert.Contains(t, edited, "Следующий срок: 2025-04-15.")

	updated := env.reload(t)
	require.True(t, updated.NextDueAt.Valid)
	assert.Equal(t, "2025-04-14", updated.NextDueAt.Time.UTC().Format("2006-01-02"))
}

func TestDoneCallback_MissingSchedule(t *testing.T) {
	env := newBotEnv(t)

	env.press(testAdminID, uniqueDone, "999")

	assert.Equal(t, []string{"Работа не найдена (возможно, удалена)."}, env.api.texts("answerCallbackQuery"))
	assert.Empty(t, env.api.texts("editMessageText"))
}

func TestCallbacks_RejectNonAdmin(t *testing.T) {
	env := newBotEnv(t)

	env.press(testStrangerID, uniqueDone, idString(env.boiler.ID))
	env.press(testStrangerID, uniqueSkip, idString(env.boiler.ID), "20250115")

	for _, text := range env.api.texts("answerCallbackQuery") {
		assert.Equal(t, "У вас нет прав для этого действия.", text)
	}
	assert.Len(t, env.api.texts("answerCallbackQuery"), 2)
	assert.Empty(t, env.api.texts("editMessageText"))

	assert.False(t, env.reload(t).LastDoneAt.Valid)
	skips, err := env.maintenance.ListSkips(context.Background(), env.boiler.ID)
	require.NoError(t, err)
	assert.Empty(t, skips)
}

func TestSkipCallback_RecordsOnce(t *testing.T) {
	env := newBotEnv(t)
	skipped := metrics.Skips.WithLabelValues("telegram")
	before := testutil.ToFloat64(skipped)

	env.press(testAdminID, uniqueSkip, idString(env.boiler.ID), "20250115")
	env.press(testAdminID, uniqueSkip, idString(env.boiler.ID), "20250115")

	assert.Equal(t, []string{"Пропущено.", "Пропущено."}, env.api.texts("answerCallbackQuery"))
	assert.Contains(t, env.api.lastText(t, "editMessageText"), "Напоминание на 2025-01-15 пропущено.")
	assert.Equal(t, before+1, testutil.ToFloat64(skipped))

	skips, err := env.maintenance.ListSkips(context.Background(), env.boiler.ID)
	require.NoError(t, err)
	require.Len(t, skips, 1)
	assert.Equal(t, "2025-01-15", skips[0].DueDate.String())
}

func TestSkipCallback_BadPayload(t *testing.T) {
	env := newBotEnv(t)

	env.press(testAdminID, uniqueSkip, idString(env.boiler.ID))

	assert.Equal(t, []string{"Ошибка обработки ответа."}, env.api.texts("answerCallbackQuery"))
}

func TestDoneCommand(t *testing.T) {
	env := newBotEnv(t)

	env.command(testStrangerID, "/done "+idString(env.boiler.ID))
	assert.Equal(t, "Ошибка: У вас нет прав для выполнения этой команды.", env.api.lastText(t, "sendMessage"))
	assert.False(t, env.reload(t).LastDoneAt.Valid)

	env.command(testAdminID, "/done 999")
	assert.Equal(t, "Работа с ID 999 не найдена.", env.api.lastText(t, "sendMessage"))

	env.command(testAdminID, "/done")
	assert.Contains(t, env.api.lastText(t, "sendMessage"), "Неверный формат команды")

	env.command(testAdminID, "/done "+idString(env.boiler.ID))
	assert.Contains(t, env.api.lastText(t, "sendMessage"), "Следующий срок: 2025-04-15.")
	assert.True(t, env.reload(t).LastDoneAt.Valid)
}

func TestSkipCommand(t *testing.T) {
	env := newBotEnv(t)
	id := idString(env.boiler.ID)

	env.command(testAdminID, "/skip 999 2025-01-15")
	assert.Equal(t, "Работа с ID 999 не найдена.", env.api.lastText(t, "sendMessage"))

	env.command(testAdminID, "/skip "+id+" 15.01.2025")
	assert.Contains(t, env.api.lastText(t, "sendMessage"), "Неверный формат команды")

	env.command(testAdminID, "/skip "+id+" 2025-01-15")
	assert.Equal(t, "Напоминание о работе #"+id+" на 2025-01-15 пропущено.", env.api.lastText(t, "sendMessage"))

	env.command(testAdminID, "/skip "+id+" 2025-01-15")
	assert.Equal(t, "Срок 2025-01-15 для работы #"+id+" уже был пропущен.", env.api.lastText(t, "sendMessage"))
}

func TestDueAndUpcomingCommands(t *testing.T) {
	env := newBotEnv(t)

	env.command(testAdminID, "/due")
	due := env.api.lastText(t, "sendMessage")
	assert.Contains(t, due, "Бойлер: 2025-01-15 (сегодня)")

	env.command(testAdminID, "/upcoming")
	assert.Contains(t, env.api.lastText(t, "sendMessage"), "Бойлер: 2025-01-15")

	env.command(testAdminID, "/upcoming 99999")
	assert.Equal(t, "Количество дней должно быть от 0 до 3650.", env.api.lastText(t, "sendMessage"))

	env.command(testAdminID, "/upcoming soon")
	assert.Contains(t, env.api.lastText(t, "sendMessage"), "Неверный формат команды")

	env.api.reset()
	env.command(testStrangerID, "/due")
	assert.Equal(t, []string{"Ошибка: У вас нет прав для выполнения этой команды."}, env.api.texts("sendMessage"))
}

func TestStartAndHelpCommands(t *testing.T) {
	env := newBotEnv(t)

	env.command(testAdminID, "/start")
	assert.Contains(t, env.api.lastText(t, "sendMessage"), "Привет, Анна!")

	env.command(testStrangerID, "/start")
	assert.Contains(t, env.api.lastText(t, "sendMessage"), "только администратору")

	env.command(testAdminID, "/help")
	assert.Equal(t, adminHelpText(), env.api.lastText(t, "sendMessage"))

	env.command(testStrangerID, "/help")
	assert.Equal(t, "Доступных команд для вас нет. Обратитесь к администратору.", env.api.lastText(t, "sendMessage"))
}
