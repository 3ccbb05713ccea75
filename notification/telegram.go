// Package notification implements core.Notifier/core.NotifierWithStart for
// Telegram and email. The Telegram bot exposes the engine's status,
// position and trade reads plus start/stop (no order placement from chat).
package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/raykavin/aegis/core"
	"github.com/raykavin/aegis/format"
	log "github.com/sirupsen/logrus"
	tb "gopkg.in/tucnak/telebot.v2"
)

// EngineControl is the subset of the trading engine's control plane the
// Telegram bot exposes to operators: three reads plus Start and Stop. Defined here, by the
// consumer, rather than imported from the engine package, to avoid a
// storage/notification -> engine import cycle.
type EngineControl interface {
	Status() string
	Positions() []core.Position
	RecentTrades(limit int) []core.TradeRecord
	Start()
	Stop()
}

// Telegram implements core.NotifierWithStart.
type Telegram struct {
	engine      EngineControl
	users       []int
	defaultMenu *tb.ReplyMarkup
	client      *tb.Bot
}

// NewTelegram creates and wires a new Telegram bot. users is the
// authorized Telegram user-ID allowlist.
func NewTelegram(engine EngineControl, token string, users []int) (*Telegram, error) {
	menu := &tb.ReplyMarkup{ResizeReplyKeyboard: true}
	poller := &tb.LongPoller{Timeout: 10 * time.Second}

	authMiddleware := tb.NewMiddlewarePoller(poller, func(u *tb.Update) bool {
		if u.Message == nil || u.Message.Sender == nil {
			log.Error("telegram update has no sender")
			return false
		}
		for _, id := range users {
			if int64(id) == u.Message.Sender.ID {
				return true
			}
		}
		log.WithField("sender", u.Message.Sender.ID).Error("unauthorized telegram user")
		return false
	})

	client, err := tb.NewBot(tb.Settings{
		ParseMode: tb.ModeMarkdown,
		Token:     token,
		Poller:    authMiddleware,
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	statusBtn := menu.Text("/status")
	positionsBtn := menu.Text("/positions")
	profitBtn := menu.Text("/profit")
	startBtn := menu.Text("/start")
	stopBtn := menu.Text("/stop")
	menu.Reply(
		menu.Row(statusBtn, positionsBtn, profitBtn),
		menu.Row(startBtn, stopBtn),
	)

	if err := client.SetCommands([]tb.Command{
		{Text: "status", Description: "Engine status"},
		{Text: "positions", Description: "List open positions"},
		{Text: "profit", Description: "Recent trade history"},
		{Text: "start", Description: "Start the trading engine"},
		{Text: "stop", Description: "Stop the trading engine"},
	}); err != nil {
		return nil, fmt.Errorf("set telegram commands: %w", err)
	}

	t := &Telegram{engine: engine, users: users, client: client, defaultMenu: menu}

	client.Handle("/status", t.statusHandle)
	client.Handle("/positions", t.positionsHandle)
	client.Handle("/profit", t.profitHandle)
	client.Handle("/start", t.startHandle)
	client.Handle("/stop", t.stopHandle)

	return t, nil
}

// Start begins the long-polling loop and announces readiness.
func (t *Telegram) Start() {
	go t.client.Start()
	t.Notify("Bot initialized.")
}

// Notify broadcasts text to every authorized user.
func (t *Telegram) Notify(text string) {
	for _, user := range t.users {
		if _, err := t.client.Send(&tb.User{ID: int64(user)}, text); err != nil {
			log.WithError(err).Error("telegram notify failed")
		}
	}
}

// OnCritical broadcasts a severity-tagged message to every registered user.
func (t *Telegram) OnCritical(message string) {
	t.Notify("🛑 CRITICAL\n-----\n" + message)
}

// OnError broadcasts a formatted error.
func (t *Telegram) OnError(err error) {
	t.Notify("⚠️ ERROR\n-----\n" + err.Error())
}

func (t *Telegram) statusHandle(m *tb.Message) {
	t.reply(m, fmt.Sprintf("Status: `%s`", t.engine.Status()))
}

func (t *Telegram) positionsHandle(m *tb.Message) {
	positions := t.engine.Positions()
	if len(positions) == 0 {
		t.reply(m, "No open positions.")
		return
	}

	var sb strings.Builder
	sb.WriteString("*OPEN POSITIONS*\n")
	for _, p := range positions {
		fmt.Fprintf(&sb, "%s `%s` entry %s qty %s\n", p.Symbol, p.Strategy, format.Price(p.EntryPrice), p.Quantity.String())
	}
	t.reply(m, sb.String())
}

func (t *Telegram) profitHandle(m *tb.Message) {
	trades := t.engine.RecentTrades(10)
	if len(trades) == 0 {
		t.reply(m, "No trades registered.")
		return
	}

	var sb strings.Builder
	sb.WriteString("*RECENT TRADES*\n")
	for _, tr := range trades {
		pnl := "-"
		if tr.PnLPercent != nil {
			pnl = tr.PnLPercent.StringFixed(2) + "%"
		}
		fmt.Fprintf(&sb, "%s %s %s qty %s pnl %s\n", tr.Timestamp.Format(time.RFC3339), tr.Symbol, tr.Action, tr.Quantity.String(), pnl)
	}
	t.reply(m, sb.String())
}

func (t *Telegram) startHandle(m *tb.Message) {
	t.engine.Start()
	t.reply(m, "Engine started.")
}

func (t *Telegram) stopHandle(m *tb.Message) {
	t.engine.Stop()
	t.reply(m, "Engine stopped.")
}

func (t *Telegram) reply(m *tb.Message, text string) {
	if _, err := t.client.Send(m.Sender, text); err != nil {
		log.WithError(err).Error("telegram reply failed")
	}
}
