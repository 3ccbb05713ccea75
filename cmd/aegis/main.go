package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/raykavin/aegis/ai"
	"github.com/raykavin/aegis/config"
	"github.com/raykavin/aegis/core"
	"github.com/raykavin/aegis/exchange"
	"github.com/raykavin/aegis/logger"
	zlog "github.com/raykavin/aegis/logger/zerolog"
	"github.com/raykavin/aegis/notification"
	"github.com/raykavin/aegis/order"
	"github.com/raykavin/aegis/report"
	"github.com/raykavin/aegis/storage"
	"github.com/raykavin/aegis/strategy"
	"github.com/spf13/cobra"
)

var (
	configPath        string
	positionStorePath string
	tradeStorePath    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "aegis",
		Short:   "Autonomous crypto spot-trading agent",
		Version: "1.0.0",
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file (env AEGIS_* also read)")
	rootCmd.PersistentFlags().StringVar(&positionStorePath, "position-store", "positions.db", "Path to the buntdb position snapshot")
	rootCmd.PersistentFlags().StringVar(&tradeStorePath, "trade-store", "trades.db", "Path to the SQLite trade-history database")

	rootCmd.AddCommand(buildRunCmd())
	rootCmd.AddCommand(buildReportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the trading engine",
		RunE:  runEngine,
	}
}

func buildReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print a performance summary from the trade history",
		RunE:  runReport,
	}
}

func runEngine(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	log, err := zlog.NewZerolog("info", "2006-01-02 15:04:05", true, false)
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}

	configs, err := config.NewStore(configPath, log)
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	snap := configs.Snapshot()

	exch, err := exchange.New(
		ctx,
		os.Getenv("AEGIS_BINANCE_API_KEY"),
		os.Getenv("AEGIS_BINANCE_API_SECRET"),
		snap.ExchangeCallTimeout,
		os.Getenv("AEGIS_BINANCE_TESTNET") == "true",
	)
	if err != nil {
		return fmt.Errorf("exchange init: %w", err)
	}

	ensemble := buildEnsemble(snap, log)
	evaluator := strategy.NewEvaluator()

	positionStore, err := storage.OpenBuntPositionStore(positionStorePath)
	if err != nil {
		return fmt.Errorf("position store open: %w", err)
	}
	defer positionStore.Close()

	tradeStore, err := storage.OpenSQLTradeStore(tradeStorePath)
	if err != nil {
		return fmt.Errorf("trade store open: %w", err)
	}
	defer tradeStore.Close()

	engine := order.New(exch, ensemble, evaluator, configs, positionStore, tradeStore, nil, log)

	notifier := buildNotifier(engine, log)
	engine.SetNotifier(notifier)
	if withStart, ok := notifier.(core.NotifierWithStart); ok {
		withStart.Start()
	}

	reconReport, err := engine.LoadAndReconcile(ctx)
	if err != nil {
		return fmt.Errorf("crash recovery: %w", err)
	}
	if !reconReport.Clean() {
		log.WithField("untracked", reconReport.Untracked).WithField("orphaned", reconReport.Orphaned).Warn("startup reconciliation found discrepancies")
	}

	engine.Start()
	log.Info("aegis trading engine running, press Ctrl+C to stop")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	engine.Stop()
	log.Info("aegis trading engine stopped")
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	tradeStore, err := storage.OpenSQLTradeStore(tradeStorePath)
	if err != nil {
		return fmt.Errorf("trade store open: %w", err)
	}
	defer tradeStore.Close()

	trades, err := tradeStore.RecentTrades(1_000_000)
	if err != nil {
		return fmt.Errorf("trade history query: %w", err)
	}

	summary := report.BuildSummary(trades)
	summary.WriteAll(os.Stdout)
	return nil
}

// buildEnsemble wires the four concrete scorers from the config snapshot's
// weights and enablement flags.
func buildEnsemble(snap *config.Snapshot, log logger.Logger) *ai.Ensemble {
	sentiment := ai.NewSentimentScorer(nil, snap.AIWeights.Sentiment, snap.AIModelEnabled.Sentiment)
	technical := ai.NewTechnicalScorer(snap.AIWeights.Technical, snap.AIModelEnabled.Technical)
	macro := ai.NewMacroScorer(snap.AIWeights.Macro, snap.AIModelEnabled.Macro)
	llm := ai.NewLLMValidator(
		os.Getenv("AEGIS_OPENAI_API_KEY"),
		snap.AIModelURL,
		snap.AIModelName,
		snap.LLMTimeout,
		snap.AIWeights.LLM,
		snap.AIModelEnabled.LLM,
		log,
	)

	return ai.NewEnsemble(snap.AIEnsembleEnabled, sentiment, technical, macro, llm)
}

// buildNotifier wires Telegram when a bot token is configured, falling back
// to email, falling back to nil (best-effort alerting is optional).
func buildNotifier(engine notification.EngineControl, log logger.Logger) core.Notifier {
	if token := os.Getenv("AEGIS_TELEGRAM_TOKEN"); token != "" {
		users := parseUserIDs(os.Getenv("AEGIS_TELEGRAM_USERS"))
		telegram, err := notification.NewTelegram(engine, token, users)
		if err != nil {
			log.WithError(err).Error("telegram notifier init failed, continuing without it")
			return nil
		}
		return telegram
	}

	if addr := os.Getenv("AEGIS_SMTP_ADDRESS"); addr != "" {
		port, _ := strconv.Atoi(os.Getenv("AEGIS_SMTP_PORT"))
		mail := notification.NewMail(notification.MailParams{
			SMTPServerAddress: addr,
			SMTPServerPort:    port,
			From:              os.Getenv("AEGIS_SMTP_FROM"),
			To:                os.Getenv("AEGIS_SMTP_TO"),
			Password:          os.Getenv("AEGIS_SMTP_PASSWORD"),
		})
		return mail
	}

	return nil
}

func parseUserIDs(raw string) []int {
	if raw == "" {
		return nil
	}
	var out []int
	for _, field := range strings.Split(raw, ",") {
		if id, err := strconv.Atoi(strings.TrimSpace(field)); err == nil {
			out = append(out, id)
		}
	}
	return out
}
