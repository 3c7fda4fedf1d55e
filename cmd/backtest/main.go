package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/equity-backtest/internal/backtest"
	"github.com/rxtech-lab/equity-backtest/internal/datasource"
	"github.com/rxtech-lab/equity-backtest/internal/logger"
	"github.com/rxtech-lab/equity-backtest/internal/strategy"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// runConfig is the on-disk shape of a backtest run: engine parameters
// plus the strategy selection.
type runConfig struct {
	Engine   backtest.Config `yaml:"engine"`
	Strategy strategy.Config `yaml:"strategy"`
}

// resolveRunConfig layers the YAML config over the defaults and applies
// the explicit --strategy override on top. The flag only wins when the
// user actually set it, so a strategy chosen in the config file
// survives the flag's default value.
func resolveRunConfig(content []byte, override optional.Option[string]) (runConfig, error) {
	config := runConfig{Engine: backtest.DefaultConfig()}

	if len(content) > 0 {
		if err := yaml.Unmarshal(content, &config); err != nil {
			return runConfig{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if override.IsSome() {
		config.Strategy.Type = override.Unwrap()
	}

	if config.Strategy.Type == "" {
		config.Strategy.Type = strategy.TypeMACross
	}

	return config, nil
}

// backtestAction is the core logic executed by the CLI command.
// It loads bars from the CSV file, runs the strategy and writes the
// result to the output directory.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	dataPath := cmd.String("data")
	symbol := cmd.String("symbol")
	configPath := cmd.String("config")
	outputDir := cmd.String("output")

	var content []byte

	if configPath != "" {
		var err error

		content, err = os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	override := optional.None[string]()
	if cmd.IsSet("strategy") {
		override = optional.Some(cmd.String("strategy"))
	}

	config, err := resolveRunConfig(content, override)
	if err != nil {
		return err
	}

	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = appLogger.Sync() }()

	strat, err := strategy.FromConfig(config.Strategy)
	if err != nil {
		return fmt.Errorf("failed to build strategy: %w", err)
	}

	engine, err := backtest.NewEngine(config.Engine, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	source, err := datasource.NewCSVBarSource(appLogger)
	if err != nil {
		return fmt.Errorf("failed to open data source: %w", err)
	}
	defer source.Close()

	bars, err := source.Load(dataPath)
	if err != nil {
		return fmt.Errorf("failed to load bars: %w", err)
	}

	bar := progressbar.Default(int64(len(bars)), fmt.Sprintf("Backtesting %s", symbol))
	onBar := optional.Some[backtest.OnBarCallback](func(current, total int) {
		_ = bar.Set(current)
	})

	result, err := engine.Run(symbol, bars, strat, onBar)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	resultYAML, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	resultPath := filepath.Join(outputDir, fmt.Sprintf("%s_%s.yaml", symbol, result.StrategyName))
	if err := os.WriteFile(resultPath, resultYAML, 0o644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	log.Printf("Backtest finished: total return %.2f%%, max drawdown %.2f%%, %d trades. Result written to %s",
		result.TotalReturn*100, result.MaxDrawdown*100, result.TradeCount, resultPath)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Run a trading strategy backtest over historical daily bars",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the OHLCV CSV file",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "symbol",
				Aliases:  []string{"s"},
				Usage:    "Symbol the CSV file belongs to",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the YAML run config (engine + strategy sections)",
				Required: false,
			},
			&cli.StringFlag{
				Name:     "strategy",
				Aliases:  []string{"t"},
				Usage:    fmt.Sprintf("Strategy type (e.g., %s, %s, %s, %s, %s); overrides the config file when set explicitly", strategy.TypeMACross, strategy.TypeRSIThreshold, strategy.TypeMACDCross, strategy.TypeBollingerBreakout, strategy.TypeComposite),
				Value:    strategy.TypeMACross,
				Required: false,
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Directory the result YAML is written to",
				Value:    "results",
				Required: false,
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
