package commands

import (
	"github.com/spf13/cobra"
)

// rootOptions are the global flags
type rootOptions struct {
	analysisConfig string
	verbose        bool
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "stockscore",
		Short: "Fundamental scoring and fair value for dividend stocks",
		Long: `stockscore CLI

재무 이력으로 신뢰도/배당/가치 점수와 적정가를 계산합니다.
데이터는 METRICS_DIR (JSON 파일) 또는 METRICS_BASE_URL 에서 읽습니다.

Usage:
  go run ./cmd/stockscore [command]

Examples:
  go run ./cmd/stockscore analyze KO
  go run ./cmd/stockscore analyze KO --price 58.2 --json
  go run ./cmd/stockscore fairvalue MMM --model asset
  go run ./cmd/stockscore watch --once
  go run ./cmd/stockscore config check`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.analysisConfig, "analysis", "", "analysis YAML (default: $ANALYSIS_CONFIG)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newFairValueCmd(opts),
		newWatchCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

// Execute runs the root command.
// This is called by main.main().
func Execute() error {
	return NewRootCmd().Execute()
}
