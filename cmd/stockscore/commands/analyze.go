package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/stockscore/backend/internal/contracts"
)

// analyzeOptions are the analyze/fairvalue flags
type analyzeOptions struct {
	asJSON bool
	model  string
	price  float64
	pe     float64
	yield  float64
}

// bind registers the market override flags
func (o *analyzeOptions) bind(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&o.price, "price", 0, "current price (overrides quotes file)")
	cmd.Flags().Float64Var(&o.pe, "pe", 0, "trailing P/E (overrides quotes file)")
	cmd.Flags().Float64Var(&o.yield, "yield", 0, "dividend yield, decimal (overrides quotes file)")
}

// overrides returns only the flags the user actually set
func (o *analyzeOptions) overrides(cmd *cobra.Command) marketOverrides {
	var mo marketOverrides
	if cmd.Flags().Changed("price") {
		mo.price = &o.price
	}
	if cmd.Flags().Changed("pe") {
		mo.pe = &o.pe
	}
	if cmd.Flags().Changed("yield") {
		mo.yield = &o.yield
	}
	return mo
}

// parsedModel validates --model; empty means the engine default
func (o *analyzeOptions) parsedModel() (contracts.ValuationModel, error) {
	if o.model == "" {
		return "", nil
	}
	return contracts.ParseValuationModel(o.model)
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze SYMBOL",
		Short: "종목 점수 분석",
		Long: `신뢰도, 배당, 가치 점수와 적정가를 계산합니다.

시세(가격/PER/배당수익률)는 QUOTES_FILE 에서 읽고 플래그로 덮어쓸 수 있습니다.

Example:
  go run ./cmd/stockscore analyze KO
  go run ./cmd/stockscore analyze KO --price 58.2 --model dividend
  go run ./cmd/stockscore analyze KO --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := opts.parsedModel()
			if err != nil {
				return err
			}

			a, err := newApp(root)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			m, err := a.metrics.Fetch(ctx, args[0])
			if err != nil {
				return err
			}

			in, err := a.inputs(ctx, m.Symbol, model, opts.overrides(cmd))
			if err != nil {
				return err
			}

			result, err := a.engine.Analyze(ctx, m, in)
			if err != nil {
				return err
			}

			if opts.asJSON {
				return printJSON(cmd.OutOrStdout(), result)
			}
			printAnalysis(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of tables")
	cmd.Flags().StringVar(&opts.model, "model", "", "fair value model: growth|dividend|asset")
	opts.bind(cmd)
	return cmd
}
