package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/stockscore/backend/internal/contracts"
	"github.com/wonny/stockscore/backend/internal/valuation"
)

var allModels = []contracts.ValuationModel{
	contracts.ModelGrowth,
	contracts.ModelDividend,
	contracts.ModelAsset,
}

func newFairValueCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "fairvalue SYMBOL",
		Short: "적정가 계산",
		Long: `GROWTH / DIVIDEND / ASSET 모델로 적정가를 계산합니다.
--model 을 생략하면 세 모델을 모두 출력합니다.

Example:
  go run ./cmd/stockscore fairvalue KO
  go run ./cmd/stockscore fairvalue MMM --model asset --price 95`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := opts.parsedModel()
			if err != nil {
				return err
			}
			models := allModels
			if model != "" {
				models = []contracts.ValuationModel{model}
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

			params := a.engine.Params()
			estimates := make([]contracts.FairValueEstimate, 0, len(models))
			for _, mdl := range models {
				estimates = append(estimates, valuation.EstimateFairValue(m, mdl, valuation.FairValueParams{
					CurrentPrice:   in.CurrentPrice,
					ExpectedReturn: params.ExpectedReturn,
					PBThreshold:    params.PBThreshold,
				}))
			}

			w := cmd.OutOrStdout()
			if opts.asJSON {
				return printJSON(w, estimates)
			}
			printHeader(w, fmt.Sprintf("%s  Fair Value", m.Symbol))
			for i, fv := range estimates {
				if i > 0 {
					fmt.Fprintln(w, singleRule)
				}
				printFairValue(w, fv)
			}
			fmt.Fprintln(w, doubleRule)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of tables")
	cmd.Flags().StringVar(&opts.model, "model", "", "growth|dividend|asset (default: all)")
	opts.bind(cmd)
	return cmd
}
