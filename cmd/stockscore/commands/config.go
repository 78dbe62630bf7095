package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/stockscore/backend/internal/analysisconfig"
	"github.com/wonny/stockscore/backend/pkg/config"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "설정 관리",
	}

	check := &cobra.Command{
		Use:   "check [PATH]",
		Short: "analysis YAML 검증",
		Long: `analysis YAML 을 검증하고 파라미터 해시와 경고를 출력합니다.
PATH 를 생략하면 --analysis 또는 $ANALYSIS_CONFIG 를 사용합니다.

Example:
  go run ./cmd/stockscore config check
  go run ./cmd/stockscore config check configs/analysis.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := resolveAnalysisPath(root, args)

			cfg, _, err := analysisconfig.Load(path)
			if err != nil {
				return err
			}
			hash, err := analysisconfig.Hash(cfg)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printHeader(w, "Analysis Config")
			printKeyValue(w, "Path", path, 10)
			printKeyValue(w, "Profile", fmt.Sprintf("%s (v%s)", cfg.Meta.ProfileID, cfg.Meta.Version), 10)
			printKeyValue(w, "Hash", hash, 10)
			printKeyValue(w, "Model", fmt.Sprintf("%s (watch: %s)", cfg.Engine.DefaultModel, cfg.WatchModel()), 10)
			printKeyValue(w, "Watchlist", fmt.Sprintf("%d symbols", len(cfg.Watch.Symbols)), 10)

			warnings := analysisconfig.Warn(cfg)
			for _, wn := range warnings {
				fmt.Fprintf(w, "⚠️  %s: %s\n", wn.Code, wn.Message)
			}
			fmt.Fprintln(w, singleRule)
			fmt.Fprintf(w, "✅ valid (%d warnings)\n", len(warnings))
			return nil
		},
	}

	cmd.AddCommand(check)
	return cmd
}

// resolveAnalysisPath picks PATH arg, then --analysis, then the env default
func resolveAnalysisPath(root *rootOptions, args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	if root.analysisConfig != "" {
		return root.analysisConfig
	}
	// config.Load 은 메트릭 소스를 요구하므로 경로만 읽는다
	return config.AnalysisConfigPath()
}
