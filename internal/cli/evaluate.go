package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/IANDYI/maternal-care-service/internal/core/domain"
	"github.com/IANDYI/maternal-care-service/internal/core/rules"
	"github.com/spf13/cobra"
)

// EvaluateOptions holds flags of the evaluate command.
type EvaluateOptions struct {
	File string
	Risk bool
}

// RiskReport is the printed form of a risk analysis
type RiskReport struct {
	DiseaseAnalysis map[string]domain.ConditionAnalysis `json:"disease_analysis"`
	Notifications   []string                            `json:"notifications"`
}

// NewEvaluateCommand creates the evaluate command.
func NewEvaluateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvaluateOptions{}

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a symptom snapshot",
		Long: `Decode a symptom snapshot from a JSON file and print the matched
recommendations. With --risk the per-condition risk analysis is printed
instead. Use "-" to read the snapshot from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "snapshot JSON file (- for stdin)")
	cmd.Flags().BoolVar(&opts.Risk, "risk", false, "print the risk analysis instead of recommendations")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runEvaluate(opts *EvaluateOptions, cmd *cobra.Command) error {
	snapshot, err := readSnapshot(opts.File, cmd.InOrStdin())
	if err != nil {
		return err
	}

	engine := rules.NewEngine()
	var out any
	if opts.Risk {
		analysis := engine.Assess(snapshot)
		out = RiskReport{DiseaseAnalysis: analysis.DiseaseAnalysis(), Notifications: analysis.Notifications}
	} else {
		out = engine.Evaluate(snapshot)
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return err
}

func readSnapshot(path string, stdin io.Reader) (domain.SymptomSnapshot, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return domain.SymptomSnapshot{}, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot domain.SymptomSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return domain.SymptomSnapshot{}, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return snapshot, nil
}
