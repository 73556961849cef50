package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/evanly-gh/remember-me/internal/analysis"
	"github.com/evanly-gh/remember-me/internal/config"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <image-path>",
	Short: "Run face analysis on a single image",
	Long: `Run the configured analysis engine on one image file and print the
result. Useful for checking engine configuration without starting the
server.

Example:
  remember-me analyze photo.jpg
  remember-me analyze --json photo.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().Bool("json", false, "Print the raw engine result as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("cannot read image file: %w", err)
	}

	engine, err := analysis.NewEngine(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize analysis engine: %w", err)
	}

	result, err := engine.Analyze(cmd.Context(), data)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if mustGetBool(cmd, "json") {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	if !result.Available {
		if result.Error != "" {
			fmt.Printf("Analysis unavailable: %s\n", result.Error)
		} else {
			fmt.Println("Analysis unavailable")
		}
		return nil
	}

	fmt.Printf("Engine: %s\n", engine.Name())
	fmt.Printf("Faces:  %d\n", result.FaceCount)
	for i, face := range result.Faces {
		smile := "not smiling"
		if face.Smiling {
			smile = "smiling"
		}
		fmt.Printf("  face %d: %s, %s\n", i+1, cfg.EmotionLabel(face.PrimaryEmotion), smile)
	}
	return nil
}
