package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanly-gh/remember-me/internal/analysis"
	"github.com/evanly-gh/remember-me/internal/capture"
	"github.com/evanly-gh/remember-me/internal/config"
	"github.com/evanly-gh/remember-me/internal/store/blob"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <owner-id> <folder-path> [folder-path...]",
	Short: "Import photos from folders as records",
	Long: `Import photos from one or more folders as records for an owner.

By default, only files in the specified folders are imported (non-recursive)
and each record's name is derived from the file name. Use -r to search
recursively in subdirectories, --name to use one name for every record,
and --analyze to run face analysis per photo and print a summary.

Example:
  remember-me import user-123 /path/to/photos
  remember-me import -r --name "Grandma Vera" user-123 /path/to/photos`,
	Args: cobra.MinimumNArgs(2),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolP("recursive", "r", false, "Search for photos recursively in subdirectories")
	importCmd.Flags().String("name", "", "Name to use for every imported record (default: file name)")
	importCmd.Flags().Bool("analyze", false, "Run face analysis per photo and print a summary")
}

// isImageFile checks if a file has a supported image extension.
func isImageFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	supported := map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".heic": true,
		".heif": true,
		".webp": true,
	}
	return supported[ext]
}

// collectImageFiles gathers image paths from the folders, optionally recursing.
func collectImageFiles(folderPaths []string, recursive bool) ([]string, error) {
	var filePaths []string
	for _, folderPath := range folderPaths {
		info, err := os.Stat(folderPath)
		if err != nil {
			return nil, fmt.Errorf("cannot access folder %s: %w", folderPath, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", folderPath)
		}

		if recursive {
			err := filepath.WalkDir(folderPath, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && isImageFile(d.Name()) {
					filePaths = append(filePaths, path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("cannot walk folder %s: %w", folderPath, err)
			}
		} else {
			entries, err := os.ReadDir(folderPath)
			if err != nil {
				return nil, fmt.Errorf("cannot read folder %s: %w", folderPath, err)
			}
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				if isImageFile(entry.Name()) {
					filePaths = append(filePaths, filepath.Join(folderPath, entry.Name()))
				}
			}
		}
	}
	return filePaths, nil
}

func importBar(count int) *progressbar.ProgressBar {
	return progressbar.NewOptions(count,
		progressbar.OptionSetDescription("Importing"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func runImport(cmd *cobra.Command, args []string) error {
	ownerID := args[0]
	folderPaths := args[1:]
	recursive := mustGetBool(cmd, "recursive")
	fixedName := mustGetString(cmd, "name")
	runAnalysis := mustGetBool(cmd, "analyze")

	cfg := config.Load()

	filePaths, err := collectImageFiles(folderPaths, recursive)
	if err != nil {
		return err
	}
	if len(filePaths) == 0 {
		fmt.Println("No image files found in the specified folders.")
		return nil
	}

	fmt.Printf("Found %d image(s) to import from %d folder(s)\n", len(filePaths), len(folderPaths))

	records, closeStore, err := initRecordStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	blobs, err := blob.NewLocalStore(&cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize photo storage: %w", err)
	}

	var engine analysis.Engine
	if runAnalysis {
		engine, err = analysis.NewEngine(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize analysis engine: %w", err)
		}
	}

	ctx := context.Background()
	bar := importBar(len(filePaths))

	var importErrors []string
	var summaries []string
	for _, filePath := range filePaths {
		fileName := filepath.Base(filePath)

		data, err := os.ReadFile(filePath)
		if err != nil {
			importErrors = append(importErrors, fmt.Sprintf("%s: %v", fileName, err))
			bar.Add(1)
			continue
		}

		name := fixedName
		if name == "" {
			name = strings.TrimSuffix(fileName, filepath.Ext(fileName))
		}

		session := capture.NewSession(ownerID, nil, records, blobs)
		session.Capture(ctx, data, capture.Form{Name: name})
		if _, err := session.Submit(ctx); err != nil {
			importErrors = append(importErrors, fmt.Sprintf("%s: %v", fileName, err))
			bar.Add(1)
			continue
		}

		if engine != nil {
			summaries = append(summaries, analyzeSummary(ctx, cfg, engine, fileName, data))
		}
		bar.Add(1)
	}
	fmt.Println()

	for _, errMsg := range importErrors {
		fmt.Printf("Failed: %s\n", errMsg)
	}
	for _, line := range summaries {
		fmt.Println(line)
	}

	imported := len(filePaths) - len(importErrors)
	if imported == 0 {
		return fmt.Errorf("no files were imported successfully")
	}
	fmt.Printf("\nDone! Imported %d record(s) for owner %s\n", imported, ownerID)
	return nil
}

// analyzeSummary runs analysis on one photo and formats a single result line.
func analyzeSummary(ctx context.Context, cfg *config.Config, engine analysis.Engine, fileName string, data []byte) string {
	result, err := engine.Analyze(ctx, data)
	if err != nil {
		return fmt.Sprintf("%s: analysis failed (%v)", fileName, err)
	}
	if !result.Available {
		return fmt.Sprintf("%s: analysis unavailable", fileName)
	}
	if result.FaceCount == 0 {
		return fmt.Sprintf("%s: no faces detected", fileName)
	}

	var moods []string
	for _, face := range result.Faces {
		moods = append(moods, cfg.EmotionLabel(face.PrimaryEmotion))
	}
	return fmt.Sprintf("%s: %d face(s), %s", fileName, result.FaceCount, strings.Join(moods, ", "))
}
