package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cosmograph/cosmograph/pkg/extract"
	"github.com/cosmograph/cosmograph/pkg/graph"
	"github.com/cosmograph/cosmograph/pkg/patterns"
	"github.com/cosmograph/cosmograph/pkg/service"
)

var (
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
)

var generateFlags struct {
	output       string
	title        string
	extractor    string
	patternsFile string
	htmlOnly     bool
	jsonOut      bool
	noConfirm    bool
	model        string
}

var generateCmd = &cobra.Command{
	Use:   "generate [files or directories]",
	Short: "Extract a knowledge graph from documents",
	Long: `Extracts entities and relationships from the given files (or every
supported file under the given directories) and writes the graph
artifacts to the output directory.

A failing file is logged and skipped; the run continues with the
remaining files. Declining the LLM cost prompt cancels the whole run
without writing any output.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateFlags.output, "output", "o", "output", "Output directory for graph artifacts")
	generateCmd.Flags().StringVarP(&generateFlags.title, "title", "t", "Knowledge Graph", "Graph title shown in the HTML view")
	generateCmd.Flags().StringVarP(&generateFlags.extractor, "extractor", "e", service.StrategyAuto, "Extraction strategy (auto, legal, text, generic, pdf, llm)")
	generateCmd.Flags().StringVarP(&generateFlags.patternsFile, "patterns", "p", "", "YAML pattern file for the generic strategy")
	generateCmd.Flags().BoolVar(&generateFlags.htmlOnly, "html-only", false, "Skip the CSV tables, write only the HTML view")
	generateCmd.Flags().BoolVar(&generateFlags.jsonOut, "json", false, "Also write a JSON snapshot of the graph")
	generateCmd.Flags().BoolVarP(&generateFlags.noConfirm, "no-confirm", "y", false, "Skip the LLM cost confirmation prompt")
	generateCmd.Flags().StringVarP(&generateFlags.model, "model", "m", "", "LLM model for the llm strategy")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger := logrus.StandardLogger()

	files, err := collectInputFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no supported input files found (.txt, .md, .pdf)")
	}

	var config *patterns.Config
	if generateFlags.patternsFile != "" {
		config, err = patterns.Load(generateFlags.patternsFile)
		if err != nil {
			return errors.Wrap(err, "failed to load pattern file")
		}
	}

	svc := service.New(service.Options{
		Config:      config,
		Interactive: !generateFlags.noConfirm,
		Model:       generateFlags.model,
	})

	g := graph.New(generateFlags.title)
	extractor, err := svc.SelectStrategy(generateFlags.extractor, g)
	if err != nil {
		if errors.Is(err, extract.ErrLLMUnavailable) {
			return errors.Wrap(err, "llm strategy requires ANTHROPIC_API_KEY")
		}
		return err
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("Processing %d files with %s strategy", len(files), generateFlags.extractor)))

	failed := 0
	for i, path := range files {
		if !extractor.Supports(path) {
			logger.WithField("file", path).Warn("Skipping unsupported file type")
			continue
		}

		if _, err := extractor.Extract(cmd.Context(), path); err != nil {
			if errors.Is(err, extract.ErrOperatorDeclined) {
				fmt.Println(warnStyle.Render("Extraction cancelled, no output written."))
				return nil
			}
			// One bad file never kills a batch run.
			logger.WithError(err).WithField("file", path).Error("Extraction failed, skipping file")
			failed++
			continue
		}

		fmt.Printf("  [%d/%d] %s\n", i+1, len(files), filepath.Base(path))
	}

	if err := svc.GenerateOutputs(g, service.OutputOptions{
		Dir:      generateFlags.output,
		HTMLOnly: generateFlags.htmlOnly,
		JSON:     generateFlags.jsonOut,
	}); err != nil {
		return err
	}

	stats := g.Stats()
	fmt.Println(successStyle.Render(fmt.Sprintf("Done: %d nodes, %d edges written to %s", stats.Nodes, stats.Edges, generateFlags.output)))
	if failed > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("%d files failed, see the log above", failed)))
	}
	return nil
}

// collectInputFiles expands the argument list into a sorted set of
// supported files. Directory arguments are walked recursively.
func collectInputFiles(args []string) ([]string, error) {
	supported := map[string]bool{".txt": true, ".md": true, ".pdf": true}

	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read input %s", arg)
		}

		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && supported[strings.ToLower(filepath.Ext(path))] {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to walk %s", arg)
		}
	}

	sort.Strings(files)
	return files, nil
}
