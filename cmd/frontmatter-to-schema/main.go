package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tettuan/frontmatter-to-schema/aggregate"
	"github.com/tettuan/frontmatter-to-schema/internal/logger"
	"github.com/tettuan/frontmatter-to-schema/pipeline"
	"github.com/tettuan/frontmatter-to-schema/schema"
	"github.com/tettuan/frontmatter-to-schema/source"
)

var rootCmd = &cobra.Command{
	Use:   "frontmatter-to-schema",
	Short: "Schema-directed frontmatter transformation",
	Long: `frontmatter-to-schema extracts metadata blocks from text documents,
reshapes them according to a schema carrying x- processing directives, and
renders the results through externally supplied templates into one
consolidated JSON/YAML artifact.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg := logger.DefaultConfig()
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			cfg.Level = slog.LevelDebug
		}
		logger.Init(cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.AddCommand(generateCmd(), inspectCmd())
}

func generateCmd() *cobra.Command {
	var (
		schemaPath  string
		inputGlob   string
		outputPath  string
		format      string
		concurrency int
		sentinel    string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Process documents against a schema and emit the artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			var f aggregate.Format
			if format != "" {
				var err error
				if f, err = aggregate.ParseFormat(format); err != nil {
					return err
				}
			}
			res, err := pipeline.Run(cmd.Context(), pipeline.Options{
				SchemaPath:       schemaPath,
				InputGlob:        inputGlob,
				Format:           f,
				Concurrency:      concurrency,
				FallbackSentinel: sentinel,
			})
			if err != nil {
				return err
			}
			if outputPath == "" || outputPath == "-" {
				_, err = cmd.OutOrStdout().Write(append(res.Artifact, '\n'))
				return err
			}
			return os.WriteFile(outputPath, res.Artifact, 0o644)
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "Schema file (YAML or JSON)")
	cmd.Flags().StringVarP(&inputGlob, "input", "i", "", "Input glob, e.g. 'docs/**/*.md'")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "-", "Output file ('-' for stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Artifact format: json or yaml (defaults to the schema's declared format)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0, "Parallel extraction bound (0 = GOMAXPROCS)")
	cmd.Flags().StringVar(&sentinel, "sentinel", "", "Replacement for unresolved template variables")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func inspectCmd() *cobra.Command {
	var schemaPath string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the resolved schema directives",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := source.ReadFile(schemaPath)
			if err != nil {
				return err
			}
			loader := &schema.Loader{ReadFile: source.ReadFile}
			resolved, err := loader.Load(raw, schemaPath)
			if err != nil {
				return err
			}
			type row struct {
				Kind   string `json:"kind"`
				Intent string `json:"intent"`
				Path   string `json:"path"`
				Value  any    `json:"value"`
			}
			var rows []row
			for _, d := range schema.ExtractDirectives(resolved) {
				rows = append(rows, row{
					Kind:   d.Kind.String(),
					Intent: intentName(d.Kind.Intent()),
					Path:   d.Path.String(),
					Value:  d.Value,
				})
			}
			out, err := json.MarshalIndent(rows, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&schemaPath, "schema", "s", "", "Schema file (YAML or JSON)")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func intentName(i schema.Intent) string {
	switch i {
	case schema.IntentExtraction:
		return "extraction"
	case schema.IntentTemplating:
		return "templating"
	default:
		return "processing"
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
