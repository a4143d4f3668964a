package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muhammadolammi/resumeforge/internal/analyzer"
	"github.com/muhammadolammi/resumeforge/internal/database"
	"github.com/muhammadolammi/resumeforge/internal/export"
	"github.com/muhammadolammi/resumeforge/internal/extract"
	"github.com/muhammadolammi/resumeforge/internal/llm"
	"github.com/muhammadolammi/resumeforge/internal/resume"
	"github.com/muhammadolammi/resumeforge/internal/storage"
	"github.com/muhammadolammi/resumeforge/internal/templates"
)

var (
	jobDescriptionPath string
	templateID         string
	outputPath         string
	category           string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()
		if !cfg.DatabaseEnabled() {
			return fmt.Errorf("empty DB_URL in environment")
		}

		db, err := database.Open(cmd.Context(), cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		logger.Info("database migrated")
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <resume.json|->",
	Short: "Run the LLM ATS analysis on a resume and print the result as JSON",
	Example: `  resumeforge analyze resume.json
  resumeforge analyze resume.json --job-description posting.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readResume(cmd, args[0])
		if err != nil {
			return err
		}
		var jd string
		if jobDescriptionPath != "" {
			if jd, err = readDocument(jobDescriptionPath); err != nil {
				return err
			}
		}

		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()
		if err := cfg.RequireLLM(); err != nil {
			return err
		}
		completer, err := llm.New(cmd.Context(), cfg.LLM, logger)
		if err != nil {
			return err
		}

		analysis, err := analyzer.New(completer, logger).Analyze(cmd.Context(), analyzer.Request{Resume: data, JobDescription: jd})
		if err != nil {
			return err
		}
		logger.Debug("analysis finished", zap.Float64("overall_score", analysis.OverallScore))
		return writeJSON(cmd.OutOrStdout(), analyzer.NewReport(analysis))
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score <resume.json|->",
	Short: "Print the rule-based ATS pre-score of a resume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readResume(cmd, args[0])
		if err != nil {
			return err
		}
		score := resume.Score(data)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ATS score: %d/100 (%s)\n", score, resume.ScoreLabel(score))
		for _, issue := range resume.Issues(data) {
			fmt.Fprintf(out, "  [%s] %s\n", issue.Type, issue.Text)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <resume.json|->",
	Short: "Render a resume to PDF",
	Example: `  resumeforge export resume.json --template 5
  resumeforge export resume.json -o cv.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readResume(cmd, args[0])
		if err != nil {
			return err
		}
		tpl, err := templates.Default().Lookup(templateID)
		if err != nil {
			return err
		}

		path := outputPath
		if path == "" {
			path = resume.Filename(data, ".pdf")
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := export.RenderPDF(f, data, tpl); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s using %q\n", path, tpl.Name)
		return nil
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <object-key>",
	Short: "Download an archived upload and print its text",
	Example: `  resumeforge fetch uploads/resume/<id>/cv.pdf
  resumeforge fetch uploads/resume/<id>/cv.pdf -o cv.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()
		if !cfg.StorageEnabled() {
			return fmt.Errorf("empty R2_BUCKET in environment")
		}
		files, err := storage.New(cmd.Context(), cfg.Storage)
		if err != nil {
			return err
		}

		key := args[0]
		data, err := files.Download(cmd.Context(), key)
		if err != nil {
			return err
		}
		if outputPath != "" {
			if err := os.WriteFile(outputPath, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", outputPath, len(data))
			return nil
		}
		text, err := extract.Text(extract.DetectMIME(filepath.Base(key), "application/octet-stream"), data)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the resume templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tATS\tPOPULAR")
		for _, t := range templates.Default().Filter(category) {
			popular := ""
			if t.Popular {
				popular = "yes"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%d%%\t%s\n", t.ID, t.Name, t.Category, t.ATSScore, popular)
		}
		return w.Flush()
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&jobDescriptionPath, "job-description", "j", "", "job description file (txt, pdf, docx or html)")
	exportCmd.Flags().StringVarP(&templateID, "template", "t", strconv.Itoa(1), "template id")
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: <name>.pdf)")
	fetchCmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the raw file here instead of printing its text")
	templatesCmd.Flags().StringVar(&category, "category", templates.AllCategories, "only list templates in this category")
}

// readResume decodes resume JSON from path, or stdin for "-".
func readResume(cmd *cobra.Command, path string) (resume.Data, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return resume.Data{}, err
		}
		defer f.Close()
		r = f
	}
	data, err := resume.Decode(r)
	if err != nil {
		return resume.Data{}, err
	}
	if err := data.Validate(); err != nil {
		return resume.Data{}, err
	}
	return data, nil
}

func readDocument(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return extract.Text(extract.DetectMIME(filepath.Base(path), "text/plain"), raw)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
