package packguard

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/packguard/packguard/internal/audit"
	"github.com/packguard/packguard/internal/config"
	"github.com/packguard/packguard/internal/progress"
	"github.com/packguard/packguard/internal/report"
	"github.com/packguard/packguard/internal/scan"
	"github.com/packguard/packguard/internal/types"
)

var (
	flagPreset         string
	flagContentRules   string
	flagExtensionRules string
	flagInclude        string
	flagExclude        string
	flagTempRoot       string
	flagKeepScratch    bool
	flagFailOn         string
	flagNoAudit        bool
	flagShowProgress   bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan <package.unitypackage>",
		Short: "Scan an asset package and report findings",
		Args:  cobra.ExactArgs(1),
		RunE:  runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVar(&flagPreset, "preset", "", "rule preset (default: standard)")
	cmd.Flags().StringVar(&flagContentRules, "content-rules", "", "path to a content-rule document (default: bundled)")
	cmd.Flags().StringVar(&flagExtensionRules, "extension-rules", "", "path to an extension-rule document (default: bundled)")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs over logical paths")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs over logical paths")
	cmd.Flags().StringVar(&flagTempRoot, "temp-root", "", "directory for scratch extraction (default: system temp)")
	cmd.Flags().BoolVar(&flagKeepScratch, "keep-scratch", false, "keep the extracted tree on disk and print its path")
	cmd.Flags().StringVar(&flagFailOn, "fail-on", "critical", "exit non-zero on findings at or above: info|warning|critical|never")
	cmd.Flags().BoolVar(&flagNoAudit, "no-audit", false, "do not append this scan to the audit log")
	cmd.Flags().BoolVar(&flagShowProgress, "progress", false, "print progress events to stderr")
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := validateFailOn(flagFailOn); err != nil {
		return err
	}

	// Config precedence: CLI flags > local file > global file.
	var cfg config.FileConfig
	if c, err := config.LoadGlobal(); err == nil {
		cfg = c
	}
	if c, err := config.LoadLocal("."); err == nil {
		cfg = cfg.Merge(c)
	}

	opts := scan.Options{
		ArchivePath:        args[0],
		TempRoot:           pick(flagTempRoot, cfg.TempRoot),
		Preset:             pick(flagPreset, cfg.Preset),
		ContentRulesPath:   pick(flagContentRules, cfg.ContentRules),
		ExtensionRulesPath: pick(flagExtensionRules, cfg.ExtensionRules),
		Include:            pick(flagInclude, cfg.Include),
		Exclude:            pick(flagExclude, cfg.Exclude),
		KeepScratch:        flagKeepScratch || config.Bool(cfg.KeepScratch, false),
	}
	if flagShowProgress {
		opts.Progress = progress.Func(func(e progress.Event) {
			if e.CurrentFile != "" {
				fmt.Fprintf(os.Stderr, "[%s] %3d%% %s\n", e.Stage, e.Progress, e.CurrentFile)
			} else {
				fmt.Fprintf(os.Stderr, "[%s] %3d%% %s\n", e.Stage, e.Progress, e.Message)
			}
		})
	}

	res, err := scan.Run(opts)
	if err != nil {
		return err
	}

	if flagJSON || config.Bool(cfg.JSON, false) {
		if err := report.WriteJSON(os.Stdout, res); err != nil {
			return err
		}
	} else {
		report.PrintTable(os.Stdout, res, report.PrintOptions{
			NoColor:  flagNoColor || config.Bool(cfg.NoColor, false),
			Duration: res.Duration,
		})
	}
	if res.ScratchDir != "" {
		fmt.Fprintf(os.Stderr, "scratch directory kept at %s\n", res.ScratchDir)
	}

	if !flagNoAudit && config.Bool(cfg.Audit, true) {
		rec := audit.ScanRecord{
			Archive:   res.Package.FileName,
			FileCount: res.Package.FileCount,
			Summary:   res.Summary,
			Duration:  res.Duration.String(),
		}
		if err := audit.New(config.Str(cfg.AuditPath, "")).Append(rec); err != nil {
			fmt.Fprintln(os.Stderr, "warning: audit log not written:", err)
		}
	}

	if shouldFail(res.Summary, flagFailOn) {
		os.Exit(1)
	}
	return nil
}

func pick(flag string, file *string) string {
	if flag != "" {
		return flag
	}
	return config.Str(file, "")
}

func validateFailOn(v string) error {
	switch v {
	case "info", "warning", "critical", "never":
		return nil
	default:
		return fmt.Errorf("invalid --fail-on value %q (expected info, warning, critical or never)", v)
	}
}

func shouldFail(s types.Summary, failOn string) bool {
	switch failOn {
	case "info":
		return s.Total > 0
	case "warning":
		return s.Critical+s.Warning > 0
	case "critical":
		return s.Critical > 0
	default:
		return false
	}
}
