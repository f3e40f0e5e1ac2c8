package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"volt/internal/diag"
	"volt/internal/diagfmt"
	"volt/internal/driver"
	"volt/internal/project"
	"volt/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.vt|directory>",
	Short: "Check volt source files for errors",
	Long:  `Run the lexer, parser and pattern checker over a single file or every *.vt file within a directory`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer recoverICE(cmd, &err)
		return runCheck(cmd, args)
	},
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().Bool("no-warnings", false, "suppress warnings")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers for directory checking (0=auto)")
	checkCmd.Flags().String("ui", "auto", "interactive progress display (auto|on|off)")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Bool("cache", false, "reuse per-file results from the disk cache")
	checkCmd.Flags().Bool("explain-hints", true, "mention `volt explain` for codes with long-form explanations")
}

// runCheck executes the "check" command: it merges manifest settings with
// command flags, runs the driver over the target path, renders the collected
// diagnostics in the chosen format, and exits non-zero when errors remain.
func runCheck(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	// Получаем флаги
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}
	if noWarnings && warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	uiFlagValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	uiFlag, err := readUIMode(uiFlagValue)
	if err != nil {
		return err
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return fmt.Errorf("failed to get cache flag: %w", err)
	}
	explainHints, err := cmd.Flags().GetBool("explain-hints")
	if err != nil {
		return fmt.Errorf("failed to get explain-hints flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}

	st, err := os.Stat(targetPath)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}

	// Манифест ищется вверх от целевого пути; флаги командной строки
	// сильнее настроек из volt.toml.
	startDir := targetPath
	if !st.IsDir() {
		startDir = filepath.Dir(targetPath)
	}
	flags := diag.DefaultFlags()
	manifest, found, mErr := project.LoadFromDir(startDir)
	if mErr != nil {
		if found {
			return reportBadManifest(cmd, mErr)
		}
		return fmt.Errorf("failed to locate project manifest: %w", mErr)
	}
	if manifest != nil {
		flags = manifest.Config.Diagnostics.DiagFlags()
		if manifest.Config.Diagnostics.MaxDiagnostics > 0 && !cmd.Root().PersistentFlags().Changed("max-diagnostics") {
			maxDiagnostics = manifest.Config.Diagnostics.MaxDiagnostics
		}
	}
	if noWarnings {
		flags.CanEmitWarnings = false
	}
	if warningsAsErrors {
		flags.WarningsAsErrors = true
	}

	opts := driver.Options{
		Flags: flags,
		Jobs:  jobs,
	}
	if useCache {
		cache, cErr := driver.OpenDiskCache("volt")
		if cErr != nil {
			return fmt.Errorf("failed to open disk cache: %w", cErr)
		}
		opts.Cache = cache
	}

	var result *driver.Result
	if st.IsDir() && format == "pretty" && !quiet && shouldUseTUI(uiFlag) {
		files, listErr := listCheckFiles(targetPath)
		if listErr != nil {
			return listErr
		}
		title := fmt.Sprintf("checking %s", targetPath)
		result, err = runCheckWithUI(cmd.Context(), title, files, targetPath, opts)
	} else {
		result, err = driver.Check(cmd.Context(), targetPath, opts)
	}
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))

	bag := renderBag(result.Bag, maxDiagnostics, explainHints)

	switch format {
	case "pretty":
		prettyOpts := diagfmt.PrettyOpts{
			Color:     useColor,
			PathMode:  pathMode,
			ShowNotes: true,
			ShowFixes: true,
		}
		if err := diagfmt.Pretty(os.Stdout, bag, result.FileSet, prettyOpts); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	case "short":
		for _, d := range bag.Items() {
			fmt.Fprintln(os.Stdout, diag.FormatShort(d, result.FileSet))
		}
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     true,
			IncludeFixes:     true,
		}
		if err := diagfmt.JSON(os.Stdout, bag, result.FileSet, jsonOpts); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if result.HasErrors() {
		// Диагностики уже напечатаны, выходим молча.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return exitError{code: 1}
	}
	return nil
}

// reportBadManifest prints the manifest failure as a regular diagnostic and
// turns it into exit code 1.
func reportBadManifest(cmd *cobra.Command, mErr error) error {
	bag := diag.NewBag()
	bag.Add(&diag.Diagnostic{
		Level:   diag.LevelError,
		Code:    diag.PrjBadManifest,
		Message: mErr.Error(),
	})
	colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stderr))
	_ = diagfmt.Pretty(os.Stderr, bag, source.NewFileSet(), diagfmt.PrettyOpts{Color: useColor})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return exitError{code: 1}
}

// renderBag применяет выводные ограничения: обрезку max-diagnostics и
// скрытие подсказок explain. Хвостовая сводка сохраняется всегда.
func renderBag(bag *diag.Bag, max int, explainHints bool) *diag.Bag {
	needCap := max > 0 && bag.Len() > max
	if !needCap && explainHints {
		return bag
	}
	out := diag.NewBag()
	var tail []*diag.Diagnostic
	kept := 0
	dropped := 0
	for _, d := range bag.Items() {
		switch d.Level {
		case diag.LevelFailureNote:
			if explainHints {
				tail = append(tail, d)
			}
			continue
		case diag.LevelFatal:
			tail = append(tail, d)
			continue
		}
		if needCap && kept >= max {
			dropped++
			continue
		}
		out.Add(d)
		kept++
	}
	if dropped > 0 {
		out.Add(&diag.Diagnostic{
			Level:   diag.LevelNote,
			Message: fmt.Sprintf("%d more diagnostics suppressed, raise --max-diagnostics to see them", dropped),
		})
	}
	for _, d := range tail {
		out.Add(d)
	}
	return out
}

// listCheckFiles collects the *.vt files the driver will visit, in the same
// order, so the progress rows line up with the events.
func listCheckFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".vt") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
