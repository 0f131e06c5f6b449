package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/orim/internal/rarity"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output     string // output file path
	CollectAll bool   // gather every error instead of stopping at the first
}

// AbilityListing is the JSON projection of a compiled ability.
type AbilityListing struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Element  string        `json:"element"`
	Cooldown int           `json:"cooldown"`
	Tags     []string      `json:"tags,omitempty"`
	Effects  []TierEffects `json:"effects,omitempty"`
}

// TierEffects is one tier row in an ability listing, in ascending tier
// order.
type TierEffects struct {
	Tier    string               `json:"tier"`
	Effects []rarity.EffectValue `json:"effects"`
}

// AspectListing is the JSON projection of a compiled aspect.
type AspectListing struct {
	ID      string               `json:"id"`
	Name    string               `json:"name"`
	Element string               `json:"element"`
	Bonus   []rarity.EffectValue `json:"bonus,omitempty"`
}

// CompilationResult holds the compiled abilities and aspects.
type CompilationResult struct {
	Abilities []AbilityListing `json:"abilities"`
	Aspects   []AspectListing  `json:"aspects"`
}

// CompilationStats holds summary statistics.
type CompilationStats struct {
	AbilityCount int
	AspectCount  int
	TotalEffects int
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <defs-dir>",
		Short: "Compile CUE card definitions",
		Long: `Compile CUE ability and aspect definitions into their resolved form.

The compiler parses CUE files, resolves elements and rarity loadouts,
and can write the compiled definitions as JSON for inspection.

Exit codes:
  0 - All definitions compiled
  2 - Command error (bad paths, compile failures)

Examples:
  orim compile ./defs
  orim compile ./defs --collect-all
  orim compile ./defs --output compiled.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().BoolVar(&opts.CollectAll, "collect-all", false, "report every compile error instead of the first")

	return cmd
}

func runCompile(opts *CompileOptions, defsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	mode := LoadModeFailFast
	if opts.CollectAll {
		mode = LoadModeCollectAll
	}
	loadResult, loadErrors := LoadDefs(defsDir, mode)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return outputCompileError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputCompileError(formatter, ErrCodeGeneric, loadErrors[0].Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, defsDir)

	for _, def := range loadResult.Abilities {
		formatter.VerboseLog("Compiling ability: %s", def.ID)
	}
	for _, def := range loadResult.Aspects {
		formatter.VerboseLog("Compiling aspect: %s", def.ID)
	}

	// Handle compilation errors
	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	result := buildCompilationResult(loadResult)
	stats := calculateStats(loadResult)

	// Write to file if --output specified
	if opts.Output != "" {
		if err := writeDefsToFile(result, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, loadResult, result, stats, opts.Output)
}

// buildCompilationResult projects compiled definitions into their JSON
// listing form.
func buildCompilationResult(loadResult *LoadResult) *CompilationResult {
	result := &CompilationResult{
		Abilities: make([]AbilityListing, 0, len(loadResult.Abilities)),
		Aspects:   make([]AspectListing, 0, len(loadResult.Aspects)),
	}

	for _, def := range loadResult.Abilities {
		listing := AbilityListing{
			ID:       def.ID,
			Name:     def.Name,
			Element:  def.Element.String(),
			Cooldown: def.Cooldown,
			Tags:     def.Tags,
		}
		for _, tier := range rarity.Tiers() {
			effects := def.Effects.At(tier)
			if len(effects) == 0 {
				continue
			}
			listing.Effects = append(listing.Effects, TierEffects{
				Tier:    tier.String(),
				Effects: effects,
			})
		}
		result.Abilities = append(result.Abilities, listing)
	}

	for _, def := range loadResult.Aspects {
		result.Aspects = append(result.Aspects, AspectListing{
			ID:      def.ID,
			Name:    def.Name,
			Element: def.Element.String(),
			Bonus:   def.Bonus,
		})
	}

	return result
}

// calculateStats computes summary statistics from the loaded definitions.
func calculateStats(loadResult *LoadResult) CompilationStats {
	stats := CompilationStats{
		AbilityCount: len(loadResult.Abilities),
		AspectCount:  len(loadResult.Aspects),
	}

	for _, def := range loadResult.Abilities {
		stats.TotalEffects += len(def.Effects.At(rarity.TierCommon))
	}
	for _, def := range loadResult.Aspects {
		stats.TotalEffects += len(def.Bonus)
	}

	return stats
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, loadResult *LoadResult, result *CompilationResult, stats CompilationStats, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	// Human-readable text output
	fmt.Fprintf(formatter.Writer, "✓ Compiled %d ability(s), %d aspect(s)\n\n",
		stats.AbilityCount, stats.AspectCount)

	if len(loadResult.Abilities) > 0 {
		fmt.Fprintln(formatter.Writer, "Abilities:")
		for _, def := range loadResult.Abilities {
			fmt.Fprintf(formatter.Writer, "  %s: %s, cooldown %d, %d effect(s)\n",
				def.ID,
				colorizeElement(def.Element, def.Element.String()),
				def.Cooldown,
				len(def.Effects.At(rarity.TierCommon)))
		}
		fmt.Fprintln(formatter.Writer)
	}

	if len(loadResult.Aspects) > 0 {
		fmt.Fprintln(formatter.Writer, "Aspects:")
		for _, def := range loadResult.Aspects {
			fmt.Fprintf(formatter.Writer, "  %s: %s, %d bonus effect(s)\n",
				def.ID,
				colorizeElement(def.Element, def.Element.String()),
				len(def.Bonus))
		}
		fmt.Fprintln(formatter.Writer)
	}

	if outputFile != "" {
		fmt.Fprintf(formatter.Writer, "Wrote compiled defs to %s\n", outputFile)
	}

	return nil
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Compilation errors are command-level errors (exit code 2)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{
				Code:    code,
				Message: message,
			}
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Compilation errors are command-level errors (exit code 2)
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseCompileError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	// Compilation errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeDefsToFile writes the compilation result to a file as indented
// JSON.
func writeDefsToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling defs: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
