package cmd

import (
	"fmt"
	"strings"

	"findfiles/internal/finder"
	"findfiles/internal/models"
	"findfiles/internal/progress"
	"findfiles/internal/scanner"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "FINDFILES"

const (
	quietSetting    = "quiet"
	suffixSetting   = "suffix"
	listSetting     = "list"
	noHeaderSetting = "no-header"
)

// NewRootCmd builds the findfiles command. Flags can also be set through
// FINDFILES_* environment variables.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:           "findfiles [directory | archive.tar[.gz]]",
		Short:         "Recursively find .info and .pickle result files",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, v)
		},
	}

	rootCmd.Flags().BoolP(quietSetting, "q", false, "Only print warnings and errors")
	rootCmd.Flags().StringSliceP(suffixSetting, "s", scanner.DefaultSuffixes, "File name suffixes to look for")
	rootCmd.Flags().BoolP(listSetting, "l", false, "Print every file found, one per line")
	rootCmd.Flags().Bool(noHeaderSetting, false, "Do not print the banner")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return rootCmd
}

func Execute() error {
	return NewRootCmd().Execute()
}

func run(cmd *cobra.Command, args []string, v *viper.Viper) error {
	directory := finder.DefaultDirectory
	if len(args) == 1 {
		directory = args[0]
	}
	verbose := !v.GetBool(quietSetting)

	if verbose && !v.GetBool(noHeaderSetting) {
		pterm.DefaultHeader.WithFullWidth().WithWriter(cmd.OutOrStdout()).
			WithBackgroundStyle(pterm.NewStyle(pterm.BgDarkGray)).
			WithTextStyle(pterm.NewStyle(pterm.FgLightWhite)).
			Println("Find Files")
	}

	opts := models.Options{
		Directory: directory,
		Verbose:   verbose,
		Suffixes:  v.GetStringSlice(suffixSetting),
		Observer:  progress.NewReporter(cmd.OutOrStdout(), cmd.ErrOrStderr()),
	}

	var bar *progress.ExtractionBar
	if verbose {
		bar = progress.NewExtractionBar("Extracting "+directory, cmd.ErrOrStderr())
		opts.ProgressCallback = bar.Update
	}

	result, err := finder.Find(opts)
	if bar != nil {
		bar.Stop()
	}
	if err != nil {
		return err
	}

	if v.GetBool(listSetting) {
		for _, f := range result.Files {
			fmt.Fprintln(cmd.OutOrStdout(), f)
		}
	}
	return nil
}
