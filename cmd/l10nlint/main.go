package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lifei6671/l10n"
	"github.com/lifei6671/l10n/cmd/l10nlint/checker"
	"github.com/lifei6671/l10n/internal/config"
	"github.com/lifei6671/l10n/internal/logging"
)

var errIssuesFound = errors.New("issues found")

var (
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errIssuesFound) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "l10nlint",
		Short:         "Check and preview localization catalogs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if cfg, err = config.Load(cfgFile); err != nil {
				return err
			}
			if cmd.Flags().Changed("default") {
				cfg.DefaultLanguage, _ = cmd.Flags().GetString("default")
			}
			logger, err = logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogColored)
			return err
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (.toml, .yaml)")
	root.PersistentFlags().String("default", l10n.DefaultLanguage, "default language tag")

	root.AddCommand(newCheckCmd(), newRenderCmd(), newLanguagesCmd())
	return root
}

func newCheckCmd() *cobra.Command {
	var (
		format      string
		failOnIssue bool
	)
	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Report syntax errors and key drift between catalogs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := catalogDir(args)
			res, err := checker.CheckLocales(cmd.Context(), os.DirFS(dir), checker.Options{
				Default: cfg.DefaultLanguage,
				Logger:  logger,
			})
			if err != nil {
				return err
			}
			if err := printResult(cmd.OutOrStdout(), res, format); err != nil {
				return err
			}
			if failOnIssue && res.HasIssues() {
				return errIssuesFound
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, yaml or toml")
	cmd.Flags().BoolVar(&failOnIssue, "fail", false, "exit with code 1 if any issue found")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "render <id> [name=value...]",
		Short: "Render one message in the default language",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := install(cmd, dir)
			if err != nil {
				return err
			}
			vars := make(l10n.Args, len(args)-1)
			for _, kv := range args[1:] {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("argument %q is not name=value", kv)
				}
				vars[k] = v
			}
			fmt.Fprintln(cmd.OutOrStdout(), reg.LocalizeWithArgs(args[0], vars))
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "catalog directory (default from config)")
	return cmd
}

func newLanguagesCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List installed languages and their display names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := install(cmd, dir)
			if err != nil {
				return err
			}
			active := reg.Active().Tag()
			for _, lang := range reg.Languages() {
				marker := " "
				if lang.Tag == active {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-10s %s\n", marker, lang.Tag, lang.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "catalog directory (default from config)")
	return cmd
}

func catalogDir(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return cfg.CatalogDir
}

func install(cmd *cobra.Command, dir string) (*l10n.Registry, error) {
	if dir == "" {
		dir = cfg.CatalogDir
	}
	opts := append(cfg.Options(), l10n.WithLogger(logger))
	staging := l10n.NewStaging()
	if err := l10n.NewLoader(opts...).LoadFS(cmd.Context(), os.DirFS(dir), staging); err != nil {
		return nil, err
	}
	return l10n.Install(staging, opts...)
}

func printResult(w io.Writer, res *checker.Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(res)
	case "toml":
		return toml.NewEncoder(w).Encode(res)
	case "text":
		printText(w, res)
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func printText(w io.Writer, res *checker.Result) {
	fmt.Fprintln(w, "=== L10N CHECK RESULT ===")
	fmt.Fprintln(w, "Languages:", res.Languages)
	fmt.Fprintln(w, "Total keys:", len(res.AllKeys))
	if !res.DefaultFound {
		fmt.Fprintf(w, "Default language %s: NOT FOUND\n", res.Default)
	}

	for _, file := range sortedMapKeys(res.SyntaxErrors) {
		fmt.Fprintf(w, "\n--- %s ---\nSyntax errors:\n", file)
		for _, is := range res.SyntaxErrors[file] {
			fmt.Fprintf(w, "  - %d:%d: %s\n", is.Line, is.Column, is.Message)
		}
	}
	for _, file := range sortedMapKeys(res.TagErrors) {
		fmt.Fprintf(w, "\n--- %s ---\nBad file name: %s\n", file, res.TagErrors[file])
	}
	for _, tag := range sortedMapKeys(res.DuplicateTags) {
		fmt.Fprintf(w, "\n--- [%s] ---\nDefined by more than one file: %s\n", tag, strings.Join(res.DuplicateTags[tag], ", "))
	}

	for _, lang := range res.Languages {
		fmt.Fprintf(w, "\n--- [%s] ---\n", lang)
		printKeys(w, "Missing keys", res.MissingKeys[lang])
		printKeys(w, "Redundant keys", res.RedundantKeys[lang])
	}
	if len(res.Unnamed) > 0 {
		fmt.Fprintf(w, "\nNo %s message: %s\n", l10n.LanguageNameID, strings.Join(res.Unnamed, ", "))
	}
}

func printKeys(w io.Writer, title string, keys []string) {
	if len(keys) == 0 {
		fmt.Fprintf(w, "%s: None\n", title)
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, k := range keys {
		fmt.Fprintln(w, "  -", k)
	}
}

// sortedMapKeys returns the keys of m in ascending order.
func sortedMapKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
