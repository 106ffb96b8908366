// The triac command compiles a single C-subset source file to a
// pseudo-MIPS assembly listing.
//
// Adapted from CWBudde-go-dws's cmd/dwscript/cmd/{root,compile}.go: a
// cobra.Command with RunE doing the real work, except here there is
// only one command (this compiler has no REPL, no bytecode format to
// disassemble, nothing else to subcommand), and errors are returned
// rather than printed inline so main can format them onto stdout per
// spec.md §6 - not stderr, unlike the teacher example's exitWithError.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jpeterson/triac/compiler"
	"github.com/jpeterson/triac/config"
	"github.com/jpeterson/triac/token"
	"github.com/spf13/cobra"
)

var (
	outputFile string
	debugFlag  bool
	configPath string
)

// ErrMissingSourceFileName, ErrCannotOpenSourceFile and
// ErrCannotOpenTargetFile are the CLI-category errors of spec.md §7.
var (
	ErrMissingSourceFileName = errors.New("Missing source file name")
	ErrCannotOpenSourceFile  = errors.New("Cannot open source file")
	ErrCannotOpenTargetFile  = errors.New("Cannot open target file")
)

var rootCmd = &cobra.Command{
	Use:   "triac <source-file>",
	Short: "Compile a C-subset program to pseudo-MIPS assembly",
	Long: `triac compiles a small C-subset source program - declarations of
int/char/void, assignment, arithmetic, if/else, while, and return - to a
pseudo-MIPS assembly listing, through a quadruple intermediate form.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args: func(_ *cobra.Command, args []string) error {
		if len(args) < 1 {
			return ErrMissingSourceFileName
		}
		if len(args) > 1 {
			return ErrMissingSourceFileName
		}
		return nil
	},
	RunE: runCompile,
}

func init() {
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output assembly file (default: from config, target.txt)")
	rootCmd.Flags().BoolVar(&debugFlag, "debug", false, "print the quadruple dump after compiling")
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a config.toml (default: platform config dir)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func runCompile(_ *cobra.Command, args []string) error {
	sourcePath := args[0]

	source, err := os.ReadFile(sourcePath)
	if err != nil {
		return ErrCannotOpenSourceFile
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	target := outputFile
	if target == "" {
		target = cfg.Output.TargetFile
	}

	c := compiler.New(string(source))
	if debugFlag || cfg.Diagnostics.Debug {
		c.SetDebug(true)
	}
	if cfg.Diagnostics.EchoTokens {
		c.SetTokenSink(printToken)
	}

	asm, err := c.Compile()
	if err != nil {
		return err
	}

	f, err := os.Create(target)
	if err != nil {
		return ErrCannotOpenTargetFile
	}
	defer f.Close()

	if _, err := f.WriteString(asm); err != nil {
		return ErrCannotOpenTargetFile
	}

	if c.Debug() {
		fmt.Print(c.DumpQuads())
	}

	return nil
}

// printToken prints the diagnostic <KIND, lexeme> line spec.md §6
// requires on stdout during scanning.
func printToken(tok token.Token) {
	fmt.Printf("<%s, %s>\n", tok.Kind, tok.Literal)
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}
