package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/coolc/coolc/internal/ast"
	"github.com/coolc/coolc/internal/classtable"
	"github.com/coolc/coolc/internal/codegen"
	"github.com/coolc/coolc/internal/constpool"
	"github.com/coolc/coolc/internal/errors"
	"github.com/coolc/coolc/internal/lexer"
	"github.com/coolc/coolc/internal/parser"
	"github.com/coolc/coolc/internal/semantic"
	"github.com/spf13/cobra"
)

var (
	outputFile     string
	compileVerbose bool
	dumpAST        bool
	dumpTables     bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a COOL source file to RISC-V assembly",
	Long: `Compile runs the full pipeline on a single COOL source file:
lexing, parsing, class-hierarchy and feature collection, type
checking, and code generation, writing RISC-V 32-bit assembly to a
.s file.

Examples:
  # Compile a program, writing program.s
  coolc compile program.cl

  # Compile with a custom output path
  coolc compile program.cl -o out.s

  # Inspect the parsed tree or finalised class table without codegen
  coolc compile program.cl --dump-ast
  coolc compile program.cl --dump-tables`,
	Args: cobra.ExactArgs(1),
	RunE: compileFile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: <input>.s)")
	compileCmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "verbose output")
	compileCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "print the parsed tree instead of compiling")
	compileCmd.Flags().BoolVar(&dumpTables, "dump-tables", false, "print the finalised class table instead of compiling")
}

// compileFile drives lexer -> parser -> semantic analysis -> code
// generation for a single source file, following the external
// interface of spec.md §6: one positional argument, diagnostics one
// per line on standard output, a non-zero exit on any diagnostic, and
// no assembly written when compilation fails.
func compileFile(_ *cobra.Command, args []string) error {
	filename := args[0]

	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	source := string(content)

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Compiling %s...\n", filename)
	}

	l := lexer.New(source)
	p := parser.New(l)
	program := p.ParseProgram()

	var lexParseErrs []*errors.CompilerError
	for _, lerr := range l.Errors() {
		lexParseErrs = append(lexParseErrs, errors.NewLexicalError(lerr.Pos, lerr.Message, source, filename))
	}
	for _, perr := range p.Errors() {
		lexParseErrs = append(lexParseErrs, errors.NewLexicalError(perr.Pos, perr.Message, source, filename))
	}
	if len(lexParseErrs) > 0 {
		printDiagnostics(lexParseErrs)
		fmt.Println("Compilation halted due to lex and parse errors")
		os.Exit(1)
	}

	if dumpAST {
		dumpProgram(program)
		return nil
	}

	table, semErrs := semantic.Analyze(program, filename)
	if len(semErrs) > 0 {
		printDiagnostics(semErrs)
		os.Exit(1)
	}

	if dumpTables {
		dumpClassTable(table)
		return nil
	}

	pool := constpool.New()
	gen := codegen.New(table, pool, filename)
	asm := gen.Generate()

	outFile := outputFile
	if outFile == "" {
		ext := filepath.Ext(filename)
		if ext != "" {
			outFile = strings.TrimSuffix(filename, ext) + ".s"
		} else {
			outFile = filename + ".s"
		}
	}
	if err := os.WriteFile(outFile, []byte(asm), 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outFile, err)
	}

	if compileVerbose {
		fmt.Fprintf(os.Stderr, "Assembly written to %s (%d bytes)\n", outFile, len(asm))
	} else {
		fmt.Printf("Compiled %s -> %s\n", filename, outFile)
	}
	return nil
}

// printDiagnostics prints one diagnostic per line to standard output,
// the wire format spec.md §6 specifies for parse errors and which the
// driver applies uniformly to every later stage's diagnostics too.
func printDiagnostics(errs []*errors.CompilerError) {
	for _, line := range errors.Lines(errs) {
		fmt.Println(line)
	}
}

// dumpProgram is the --dump-ast introspection flag: a minimal
// two-level print (each class, then its features indented beneath
// it) good enough to eyeball class/feature
// shape without a full pretty-printer, in the spirit of the teacher's
// own `lex`/`parse` inspection subcommands.
func dumpProgram(prog *ast.Program) {
	for _, c := range prog.Classes {
		fmt.Printf("class %s inherits %s (%d features)\n", c.Name, c.Parent, len(c.Features))
		for _, f := range c.Features {
			switch feat := f.(type) {
			case *ast.Attribute:
				fmt.Printf("  attr %s : %s\n", feat.Name, feat.Type)
			case *ast.Method:
				fmt.Printf("  method %s(%d formals) : %s\n", feat.Name, len(feat.Formals), feat.RetType)
			}
		}
	}
}

func dumpClassTable(table *classtable.Table) {
	for _, idx := range table.EmissionOrder() {
		rec := table.Record(idx)
		lo, hi := table.TagRange(idx)
		fmt.Printf("%s\ttag=%d\trange=[%d,%d]\tattrs=%d\tmethods=%d\n",
			rec.Name, rec.Index, lo, hi, len(table.AllAttributes(idx)), len(table.AllMethods(idx)))
	}
}
