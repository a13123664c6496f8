// Command htlc is the compiler driver (§6, §10.5): it reads a serialized
// program, runs it through kind inference, type inference, STG translation
// and global cleanup, and either prints the resulting STG program or ships
// it to a configured emitter over gRPC.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/htlc-project/htlc/internal/astwire"
	"github.com/htlc-project/htlc/internal/cache"
	"github.com/htlc-project/htlc/internal/config"
	"github.com/htlc-project/htlc/internal/emitterrpc"
	"github.com/htlc-project/htlc/internal/pipeline"
	"github.com/htlc-project/htlc/internal/stg"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		inputPath  string
		outputPath string
		cachePath  string
		emitterAddr string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:     "htlc",
		Short:   "Compile a serialized program to STG",
		Version: config.Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(runOptions{
				inputPath:   inputPath,
				outputPath:  outputPath,
				cachePath:   cachePath,
				emitterAddr: emitterAddr,
				verbose:     verbose,
			})
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "path to a YAML-serialized program (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the compiled STG program here instead of stdout")
	cmd.Flags().StringVar(&cachePath, "cache", "", "path to a SQLite compile cache; skips recompilation on a hit")
	cmd.Flags().StringVar(&emitterAddr, "emitter-addr", "", "gRPC address of an emitter to ship the compiled program to, instead of printing it")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.MarkFlagRequired("input")

	return cmd
}

type runOptions struct {
	inputPath   string
	outputPath  string
	cachePath   string
	emitterAddr string
	verbose     bool
}

func run(opts runOptions) error {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if opts.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	raw, err := os.ReadFile(opts.inputPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", opts.inputPath, err)
	}

	var wireProgram astwire.Program
	if err := yaml.Unmarshal(raw, &wireProgram); err != nil {
		return fmt.Errorf("decoding %s: %w", opts.inputPath, err)
	}
	program, err := astwire.DecodeProgram(&wireProgram)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", opts.inputPath, err)
	}

	var store *cache.Cache
	key := cache.Key(string(raw))
	if opts.cachePath != "" {
		store, err = cache.Open(opts.cachePath)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer store.Close()

		if hit, err := store.Lookup(key); err != nil {
			logger.WithError(err).Debug("cache lookup failed")
		} else if hit != nil {
			logger.Debug("cache hit, skipping recompilation")
			return emitOrPrint(opts, key, hit)
		}
	}

	ctx := pipeline.NewContext(string(raw), logger)
	ctx.Program = program
	ctx = pipeline.New(pipeline.Default()...).Run(ctx)

	if ctx.Diagnostics.HasErrors() {
		color := isatty.IsTerminal(os.Stderr.Fd())
		fmt.Fprint(os.Stderr, ctx.Diagnostics.FormatAll(ctx.Source, color))
		return fmt.Errorf("compilation failed with %d error(s)", len(ctx.Diagnostics.Errors))
	}

	if store != nil {
		if err := store.Store(key, ctx.STGProgram); err != nil {
			logger.WithError(err).Debug("cache store failed")
		}
	}

	return emitOrPrint(opts, key, ctx.STGProgram)
}

func emitOrPrint(opts runOptions, sourceHash string, prog *stg.Program) error {
	if opts.emitterAddr != "" {
		resp, err := emitterrpc.Send(context.Background(), opts.emitterAddr, sourceHash, prog)
		if err != nil {
			return err
		}
		if !resp.Ok {
			return fmt.Errorf("emitter rejected program: %s", resp.Message)
		}
		return nil
	}

	out := os.Stdout
	if opts.outputPath != "" {
		f, err := os.Create(opts.outputPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", opts.outputPath, err)
		}
		defer f.Close()
		out = f
	}
	fmt.Fprint(out, prog.String())
	return nil
}
