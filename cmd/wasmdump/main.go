// Command wasmdump inspects binary modules with the wasm decoder.
//
//	wasmdump sections module.wasm
//	wasmdump funcs --index 3 module.wasm
//	wasmdump verify module.wasm
//	wasmdump browse module.wasm
package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/wasm-decoder/wasm"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the persistent flags and the state derived from them.
type app struct {
	out    io.Writer
	log    *zap.Logger
	cfg    *wasm.Config
	p      *printer
	level  string
	nest   int
	strict bool
	plain  bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{out: stdout}

	root := &cobra.Command{
		Use:          "wasmdump",
		Short:        "Inspect binary WebAssembly modules",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(stderr)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.level, "log-level", "warn", "log level (debug, info, warn, error)")
	flags.BoolVar(&a.strict, "strict-version", false, "reject modules whose version is not 1")
	flags.IntVar(&a.nest, "max-nesting", 0, "maximum block nesting depth, 0 for unlimited")
	flags.BoolVar(&a.plain, "no-color", false, "disable styled output")

	root.AddCommand(
		newSectionsCmd(a),
		newFuncsCmd(a),
		newVerifyCmd(a),
		newBrowseCmd(a),
	)
	return root
}

func (a *app) setup(stderr io.Writer) error {
	lvl, err := zap.ParseAtomicLevel(a.level)
	if err != nil {
		return err
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(stderr),
		lvl,
	)
	log := zap.New(core)
	a.log = log
	wasm.SetLogger(log)

	a.cfg = &wasm.Config{
		Logger:          log,
		MaxNesting:      a.nest,
		RequireVersion1: a.strict,
	}
	a.p = newPrinter(a.out, a.plain)
	return nil
}

// open loads and frames the module at path. The returned input must be
// closed once the module is no longer used.
func (a *app) open(path string) (*input, *wasm.Module, error) {
	in, err := load(path)
	if err != nil {
		return nil, nil, err
	}
	m, err := wasm.DecodeWithConfig(in.data, a.cfg)
	if err != nil {
		in.Close()
		return nil, nil, err
	}
	a.log.Debug("decoded module",
		zap.String("path", path),
		zap.Int("bytes", len(in.data)),
		zap.Int("sections", len(m.Sections)))
	return in, m, nil
}
