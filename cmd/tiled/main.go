// Command tiled inspects directories the catalog would serve: which
// detector claims them, their structure, and the contents of single blocks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	tiled "github.com/qri-io/tiled-go"
)

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type env struct {
	configPath string
	logLevel   string
	cacheBytes float64

	stdout io.Writer
	stderr io.Writer
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	e := &env{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:          "tiled",
		Short:        "Inspect chunked array sources",
		SilenceUsage: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&e.configPath, "config", "c", "", "TOML or YAML config file")
	root.PersistentFlags().StringVar(&e.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().Float64Var(&e.cacheBytes, "cache-bytes", -1, "object cache size in bytes, or a fraction of system memory")

	root.AddCommand(newInspectCommand(e), newReadBlockCommand(e))
	return root
}

// open loads configuration and sniffs path with the registered detectors.
func (e *env) open(ctx context.Context, path string) (tiled.Adapter, log.Logger, error) {
	cfg := tiled.DefaultConfig()
	if e.configPath != "" {
		var err error
		if cfg, err = tiled.LoadConfig(e.configPath); err != nil {
			return nil, nil, err
		}
	}
	if e.logLevel != "" {
		cfg.LogLevel = e.logLevel
	}
	if e.cacheBytes >= 0 {
		cfg.ObjectCache.AvailableBytes = tiled.Capacity(e.cacheBytes)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := cfg.Logger(log.NewLogfmtLogger(log.NewSyncWriter(e.stderr)))
	if err != nil {
		return nil, nil, err
	}
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	oc, err := cfg.NewCache(nil, logger)
	if err != nil {
		return nil, nil, err
	}

	reg := tiled.NewRegistry(logger)
	reg.Register("tiff_sequence", tiled.SequenceDetector(cfg.SequenceOptions(oc, logger)))

	a, ok, err := reg.Sniff(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("no detector recognizes %s (tried %s)", path, strings.Join(reg.Names(), ", "))
	}
	return a, logger, nil
}

type description struct {
	Metadata       tiled.Attributes      `json:"metadata"`
	Macrostructure *tiled.MacroStructure `json:"macrostructure"`
	Microstructure tiled.Dtype           `json:"microstructure"`
}

func newInspectCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect PATH",
		Short: "Print the metadata and structure of a data source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, _, err := e.open(ctx, args[0])
			if err != nil {
				return err
			}
			ms, err := a.Macrostructure(ctx)
			if err != nil {
				return err
			}
			dt, err := a.Microstructure(ctx)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(e.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(description{Metadata: a.Metadata(), Macrostructure: ms, Microstructure: dt})
		},
	}
}

func newReadBlockCommand(e *env) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "read-block PATH BLOCK",
		Short: "Read one block, given as comma separated chunk indices such as 3,0,0",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			block, err := parseBlock(args[1])
			if err != nil {
				return err
			}
			a, logger, err := e.open(ctx, args[0])
			if err != nil {
				return err
			}
			arr, err := a.ReadBlock(ctx, block, tiled.Selector{})
			if err != nil {
				return err
			}
			level.Info(logger).Log("msg", "read block", "block", block.String(), "shape", fmt.Sprint(arr.Shape), "dtype", arr.Dtype, "bytes", arr.Nbytes())
			if raw {
				_, err = e.stdout.Write(arr.Data)
				return err
			}
			return json.NewEncoder(e.stdout).Encode(arr)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "write the block's element bytes instead of its description")
	return cmd
}

func parseBlock(s string) (tiled.Block, error) {
	parts := strings.Split(s, ",")
	block := make(tiled.Block, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid block %q: %w", s, err)
		}
		block[i] = v
	}
	return block, nil
}
