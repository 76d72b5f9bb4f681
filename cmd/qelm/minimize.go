package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pborges/qelm"
	"github.com/pborges/qelm/internal/config"
	"github.com/pborges/qelm/internal/engine"
	"github.com/pborges/qelm/internal/logging"
	"github.com/pborges/qelm/internal/pla"
	"github.com/pborges/qelm/internal/verify"
)

func newMinimizeCommand() *cobra.Command {
	var (
		outPath string
		format  string
	)
	command := &cobra.Command{
		Use:   "minimize <file.pla>",
		Short: "Minimize every output of a PLA truth table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return cmdMinimize(cmd, cfg, args[0], outPath, format)
		},
	}
	f := command.Flags()
	f.StringVarP(&outPath, "output", "o", "", "write the minimized PLA to this file")
	f.StringVar(&format, "format", "text", "report format: text or json")
	f.String("method", config.MethodAuto, "auto, exact or heuristic")
	f.Int("exact-threshold", 10, "largest input count minimized exactly under auto")
	f.Int("passes", 5, "heuristic passes")
	f.Int64("seed", 0, "heuristic seed, 0 for a random one")
	f.String("cover", "auto", "exact cover solver: auto, petrick, sat or pb")
	f.Int("petrick-limit", 4096, "partial products before auto cover switches to SAT")
	f.Bool("verify", false, "check every cover with a BDD")
	f.Int("workers", 0, "outputs minimized in parallel (default one per CPU)")
	return command
}

// loadConfig merges the config file, environment and the flags of cmd.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	file, _ := cmd.Flags().GetString("config")
	return config.Load(file, cmd.Flags())
}

func cmdMinimize(cmd *cobra.Command, cfg config.Config, inPath, outPath, format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format %q, want text or json", format)
	}
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	p, err := pla.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}

	log := logging.NewLogger(cfg.LogLevel)
	defer func() { _ = log.Sync() }()
	e, err := engine.New(cfg, engine.WithLogger(log))
	if err != nil {
		return err
	}
	res, err := e.Run(logging.WithLogger(cmd.Context(), log), p)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}

	if outPath != "" {
		var buf strings.Builder
		for _, line := range headerLines(inPath, cfg, res) {
			buf.WriteString("# ")
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
		buf.WriteString(pla.Format(res.Inputs, res.InputNames, res.Covers()))
		if cfg.Verify {
			if err := checkWritten([]byte(buf.String()), res); err != nil {
				return fmt.Errorf("%s: %w", outPath, err)
			}
		}
		if err := os.WriteFile(outPath, []byte(buf.String()), 0644); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	writeReport(out, res)
	return nil
}

// checkWritten parses a formatted PLA back and checks that every output
// denotes the same function as its minimized cover.
func checkWritten(text []byte, res *engine.Result) error {
	p, err := pla.Parse(text)
	if err != nil {
		return err
	}
	fns, err := p.Functions()
	if err != nil {
		return err
	}
	if len(fns) != len(res.Outputs) {
		return fmt.Errorf("wrote %d outputs, want %d", len(fns), len(res.Outputs))
	}
	for i, fn := range fns {
		on, err := fn.OnCubes()
		if err != nil {
			return err
		}
		same, err := verify.Equivalent(res.Inputs, res.Outputs[i].Cover, on)
		if err != nil {
			return err
		}
		if !same {
			return fmt.Errorf("output %s changed when written", res.Outputs[i].Name)
		}
	}
	return nil
}

func headerLines(inPath string, cfg config.Config, res *engine.Result) []string {
	lines := []string{
		fmt.Sprintf("qelm           %s", qelm.Version()),
		fmt.Sprintf("Source         %s", filepath.Base(inPath)),
		fmt.Sprintf("Method         %s", cfg.Method),
	}
	if cfg.Method != config.MethodExact {
		lines = append(lines, fmt.Sprintf("Seed           %d", res.Seed))
	}
	for _, o := range res.Outputs {
		lines = append(lines, fmt.Sprintf("%-14s %s, %d products, %d literals", o.Name, o.Method, o.Products, o.Literals))
	}
	return lines
}

func writeReport(w io.Writer, res *engine.Result) {
	for _, o := range res.Outputs {
		fmt.Fprintf(w, "%s = %s\n", o.Name, o.SOP)
		detail := fmt.Sprintf("  %s", o.Method)
		if o.Solver != "" {
			detail += "/" + o.Solver
		}
		fmt.Fprintf(w, "%s, %d products, %d literals", detail, o.Products, o.Literals)
		if o.Verified {
			fmt.Fprint(w, ", verified")
		}
		fmt.Fprintln(w)
	}
}
