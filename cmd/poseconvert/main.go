package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/heimdex/heimdex-pose/internal/config"
	"github.com/heimdex/heimdex-pose/internal/convert"
	"github.com/heimdex/heimdex-pose/internal/db"
	"github.com/heimdex/heimdex-pose/internal/keypoints"
	"github.com/heimdex/heimdex-pose/internal/logging"
	"github.com/heimdex/heimdex-pose/internal/runs"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if len(args) > 0 {
		switch args[0] {
		case "names":
			return printNames(stdout, keypoints.Default)
		case "serve":
			return serve(cfg)
		}
	}
	return convertFile(cfg, args, stdout, stderr)
}

// namesFlag collects -names values; the flag may repeat and each value may
// hold a comma separated list.
type namesFlag []string

func (n *namesFlag) String() string { return strings.Join(*n, ",") }

func (n *namesFlag) Set(v string) error {
	*n = append(*n, config.SplitNames(v)...)
	return nil
}

type convertArgs struct {
	input     string
	output    string
	names     []string
	limit     int
	noHistory bool
}

const usage = "usage: poseconvert [-names a,b] [-limit n] [-no-history] <input.pose> <output.json>\n" +
	"       poseconvert names\n" +
	"       poseconvert serve"

// parseConvertArgs returns flag.ErrHelp after writing usage to help when
// -h or -help is given.
func parseConvertArgs(args []string, defaults []string, help io.Writer) (convertArgs, error) {
	fs := flag.NewFlagSet("poseconvert", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var names namesFlag
	fs.Var(&names, "names", "Keypoint names to export (repeatable, comma separated)")
	limit := fs.Int("limit", 0, "Maximum number of records to read (0 for all)")
	noHistory := fs.Bool("no-history", false, "Do not record this conversion in the run history")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(help, usage)
			fs.SetOutput(help)
			fs.PrintDefaults()
		}
		return convertArgs{}, err
	}
	if fs.NArg() != 2 {
		return convertArgs{}, errors.New(strings.SplitN(usage, "\n", 2)[0])
	}
	if *limit < 0 {
		return convertArgs{}, errors.New("-limit must be non-negative")
	}

	ca := convertArgs{
		input:     fs.Arg(0),
		output:    fs.Arg(1),
		names:     names,
		limit:     *limit,
		noHistory: *noHistory,
	}
	if len(ca.names) == 0 {
		ca.names = defaults
	}
	return ca, nil
}

func convertFile(cfg config.Config, args []string, stdout, stderr io.Writer) error {
	ca, err := parseConvertArgs(args, cfg.DefaultNames(), stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	// stdout carries the skip summary, so logs go to stderr here.
	logger := logging.New(os.Stderr, cfg.LogLevel())

	var repo runs.Repository
	if cfg.HistoryEnabled() && !ca.noHistory {
		database, err := db.New(cfg.DBPath(), logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer database.Close()
		repo = runs.NewRepository(database.Conn())
	}

	svc := runs.NewService(repo, logger)
	r, err := svc.ConvertFile(context.Background(), ca.input, ca.output, ca.names, convert.WithLimit(ca.limit))
	if err != nil {
		return err
	}

	if r.FramesSkipped > 0 {
		fmt.Fprintf(stdout, "Skipped %d frame(s) without body keypoints.\n", r.FramesSkipped)
	}
	return nil
}

func printNames(w io.Writer, reg *keypoints.Registry) error {
	sources := []keypoints.Source{
		keypoints.SourceBody,
		keypoints.SourceFace,
		keypoints.SourceLeftHand,
		keypoints.SourceRightHand,
	}
	for _, src := range sources {
		if _, err := fmt.Fprintf(w, "# %s\n", src); err != nil {
			return err
		}
		for _, name := range reg.NamesFor(src) {
			if _, err := fmt.Fprintln(w, name); err != nil {
				return err
			}
		}
	}
	return nil
}
