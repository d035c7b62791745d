package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sesho96/ytsaurus/internal/config"
	"github.com/sesho96/ytsaurus/internal/job"
	"github.com/sesho96/ytsaurus/internal/logging"
	"github.com/sesho96/ytsaurus/internal/operation"
	"github.com/sesho96/ytsaurus/internal/streams"
	"github.com/sesho96/ytsaurus/internal/tableentry"
)

const usage = `usage: skiffjob <command> [flags]

commands:
  init    write a job config template
  format  print the input and output format descriptors
  map     run the document summary mapper
  dump    print input rows as JSON lines
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "skiffjob: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "init":
		return runInit(rest)
	case "format":
		return runFormat(rest, stdout)
	case "map":
		return runMap(rest)
	case "dump":
		return runDump(rest, stdout)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func loadConfig(fs *flag.FlagSet, args []string) (config.JobConfig, error) {
	path := fs.String("config", "", "job config path (defaults when empty)")
	if err := fs.Parse(args); err != nil {
		return config.JobConfig{}, err
	}
	cfg := defaultConfig()
	if *path != "" {
		var err error
		if cfg, err = config.LoadJobConfig(*path); err != nil {
			return config.JobConfig{}, err
		}
	}
	logging.Configure(logging.ProfileRuntime)
	if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
		zerolog.SetGlobalLevel(lvl)
	}
	return cfg, nil
}

// defaultConfig is the job config used without -config: the summary mapper
// writes two output tables.
func defaultConfig() config.JobConfig {
	cfg := config.DefaultJobConfig()
	cfg.OutputTableCount = summaryTables
	return cfg
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	kind := fs.String("kind", "job", "config kind: job|local")
	output := fs.String("output", "job.toml", "output path for config template")
	force := fs.Bool("force", false, "overwrite existing config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := config.WriteTemplate(*output, *kind, *force); err != nil {
		return err
	}
	log.Info().Str("kind", *kind).Str("path", *output).Msg("wrote config template")
	return nil
}

func runFormat(args []string, stdout io.Writer) error {
	cfg, err := loadConfig(flag.NewFlagSet("format", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	in, out, err := job.Describe[Document, Summary](cfg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(stdout, "input_format=%s\noutput_format=%s\n", in, out)
	return err
}

func runMap(args []string) error {
	cfg, err := loadConfig(flag.NewFlagSet("map", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	if cfg.OutputTableCount != summaryTables {
		return fmt.Errorf("map writes %d output tables, config has %d", summaryTables, cfg.OutputTableCount)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := job.OpenStreams(cfg)
	if err != nil {
		return err
	}
	_, err = mapDocuments(ctx, cfg, s)
	return err
}

func mapDocuments(ctx context.Context, cfg config.JobConfig, s job.Streams) (job.Stats, error) {
	return job.Run[Document, Summary](ctx, cfg, s, job.MapperFunc[Document, Summary](summarize))
}

func runDump(args []string, stdout io.Writer) error {
	cfg, err := loadConfig(flag.NewFlagSet("dump", flag.ContinueOnError), args)
	if err != nil {
		return err
	}
	in, err := streams.OpenInput(cfg.Input, cfg.Compression)
	if err != nil {
		return err
	}
	return dumpRows(in, stdout, cfg.TrackIndices)
}

type dumpLine struct {
	Table    int      `json:"$table_index"`
	RowIndex *int64   `json:"$row_index,omitempty"`
	Row      Document `json:"row"`
}

// dumpRows writes each decoded row as one JSON object per line and closes in.
func dumpRows(in io.ReadCloser, w io.Writer, track bool) (err error) {
	et, err := tableentry.New[Document](tableentry.Options{TrackIndices: track, Input: true})
	if err != nil {
		_ = in.Close()
		return err
	}
	opCtx := operation.NewContext()
	dec, err := et.Iterator(in, opCtx)
	if err != nil {
		_ = in.Close()
		return err
	}
	defer func() {
		err = errors.Join(err, dec.Close())
	}()

	enc := json.NewEncoder(w)
	for row, derr := range dec.All() {
		if derr != nil {
			return derr
		}
		line := dumpLine{Table: dec.TableIndex(), Row: row}
		if idx, ok := opCtx.RowIndex(); ok {
			line.RowIndex = &idx
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("dump: encode row %d: %w", dec.Rows()-1, err)
		}
	}
	return nil
}
