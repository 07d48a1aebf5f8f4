// Command speq builds the spec of a sample bookshelf API and prints,
// renders, or serves it.
//
//	speq dump                      native spec as JSON
//	speq dump --format=debug       Go value dump of the spec
//	speq openapi -o openapi.yaml --format=yaml
//	speq serve --addr=:8080        spec, OpenAPI document, and docs UI
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/davecgh/go-spew/spew"

	"github.com/bjaus/speq"
)

// CLI is the command line of speq.
type CLI struct {
	LogLevel string `help:"Log level." enum:"debug,info,warn,error" default:"info" env:"SPEQ_LOG_LEVEL" name:"log-level"`

	Dump    DumpCmd    `cmd:"" help:"Print the native spec."`
	OpenAPI OpenAPICmd `cmd:"" name:"openapi" help:"Print the OpenAPI document."`
	Serve   ServeCmd   `cmd:"" help:"Serve the spec, OpenAPI document, and docs UI."`
	Version VersionCmd `cmd:"" help:"Print version information."`
}

// app carries what every command needs.
type app struct {
	out    io.Writer
	logger *slog.Logger
}

// spec builds the sample API.
func (a *app) spec() (*speq.APISpec, error) {
	return newSampleBuilder(a.logger).Build()
}

// write sends the output of fn to path, or to a.out when path is empty.
func (a *app) write(path string, fn func(io.Writer) error) (err error) {
	if path == "" {
		return fn(a.out)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := fn(f); err != nil {
		return err
	}
	a.logger.Info("wrote file", "path", path)
	return nil
}

type DumpCmd struct {
	Format string `help:"Output format." enum:"json,yaml,debug" default:"json" short:"f"`
	Output string `help:"Write to this file instead of stdout." short:"o" type:"path"`
}

func (c *DumpCmd) Run(a *app) error {
	spec, err := a.spec()
	if err != nil {
		return err
	}
	return a.write(c.Output, func(w io.Writer) error {
		switch c.Format {
		case "yaml":
			return spec.WriteYAML(w)
		case "debug":
			cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}
			cfg.Fdump(w, spec)
			return nil
		default:
			return spec.WriteJSON(w)
		}
	})
}

type OpenAPICmd struct {
	Format string `help:"Output format." enum:"json,yaml" default:"json" short:"f"`
	Output string `help:"Write to this file instead of stdout." short:"o" type:"path"`
}

func (c *OpenAPICmd) Run(a *app) error {
	spec, err := a.spec()
	if err != nil {
		return err
	}
	return a.write(c.Output, func(w io.Writer) error {
		if c.Format == "yaml" {
			return speq.WriteOpenAPIYAML(w, spec)
		}
		return speq.WriteOpenAPI(w, spec)
	})
}

type ServeCmd struct {
	Addr   string   `help:"Listen address." default:":8080" env:"SPEQ_ADDR"`
	Rate   float64  `help:"Requests per second per client; 0 disables rate limiting." default:"0" env:"SPEQ_RATE"`
	Burst  int      `help:"Rate limit burst." default:"20" env:"SPEQ_BURST"`
	Layout string   `help:"Docs UI layout." enum:"sidebar,stacked" default:"sidebar"`
	CORS   []string `help:"Origins allowed to fetch documents from a browser; \"*\" for any." env:"SPEQ_CORS_ORIGINS" name:"cors"`
}

// server builds the document server for the sample API.
func (c *ServeCmd) server(a *app) (*speq.Server, error) {
	spec, err := a.spec()
	if err != nil {
		return nil, err
	}
	opts := []speq.ServerOption{
		speq.WithServerLogger(a.logger),
		speq.WithDocs(speq.WithDocsLayout(c.Layout)),
	}
	if len(c.CORS) > 0 {
		opts = append(opts, speq.WithCORS(speq.CORSConfig{AllowOrigins: c.CORS, MaxAge: time.Hour}))
	}
	if c.Rate > 0 {
		opts = append(opts, speq.WithRateLimit(speq.RateLimitConfig{Rate: c.Rate, Burst: c.Burst}))
	}
	return speq.NewServer(spec, opts...)
}

func (c *ServeCmd) Run(a *app) error {
	srv, err := c.server(a)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := srv.ListenAndServe(ctx, c.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	a.logger.Info("server stopped")
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run(a *app) error {
	_, err := fmt.Fprintln(a.out, version())
	return err
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// run parses args and executes the selected command.
func run(args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("speq"),
		kong.Description("Describe an HTTP API from its Go types."),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return ctx.Run(&app{out: stdout, logger: newLogger(stderr, cli.LogLevel)})
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "speq:", err)
		os.Exit(1)
	}
}
