package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/graphmount/graphmount/internal/adapter"
	"github.com/graphmount/graphmount/internal/adapter/httpadapter"
	"github.com/graphmount/graphmount/internal/engine"
	"github.com/graphmount/graphmount/internal/eventbus"
	"github.com/graphmount/graphmount/internal/introspection"
	"github.com/graphmount/graphmount/internal/language"
	"github.com/graphmount/graphmount/internal/lifecycle"
	"github.com/graphmount/graphmount/internal/logging"
	"github.com/graphmount/graphmount/internal/metrics"
	"github.com/graphmount/graphmount/internal/otel"
)

const rootUsage = `graphmount — mount one GraphQL engine on any host framework

USAGE:
  graphmount <command> [flags]

COMMANDS:
  serve            Run the standalone GraphQL server from an SDL file
  check-schema     Parse & validate a GraphQL SDL file
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -schema <file>              GraphQL SDL file (required)
  -data <file>                JSON document backing root query fields
  -server.addr <addr>         HTTP listen address (default: :8080)
  -server.path <path>         GraphQL mount path (default: /)
  -server.pretty              Pretty-print JSON responses
  -server.timeout <duration>  Per-request timeout, e.g. 10s (default: 10s)
  -server.max-body-bytes <n>  Request body size limit (default: 1048576)
  -server.drain-timeout <d>   Graceful shutdown timeout; 0 waits forever (default: 10s)
  -cors.origin <origin>       Allowed CORS origin. Repeatable; absent disables CORS
  -health.path <path>         Health endpoint path (default: /healthz)
  -health.disable             Disable the health endpoint (it answers 404)
  -graphql.introspection      Enable introspection (default: true)
  -metrics.addr <addr>        Serve Prometheus metrics on a separate listener
  -otel.endpoint <addr>       OTLP collector endpoint
  -otel.service <name>        OpenTelemetry service name (default: graphmount)
  -log.level <level>          Log level: debug, info, warn, error (default: info)
`

const checkSchemaUsage = `check-schema FLAGS:
  -schema <file>   GraphQL SDL file (required)
  (Validation always runs; exits non-zero on errors)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := args[0]
	cmdArgs := args[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs)
	case "check-schema":
		return cmdCheckSchema(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Print(serveUsage)
	case "check-schema":
		fmt.Print(checkSchemaUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func cmdServe(args []string) error {
	schemaFile := ""
	dataFile := ""
	addr := ":8080"
	path := ""
	pretty := false
	timeout := 10 * time.Second
	maxBodyBytes := int64(1 << 20)
	drainTimeout := 10 * time.Second
	healthPath := "/healthz"
	healthDisable := false
	enableIntrospection := true
	metricsAddr := ""
	otelEndpoint := ""
	otelService := "graphmount"
	logLevel := "info"
	var corsOrigins stringListFlag

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema", schemaFile, "GraphQL SDL file")
	fs.StringVar(&dataFile, "data", dataFile, "JSON document backing root query fields")
	fs.StringVar(&addr, "server.addr", addr, "HTTP listen address")
	fs.StringVar(&path, "server.path", path, "GraphQL mount path")
	fs.BoolVar(&pretty, "server.pretty", pretty, "Pretty-print JSON responses")
	fs.DurationVar(&timeout, "server.timeout", timeout, "Per-request timeout")
	fs.Int64Var(&maxBodyBytes, "server.max-body-bytes", maxBodyBytes, "Request body size limit")
	fs.DurationVar(&drainTimeout, "server.drain-timeout", drainTimeout, "Graceful shutdown timeout")
	fs.Var(&corsOrigins, "cors.origin", "Allowed CORS origin")
	fs.StringVar(&healthPath, "health.path", healthPath, "Health endpoint path")
	fs.BoolVar(&healthDisable, "health.disable", healthDisable, "Disable the health endpoint")
	fs.BoolVar(&enableIntrospection, "graphql.introspection", enableIntrospection, "Enable introspection")
	fs.StringVar(&metricsAddr, "metrics.addr", metricsAddr, "Prometheus metrics listen address")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	fs.StringVar(&logLevel, "log.level", logLevel, "Log level")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, serveUsage)
		return err
	}
	if schemaFile == "" {
		fmt.Fprint(os.Stderr, serveUsage)
		return fmt.Errorf("-schema is required")
	}

	eventbus.Use(eventbus.New())
	logger := logging.Setup(os.Stderr, logLevel)
	metrics.Register()
	shutdownOtel, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}

	eng, err := buildEngine(schemaFile, dataFile, enableIntrospection)
	if err != nil {
		return err
	}

	ctrl := lifecycle.New()
	if err := ctrl.Start(); err != nil {
		return err
	}

	opts := []adapter.Option{
		adapter.WithTimeout(timeout),
		adapter.WithMaxBodyBytes(maxBodyBytes),
		adapter.WithHealthPath(healthPath),
	}
	if path != "" {
		opts = append(opts, adapter.WithPath(path))
	}
	if pretty {
		opts = append(opts, adapter.WithPretty())
	}
	if healthDisable {
		opts = append(opts, adapter.WithoutHealthCheck())
	}
	if len(corsOrigins) > 0 {
		opts = append(opts, adapter.WithCORS(corsOrigins...))
	}

	ad := httpadapter.New(eng, addr)
	if err := ctrl.Attach(ad, opts...); err != nil {
		return err
	}
	logger.Info().Str("addr", ad.Addr()).Msg("serving GraphQL")

	if metricsAddr != "" {
		msrv := &http.Server{Addr: metricsAddr, Handler: metrics.Handler()}
		go func() { _ = msrv.ListenAndServe() }()
		ctrl.OnDrain("metrics", msrv.Shutdown)
	}
	ctrl.OnDrain("otel", shutdownOtel)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	ctx := context.Background()
	if drainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, drainTimeout)
		defer cancel()
	}
	return ctrl.Drain(ctx)
}

// buildEngine loads the SDL and wires resolvers. Root query fields resolve
// from the optional JSON data document; nested objects resolve by map key.
func buildEngine(schemaFile, dataFile string, enableIntrospection bool) (*engine.Engine, error) {
	sdl, err := os.ReadFile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	schema, err := language.LoadSchema(schemaFile, string(sdl))
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	resolvers := engine.NewResolvers()
	if dataFile != "" {
		raw, err := os.ReadFile(dataFile)
		if err != nil {
			return nil, fmt.Errorf("read data: %w", err)
		}
		var data map[string]any
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("parse data: %w", err)
		}
		registerDataResolvers(resolvers, schema, data)
	}
	if enableIntrospection {
		introspection.Register(resolvers, schema)
	}
	return engine.New(schema, resolvers), nil
}

func registerDataResolvers(resolvers *engine.Resolvers, schema *language.Schema, data map[string]any) {
	if schema.Query == nil {
		return
	}
	for _, f := range schema.Query.Fields {
		name := f.Name
		if len(name) >= 2 && name[:2] == "__" {
			continue
		}
		resolvers.Register(schema.Query.Name, name, func(ctx context.Context, source any, args map[string]any) (any, error) {
			return data[name], nil
		})
	}
}

func cmdCheckSchema(args []string) error {
	schemaFile := ""
	fs := flag.NewFlagSet("check-schema", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&schemaFile, "schema", schemaFile, "GraphQL SDL file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, checkSchemaUsage)
		return err
	}
	if schemaFile == "" {
		fmt.Fprint(os.Stderr, checkSchemaUsage)
		return fmt.Errorf("-schema is required")
	}

	sdl, err := os.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := language.LoadSchema(schemaFile, string(sdl)); err != nil {
		return fmt.Errorf("schema invalid: %w", err)
	}
	fmt.Printf("%s: ok\n", schemaFile)
	return nil
}
