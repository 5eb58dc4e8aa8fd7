package flags

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/ruteri/legal-document-registry/common"
	"github.com/ruteri/legal-document-registry/config"
	"github.com/ruteri/legal-document-registry/httpserver"
)

// SetupLogger builds the root logger from the logging config, with the
// command line flags taking precedence. A nil out logs to stdout.
func SetupLogger(cCtx *cli.Context, cfg *config.LoggingConfig, out io.Writer) (log *slog.Logger) {
	opts := cfg.Options()
	opts.Output = out
	if cCtx.IsSet(LogJsonFlag.Name) {
		opts.JSON = cCtx.Bool(LogJsonFlag.Name)
	}
	if cCtx.IsSet(LogDebugFlag.Name) {
		opts.Debug = cCtx.Bool(LogDebugFlag.Name)
	}
	if cCtx.IsSet(LogServiceFlag.Name) {
		opts.Service = cCtx.String(LogServiceFlag.Name)
	}

	logger := common.SetupLogger(opts)

	if cCtx.Bool(LogUidFlag.Name) {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

// LoadConfig reads the env file and the config file, applies command line
// overrides and finalizes the result.
func LoadConfig(cCtx *cli.Context) (*config.Config, error) {
	if err := config.LoadEnvFile(cCtx.String(EnvFileFlag.Name)); err != nil {
		return nil, err
	}

	cfg, err := config.Load(cCtx.String(ConfigFlag.Name))
	if err != nil {
		return nil, err
	}

	overlay := &config.Config{}
	overlay.Chain.RPCURL = cCtx.String(RpcAddrFlag.Name)
	overlay.Chain.ContractAddress = cCtx.String(ContractFlag.Name)
	overlay.Storage.URI = cCtx.String(StorageURIFlag.Name)
	if cCtx.IsSet(ListenAddrFlag.Name) {
		overlay.Server.ListenAddr = cCtx.String(ListenAddrFlag.Name)
	}
	if cCtx.IsSet(MetricsAddrFlag.Name) {
		overlay.Server.MetricsAddr = cCtx.String(MetricsAddrFlag.Name)
	}
	overlay.Server.EnablePprof = cCtx.Bool(PprofFlag.Name)
	if cCtx.IsSet(DrainSecondsFlag.Name) {
		overlay.Server.DrainDuration = (time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second).String()
	}
	cfg.Merge(overlay)

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolveSecrets reads credentials from Vault when one is configured.
func ResolveSecrets(cfg *config.Config, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return cfg.ResolveSecrets(ctx, logger)
}

func ConfigureServer(cfg *config.ServerConfig, logger *slog.Logger) *httpserver.HTTPServerConfig {
	return &httpserver.HTTPServerConfig{
		ListenAddr:               cfg.ListenAddr,
		MetricsAddr:              cfg.MetricsAddr,
		Log:                      logger,
		EnablePprof:              cfg.EnablePprof,
		DrainDuration:            cfg.DrainDurationValue(),
		GracefulShutdownDuration: cfg.ShutdownTimeoutValue(),
		ReadTimeout:              cfg.ReadTimeoutValue(),
		WriteTimeout:             cfg.WriteTimeoutValue(),
	}
}

var ConfigFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "path to the TOML config file (default: ./config.toml if present)",
}
var EnvFileFlag = &cli.StringFlag{
	Name:  "env-file",
	Value: config.DefaultEnvFile,
	Usage: "dotenv file loaded into the environment if present",
}

var RpcAddrFlag = &cli.StringFlag{
	Name:  "rpc-addr",
	Usage: "JSON-RPC endpoint of the chain hosting the registry",
}
var ContractFlag = &cli.StringFlag{
	Name:  "contract",
	Usage: "DocumentRegistry contract address, 0x-prefixed hex",
}
var StorageURIFlag = &cli.StringFlag{
	Name:  "storage",
	Usage: "content store URI (https://, ipfs://, s3://, file://)",
}

var ListenAddrFlag = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8080",
	Usage: "address to listen on for API",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}
var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: "legal-document-registry",
	Usage: "add 'service' tag to logs",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:  "metrics-addr",
	Value: "127.0.0.1:8090",
	Usage: "address to listen on for Prometheus metrics",
}

var LogFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	LogServiceFlag,
}

var ConfigFlags = []cli.Flag{
	ConfigFlag,
	EnvFileFlag,
	RpcAddrFlag,
	ContractFlag,
	StorageURIFlag,
}

var ServerFlags = []cli.Flag{
	ListenAddrFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}
