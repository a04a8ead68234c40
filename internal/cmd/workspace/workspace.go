// Package workspace parses workspace service flags and launches the service.
package workspace

import (
	"context"
	"flag"
	"fmt"
	"net"
	"strconv"
	"time"

	entrypoint "github.com/louisbranch/gmworkspace/internal/platform/cmd"
	platformgrpc "github.com/louisbranch/gmworkspace/internal/platform/grpc"
	server "github.com/louisbranch/gmworkspace/internal/services/workspace/app"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

const healthCheckTimeout = 3 * time.Second

// Config holds workspace command configuration.
type Config struct {
	HTTPAddr   string `env:"GMWORKSPACE_HTTP_ADDR"   envDefault:"localhost:8095"`
	GRPCPort   int    `env:"GMWORKSPACE_GRPC_PORT"   envDefault:"8096"`
	DBPath     string `env:"GMWORKSPACE_DB_PATH"     envDefault:"data/workspace.db"`
	Transport  string `env:"GMWORKSPACE_TRANSPORT"   envDefault:"http"`
	Stage      string `env:"GMWORKSPACE_STAGE"       envDefault:"prep"`
	UserID     string `env:"GMWORKSPACE_USER_ID"     envDefault:"gm"`
	CampaignID string `env:"GMWORKSPACE_CAMPAIGN_ID"`
	Locale     string `env:"GMWORKSPACE_LOCALE"      envDefault:"en-US"`

	// HealthCheck probes a running instance instead of starting one.
	HealthCheck bool
}

// ParseConfig parses the process environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	return bindFlags(fs, args, cfg)
}

// ParseConfigFrom is ParseConfig with an explicit environment.
func ParseConfigFrom(fs *flag.FlagSet, args []string, environment map[string]string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfigFrom(&cfg, environment); err != nil {
		return Config{}, err
	}
	return bindFlags(fs, args, cfg)
}

func bindFlags(fs *flag.FlagSet, args []string, cfg Config) (Config, error) {
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP address for the page, WebSocket feed, and MCP endpoint")
	fs.IntVar(&cfg.GRPCPort, "grpc-port", cfg.GRPCPort, "The gRPC health server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the layout database")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "MCP transport: http or stdio")
	fs.StringVar(&cfg.Stage, "stage", cfg.Stage, "Campaign stage at startup: prep, live, or recap")
	fs.StringVar(&cfg.UserID, "user", cfg.UserID, "Owner of saved layouts")
	fs.StringVar(&cfg.CampaignID, "campaign", cfg.CampaignID, "Campaign the layouts belong to; empty for campaign-independent layouts")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "Locale for panel titles and messages")
	fs.BoolVar(&cfg.HealthCheck, "healthcheck", false, "Probe the gRPC health endpoint of a running instance and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.GRPCPort < 0 || cfg.GRPCPort > 65535 {
		return Config{}, fmt.Errorf("grpc port %d is out of range", cfg.GRPCPort)
	}
	return cfg, nil
}

// ServerConfig maps command configuration onto the service.
func (c Config) ServerConfig() server.Config {
	return server.Config{
		HTTPAddr:   c.HTTPAddr,
		GRPCAddr:   grpcAddr(c.GRPCPort),
		DBPath:     c.DBPath,
		Transport:  c.Transport,
		Stage:      c.Stage,
		UserID:     c.UserID,
		CampaignID: c.CampaignID,
		Locale:     c.Locale,
		Version:    Version,
	}
}

func grpcAddr(port int) string {
	return net.JoinHostPort("", strconv.Itoa(port))
}

// Run starts the workspace service, or probes one when HealthCheck is set.
func Run(ctx context.Context, cfg Config) error {
	if cfg.HealthCheck {
		return platformgrpc.Probe(ctx, net.JoinHostPort("localhost", strconv.Itoa(cfg.GRPCPort)), healthCheckTimeout)
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceWorkspace, func(ctx context.Context) error {
		return server.Run(ctx, cfg.ServerConfig())
	})
}
