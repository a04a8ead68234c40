// Package grpc holds the gRPC health helpers shared by the server and the
// command-line probe.
package grpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	initialBackoff = 100 * time.Millisecond
	maxBackoff     = time.Second
	checkTimeout   = time.Second
)

// ErrNotServing reports a health endpoint that answered with a status other
// than SERVING before the deadline.
var ErrNotServing = errors.New("service is not serving")

// ClientDialOptions returns the dial options used for local health probes.
func ClientDialOptions() []gogrpc.DialOption {
	return []gogrpc.DialOption{
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
}

// Probe connects to addr and waits until its health service reports SERVING.
// It gives up when ctx ends or timeout elapses, whichever comes first.
func Probe(ctx context.Context, addr string, timeout time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	conn, err := gogrpc.NewClient(addr, ClientDialOptions()...)
	if err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	defer conn.Close()

	return WaitForHealth(ctx, grpc_health_v1.NewHealthClient(conn), "", nil)
}

// WaitForHealth polls client until service reports SERVING or ctx ends.
// Each failed check backs off up to one second.
func WaitForHealth(ctx context.Context, client grpc_health_v1.HealthClient, service string, logf func(string, ...any)) error {
	if client == nil {
		return fmt.Errorf("health client is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	backoff := initialBackoff
	var last error
	for {
		callCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		response, err := client.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
		cancel()
		switch {
		case err != nil:
			last = err
		case response.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING:
			return nil
		default:
			last = fmt.Errorf("%w: status %s", ErrNotServing, response.GetStatus())
		}
		if logf != nil {
			logf("waiting for gRPC health: %v", last)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for gRPC health: %w", errors.Join(ctx.Err(), last))
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}
