package grpc

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// probe pings the storage once and publishes the result.
func (s *HealthServer) probe(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.Ping(ctx); err != nil {
		s.logger.Warn(ctx, "storage ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// scheduleProbe runs probe on the configured interval until the returned
// stop function is called.
func (s *HealthServer) scheduleProbe(ctx context.Context) (func(), error) {
	c := cron.New()

	seconds := int(s.interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	if _, err := c.AddFunc(fmt.Sprintf("@every %ds", seconds), func() { s.probe(ctx) }); err != nil {
		return nil, err
	}
	c.Start()

	return func() {
		<-c.Stop().Done()
	}, nil
}
