// Package health reports readiness over gRPC (grpc.health.v1) for
// orchestrators and over HTTP for load balancers.
package health

import (
	"context"
	"innovation-portal/internal/db"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"gorm.io/gorm"
)

// Pinger is a dependency the service needs to be ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Database pings the gorm connection pool.
func Database(conn *gorm.DB) Pinger {
	return PingFunc(func(ctx context.Context) error { return db.Ping(ctx, conn) })
}

// Redis pings the client. A nil client reports healthy because the service
// runs without redis.
func Redis(client *redis.Client) Pinger {
	return PingFunc(func(ctx context.Context) error {
		if client == nil {
			return nil
		}
		return client.Ping(ctx).Err()
	})
}

const checkTimeout = 2 * time.Second

type Checker struct {
	database Pinger
	redis    Pinger
	server   *grpchealth.Server
}

func NewChecker(database, cache Pinger) *Checker {
	server := grpchealth.NewServer()
	server.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return &Checker{database: database, redis: cache, server: server}
}

// Register attaches the health service to s.
func (c *Checker) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, c.server)
}

// MarkServing flips the gRPC status to SERVING once the database answers.
func (c *Checker) MarkServing(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if err := c.database.Ping(ctx); err != nil {
		return err
	}
	c.server.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return nil
}

// Shutdown reports NOT_SERVING to every watcher and ignores later updates.
func (c *Checker) Shutdown() {
	c.server.Shutdown()
}

type report struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Handler serves GET /healthz. Redis being down degrades but does not fail
// the check; the database being down does.
func (c *Checker) Handler(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), checkTimeout)
	defer cancel()

	res := report{Status: "ok", Database: "ok", Redis: "ok"}
	code := http.StatusOK

	if err := c.database.Ping(reqCtx); err != nil {
		log.Warn().Err(err).Msg("health: database ping failed")
		res.Status, res.Database = "unavailable", "down"
		code = http.StatusServiceUnavailable
	}
	if err := c.redis.Ping(reqCtx); err != nil {
		log.Warn().Err(err).Msg("health: redis ping failed")
		res.Redis = "down"
		if code == http.StatusOK {
			res.Status = "degraded"
		}
	}
	ctx.JSON(code, res)
}
