package queue

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"github.com/johnquangdev/meeting-agent/pkg/config"
)

// Queue drivers selectable with PIPELINE_QUEUE_DRIVER
const (
	DriverRedis  = "redis"
	DriverNATS   = "nats"
	DriverMemory = "memory"
)

// Backends are the shared connections a driver may need. Only the one
// matching the configured driver has to be set.
type Backends struct {
	Redis redis.Cmdable
	NATS  *nats.Conn
}

// Open builds the queue for the configured driver
func Open(cfg *config.Config, b Backends) (Queue, error) {
	switch cfg.Pipeline.QueueDriver {
	case DriverRedis:
		if b.Redis == nil {
			return nil, fmt.Errorf("redis queue driver requires a redis client")
		}
		return NewRedisQueue(b.Redis, cfg.Pipeline.QueueName), nil
	case DriverNATS:
		if b.NATS == nil {
			return nil, fmt.Errorf("nats queue driver requires a nats connection")
		}
		return NewNATSQueue(b.NATS, cfg.NATS.Subject, cfg.NATS.QueueGroup), nil
	case DriverMemory:
		return NewMemoryQueue(0), nil
	default:
		return nil, fmt.Errorf("unsupported queue driver %q", cfg.Pipeline.QueueDriver)
	}
}
