package health

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Component identifiers reported by the built-in probers.
const (
	ComponentDatabase = "database"
	ComponentCache    = "cache"
)

// MongoProber probes MongoDB reachability via a ping.
type MongoProber struct {
	client *mongo.Client
}

// NewMongoProber creates a prober for the given MongoDB client.
func NewMongoProber(client *mongo.Client) *MongoProber {
	return &MongoProber{client: client}
}

// Name implements Prober.
func (p *MongoProber) Name() string { return ComponentDatabase }

// Probe implements Prober.
func (p *MongoProber) Probe(ctx context.Context) error {
	return p.client.Ping(ctx, nil)
}

// RedisProber probes Redis reachability via a ping.
type RedisProber struct {
	client *redis.Client
}

// NewRedisProber creates a prober for the given Redis client.
func NewRedisProber(client *redis.Client) *RedisProber {
	return &RedisProber{client: client}
}

// Name implements Prober.
func (p *RedisProber) Name() string { return ComponentCache }

// Probe implements Prober.
func (p *RedisProber) Probe(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
