//go:build integration

// Package testutil starts disposable MongoDB and Redis containers for the
// integration tests. Each container is shared by all tests of a test binary;
// every caller gets its own database.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"airseat/pkg/client"
	"airseat/pkg/config"
	"airseat/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoImage = "mongo:7.0"
	redisImage = "redis:7-alpine"

	startupTimeout = 2 * time.Minute
)

var (
	mongoOnce sync.Once
	mongoURI  string
	mongoErr  error

	redisOnce sync.Once
	redisAddr string
	redisErr  error
)

// MongoConfig returns a Config connected to a single-node replica set, so
// transactions work, using a database unique to t.
func MongoConfig(t *testing.T) *config.Config {
	t.Helper()

	mongoOnce.Do(func() { mongoURI, mongoErr = startMongo() })
	if mongoErr != nil {
		t.Fatalf("failed to start MongoDB container: %v", mongoErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}

	dbName := databaseName(t)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = mongoClient.Database(dbName).Drop(ctx)
		_ = mongoClient.Disconnect(ctx)
	})

	return &config.Config{
		MongoDatabaseName: dbName,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		SeatUnitPrice:     100,
		IdempotencyTTL:    time.Minute,
		Log:               logger.Discard(),
		Client:            &client.Client{Mongo: mongoClient},
	}
}

// RedisClient returns a client of the shared Redis container. Keys are
// flushed when t ends, so callers must not run in parallel.
func RedisClient(t *testing.T) *redis.Client {
	t.Helper()

	redisOnce.Do(func() { redisAddr, redisErr = startRedis() })
	if redisErr != nil {
		t.Fatalf("failed to start Redis container: %v", redisErr)
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	t.Cleanup(func() {
		_ = rdb.FlushDB(context.Background()).Err()
		_ = rdb.Close()
	})
	return rdb
}

func startMongo() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        mongoImage,
		ExposedPorts: []string{"27017/tcp"},
		Cmd:          []string{"--replSet", "rs0", "--bind_ip_all"},
		WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(startupTimeout),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", err
	}

	code, _, err := container.Exec(ctx, []string{
		"mongosh", "--quiet", "--eval",
		`rs.initiate({_id: "rs0", members: [{_id: 0, host: "localhost:27017"}]})`,
	})
	if err != nil {
		return "", fmt.Errorf("rs.initiate: %w", err)
	}
	if code != 0 {
		return "", fmt.Errorf("rs.initiate exited with %d", code)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", err
	}
	port, err := container.MappedPort(ctx, "27017/tcp")
	if err != nil {
		return "", err
	}

	uri := fmt.Sprintf("mongodb://%s:%s/?directConnection=true", host, port.Port())
	if err := waitForPrimary(ctx, uri); err != nil {
		return "", err
	}
	return uri, nil
}

func waitForPrimary(ctx context.Context, uri string) error {
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}
	defer mongoClient.Disconnect(context.Background())

	for {
		var hello struct {
			IsWritablePrimary bool `bson:"isWritablePrimary"`
		}
		err := mongoClient.Database("admin").RunCommand(ctx, bson.D{{Key: "hello", Value: 1}}).Decode(&hello)
		if err == nil && hello.IsWritablePrimary {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("replica set has no primary: %w", ctx.Err())
		case <-time.After(250 * time.Millisecond):
		}
	}
}

func startRedis() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        redisImage,
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(startupTimeout),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", err
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		return "", err
	}
	return host + ":" + port.Port(), nil
}

func databaseName(t *testing.T) string {
	name := strings.NewReplacer("/", "_", " ", "_", ".", "_").Replace(t.Name())
	if len(name) > 40 {
		name = name[:40]
	}
	return fmt.Sprintf("airseat_%s_%d", name, time.Now().UnixNano()%1_000_000)
}
