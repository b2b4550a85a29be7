package messaging

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"vehicle-emulator/internal/logger"
	"vehicle-emulator/internal/types"

	"github.com/redis/go-redis/v9"
)

const (
	// CommandKey is both the list operators LPUSH command lines onto and
	// the pub/sub channel they may PUBLISH them to.
	CommandKey = "emulator:command"
	// StateHash holds the latest published vehicle snapshot.
	StateHash = "emulator"
	// StateChannel announces snapshot updates.
	StateChannel = "emulator"
)

type Callbacks struct {
	CommandCallback func(line string) error
}

type RedisClient struct {
	client      *redis.Client
	callbacks   Callbacks
	logger      *logger.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	popTimeout  time.Duration
	stopTimeout time.Duration
}

func NewRedisClient(host string, port int, l *logger.Logger, callbacks Callbacks) *RedisClient {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisClient{
		client: redis.NewClient(&redis.Options{
			Addr: fmt.Sprintf("%s:%d", host, port),
			DB:   0,
		}),
		callbacks:   callbacks,
		logger:      l,
		ctx:         ctx,
		cancel:      cancel,
		popTimeout:  time.Second,
		stopTimeout: 5 * time.Second,
	}
}

func (r *RedisClient) SetCallbacks(callbacks Callbacks) {
	r.callbacks = callbacks
}

func (r *RedisClient) Connect() error {
	r.logger.Infof("Attempting to connect to Redis at %s", r.client.Options().Addr)

	if err := r.client.Ping(r.ctx).Err(); err != nil {
		r.logger.Errorf("Redis connection failed: %v", err)
		return fmt.Errorf("redis connection failed: %w", err)
	}
	r.logger.Infof("Successfully connected to Redis")
	return nil
}

// StartListening starts the list and pub/sub command listeners.
func (r *RedisClient) StartListening() error {
	r.logger.Infof("Starting Redis listeners")

	pubsub := r.client.Subscribe(r.ctx, CommandKey)
	if _, err := pubsub.Receive(r.ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("subscribe to %s: %w", CommandKey, err)
	}
	r.logger.Infof("Subscribed to Redis channel: %s", CommandKey)

	r.wg.Add(2)
	go r.redisListener(pubsub)
	go r.listCommandListener(CommandKey, r.handleCommand)

	return nil
}

func (r *RedisClient) listCommandListener(key string, handler func(string) error) {
	defer r.wg.Done()
	r.logger.Infof("Starting list command listener for %s", key)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Infof("Context cancelled, exiting %s listener", key)
			return
		default:
			// Short BRPOP timeout so cancellation is noticed promptly
			result, err := r.client.BRPop(r.ctx, r.popTimeout, key).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				if errors.Is(err, context.Canceled) || errors.Is(err, redis.ErrClosed) || r.ctx.Err() != nil {
					r.logger.Infof("Context cancelled, exiting %s listener", key)
					return
				}
				r.logger.Warnf("Error reading from %s list: %v", key, err)
				time.Sleep(100 * time.Millisecond)
				continue
			}

			if len(result) >= 2 { // BRPOP returns [key, value]
				value := result[1]
				r.logger.Debugf("Received command from %s: %s", key, value)
				if err := handler(value); err != nil {
					r.logger.Warnf("Error handling %s command: %v", key, err)
				}
			}
		}
	}
}

func (r *RedisClient) redisListener(pubsub *redis.PubSub) {
	defer r.wg.Done()
	defer pubsub.Close()

	r.logger.Infof("Starting Redis message listener")
	channel := pubsub.Channel()

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Infof("Context cancelled, exiting listener")
			return
		case msg, ok := <-channel:
			if !ok {
				r.logger.Warnf("Redis channel closed")
				return
			}
			if msg == nil {
				continue
			}
			r.logger.Debugf("Received Redis message: channel=%s payload=%s", msg.Channel, msg.Payload)

			if msg.Channel == CommandKey {
				if err := r.handleCommand(msg.Payload); err != nil {
					r.logger.Warnf("Error handling %s message: %v", msg.Channel, err)
				}
			}
		}
	}
}

func (r *RedisClient) handleCommand(value string) error {
	if r.callbacks.CommandCallback == nil {
		return nil
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("empty command")
	}
	return r.callbacks.CommandCallback(value)
}

// PublishVehicleState writes the snapshot into the state hash and announces
// it, atomically.
func (r *RedisClient) PublishVehicleState(snap types.VehicleSnapshot) error {
	r.logger.Debugf("Publishing vehicle state for %s", snap.Model)

	fields := map[string]interface{}{
		"model":           snap.Model,
		"rpm":             snap.RPM,
		"speed":           snap.Speed,
		"vin":             snap.VIN,
		"temp:coolant":    snap.CoolantByte,
		"temp:oil":        snap.OilByte,
		"blinker":         snap.Blinker().String(),
		"button":          buttonField(snap),
		"button:active":   strconv.FormatBool(snap.ButtonActive),
		"state:timestamp": time.Now().Format(time.RFC3339),
	}
	for i, psi := range snap.TirePSI {
		fields[tireField(types.TirePosition(i))] = strconv.FormatFloat(float64(psi), 'f', -1, 32)
	}

	pipe := r.client.Pipeline()
	pipe.HSet(r.ctx, StateHash, fields)
	pipe.Publish(r.ctx, StateChannel, "state")
	_, err := pipe.Exec(r.ctx)
	if err != nil {
		r.logger.Warnf("Failed to publish vehicle state: %v", err)
		return err
	}
	return nil
}

// buttonField names the held button, or "none" once the hold has expired.
func buttonField(snap types.VehicleSnapshot) string {
	if !snap.ButtonActive {
		return "none"
	}
	return strings.ToLower(snap.Button.String())
}

// tireField renders "Driver Front" as "tire:driver-front".
func tireField(pos types.TirePosition) string {
	return "tire:" + strings.ReplaceAll(strings.ToLower(pos.String()), " ", "-")
}

func (r *RedisClient) Close() error {
	r.logger.Infof("Closing Redis client")
	r.cancel()

	// Wait for all goroutines to finish with a timeout
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Infof("All Redis goroutines finished")
	case <-time.After(r.stopTimeout):
		r.logger.Warnf("Timeout waiting for Redis goroutines to finish")
	}

	return r.client.Close()
}
