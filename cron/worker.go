package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"medibook/config"
	"medibook/services/booking"
	"medibook/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitHoldExpiryWorker runs the async worker in background. It processes the
// hold:expire tasks enqueued when a slot hold is placed, flipping lapsed holds
// back to open.
func InitHoldExpiryWorker(mgr booking.Manager) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisHoldQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeHoldExpire, handleHoldExpireTask(mgr))

	go monitorRedisConnection()

	go func() {
		log.Println("[HoldExpiryWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[HoldExpiryWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[HoldExpiryWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleHoldExpireTask(mgr booking.Manager) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.HoldExpirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[HoldExpiryHandler] Invalid payload: %v", err)
			return err
		}

		if err := mgr.ReleaseExpiredHold(ctx, p.SlotID, p.UserID); err != nil {
			log.Printf("[HoldExpiryHandler] Failed to release hold on %s: %v", p.SlotID, err)
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisHoldQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[HoldExpiryWorker] Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
