package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"homehub/config"
	scheduleRepo "homehub/database/repository/schedule"
	"homehub/models"
	"homehub/services/device"
	"homehub/services/policy"
	"homehub/services/tasks"

	"github.com/hibiken/asynq"
)

// RedisOpt builds the asynq connection options from the app config.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisScheduleDB,
	}
}

// InitScheduleWorker runs the async worker in the background. It
// executes both one-off queued tasks and recurring cron firings.
func InitScheduleWorker(deviceSvc device.DeviceService, repo scheduleRepo.ScheduleRepository) {
	srv := asynq.NewServer(
		RedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeScheduledAction, handleScheduledAction(deviceSvc, repo))

	go func() {
		log.Println("[ScheduleWorker] starting async worker...")
		const maxAttempts = 5
		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ScheduleWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)
				if attempts == maxAttempts {
					log.Fatal("[ScheduleWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleScheduledAction(deviceSvc device.DeviceService, repo scheduleRepo.ScheduleRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ScheduledActionPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ScheduleWorker] invalid payload: %v", err)
			return err
		}

		// The schedule may have been disabled or removed after the task
		// was queued; a stale firing is a no-op, not an error.
		sch, err := repo.GetByID(p.ScheduleID)
		if err != nil || sch == nil || !sch.Enabled {
			log.Printf("[ScheduleWorker] skipping stale schedule %s", p.ScheduleID)
			return nil
		}

		d, err := deviceSvc.GetByID(p.DeviceID)
		if err != nil {
			log.Printf("[ScheduleWorker] device %s gone, skipping schedule %s", p.DeviceID, p.ScheduleID)
			return nil
		}

		target := policy.StatusForAction(d.Type, d.Status, p.Action)
		if _, err := deviceSvc.ApplyStatus(ctx, p.DeviceID, target, p.UserID, models.SourceSchedule); err != nil {
			log.Printf("[ScheduleWorker] failed to apply schedule %s: %v", p.ScheduleID, err)
			return err
		}
		return nil
	}
}
