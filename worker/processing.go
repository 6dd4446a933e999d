package worker

import (
	"annolab.com/seqtag/selection"
	"annolab.com/seqtag/tasks"
	"annolab.com/seqtag/utils"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

type Message struct {
	WorkType string `json:"work_type"`
	RedisKey string `json:"redis_key"`
	Sender   string `json:"sender"`
	Version  string `json:"version"`
}

type Task struct {
	delivery  *amqp.Delivery
	roundTask *tasks.RoundTask
	message   *Message
	redisKey  string
	log       *zerolog.Logger
}

func (worker *Worker) processMessage(delivery *amqp.Delivery) {
	task, err := worker.createTask(delivery)
	rejectLogger := worker.log.With().Str("message_id", delivery.MessageId).Logger()
	if err != nil {
		worker.log.Err(err).
			Str("message_id", delivery.MessageId).
			Str("tid", string(delivery.Body)).
			Msg("Failed to create task for delivery")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.processTask(task); err != nil {
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.pingCurator(task, *task.message); err != nil {
		task.log.Err(err).Msg("Got error while sending message to curator queue")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.acknowledgeDelivery(delivery); err != nil {
		task.log.Err(err).Msg("Failed to acknowledge delivery")
	}
	task.log.Info().Msg("Finished processing RMQ message")
}

func (worker *Worker) createTask(delivery *amqp.Delivery) (*Task, error) {
	var message Message
	err := json.Unmarshal(delivery.Body, &message)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal message, got error %w", err)
	}
	roundTask, err := worker.redis.getRoundTask(message.RedisKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query round task for message, got error %w", err)
	}
	taskLogger := worker.log.With().Str("tid", message.RedisKey).Logger()
	task := Task{
		delivery:  delivery,
		roundTask: roundTask,
		redisKey:  message.RedisKey,
		message:   &message,
		log:       &taskLogger,
	}
	return &task, nil
}

func (worker *Worker) processTask(task *Task) error {
	shouldPerform, err := worker.shouldPerformTask(task)
	if err != nil {
		task.log.Err(err).
			Msg("Got error while trying to decide whether to run task")
		return err
	}
	if !shouldPerform {
		return nil
	}
	if err = worker.redis.onTaskStarted(task); err != nil {
		task.log.Err(err).Msg("Failed to update task info")
		return fmt.Errorf("failed to update TaskInfo: %w", err)
	}
	if err = worker.runSelection(task); err != nil {
		task.log.Err(err).Msg("Got error while running selection")
		if err = worker.redis.onTaskFailedWithError(task, err); err != nil {
			return err
		}
		return nil
	}
	task.log.Info().Msg("Saved results, marking task as complete")
	if err = worker.redis.onTaskComplete(task); err != nil {
		task.log.Err(err).Msg("Got error while trying to mark task as complete")
		return err
	}
	return nil
}

func (worker *Worker) runSelection(task *Task) (err error) {
	defer utils.RecoverWithError(&err)
	task.log.Info().Msgf("Processing message from RMQ, attempt # %d", task.roundTask.TaskStatuses.Sampler.Attempts)
	data, err := worker.s3.getPoolData(task)
	if err != nil {
		task.log.Err(err).Caller().Msg("Could not fetch pool data from s3")
		return fmt.Errorf("failed fetch data from s3: %w", err)
	}
	request := selection.Request{
		Tid:  task.redisKey,
		Text: string(data),
	}
	result, ok := <-worker.ppln(request)
	if !ok {
		task.log.Error().Msg("Selection channel was closed before returning anything")
		return errors.New("selection channel was closed before returning anything")
	}
	task.log.Info().Msg("Finished selection, saving results to s3")
	if err = worker.s3.saveSelectionFile(task, result); err != nil {
		task.log.Err(err).Msg("Got error while trying to save results")
		return err
	}
	return nil
}

func (worker *Worker) shouldPerformTask(task *Task) (bool, error) {
	taskInfo := task.roundTask.TaskStatuses.Sampler
	taskLogger := task.log

	if taskInfo.Status.Complete() {
		taskLogger.Info().Msg("Task is already done. (might indicate issue acking message with RMQ). Sending back to Curator.")
		return false, nil
	}
	taskJob, err := worker.redis.getJobTask(task)
	if err != nil {
		taskLogger.Err(err).Msg("Failed to query job task for round task")
		return false, err
	}
	if taskJob.UserCanceled {
		taskLogger.Info().Msg("Job was canceled, no need to perform this task. Sending back to Curator.")
		err := worker.redis.onTaskCancelled(task)
		return false, err
	}
	var poolTask *tasks.PoolTaskCached
	if taskJob.StopPoolsOnFailure {
		poolTask, err = worker.redis.getPoolTask(task)
		if err != nil {
			return false, err
		}
		if poolTask == nil {
			return false, fmt.Errorf("pool task not found")
		}
	}
	if taskJob.StopPoolsOnFailure && len(poolTask.FailedTasks) > 0 {
		failedTask := poolTask.FailedTasks[0]
		taskLogger.Info().Msgf("Task is not required because the \"%s\" already completed failure "+
			"and pool won't be processed successfully. Sending back to Curator.", failedTask)
		err := worker.redis.onTaskCancelled(
			task,
			fmt.Sprintf(
				"Task was marked as \"%s\" because of the current pool has failed "+
					"in the \"%s\" worker and won't be processed successfully.",
				tasks.TaskStatusCanceled,
				failedTask,
			),
		)
		return false, err
	}
	if taskInfo.Attempts >= worker.config.TaskMaxRetries {
		taskLogger.Info().Msg("Sampler task has exceeded retries. Sending back to Curator.")
		err = worker.redis.onTaskExceededRetries(task, worker.config.TaskMaxRetries)
		return false, err
	}
	return true, nil
}
