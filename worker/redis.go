package worker

import (
	"annolab.com/seqtag/tasks"
	"fmt"
)

type redisTransactions interface {
	getRoundTask(redisKey string) (*tasks.RoundTask, error)
	getJobTask(task *Task) (*tasks.JobTask, error)
	getPoolTask(task *Task) (*tasks.PoolTaskCached, error)
	onTaskStarted(task *Task) error
	onTaskCancelled(task *Task, errorMessages ...string) error
	onTaskExceededRetries(task *Task, maxRetries int) error
	onTaskFailedWithError(task *Task, err error) error
	onTaskComplete(task *Task) error
	close()
}

type redisClientWrapper struct {
	tasksClient *tasks.Client
}

func (wrapper *redisClientWrapper) close() {
	wrapper.tasksClient.Close()
}

func (wrapper *redisClientWrapper) onTaskStarted(task *Task) error {
	err := wrapper.tasksClient.Rounds.Update(task.redisKey, func(roundTask *tasks.RoundTask) {
		roundTask.TaskStatuses.Sampler.Status = tasks.TaskStatusStarted
		roundTask.TaskStatuses.Sampler.Attempts += 1
		roundTask.TaskStatuses.Sampler.StartedAt = getFormattedNow()
		roundTask.TaskStatuses.Sampler.CompletedAt = nil
		roundTask.TaskStatuses.Sampler.ModelVersion = task.message.Version
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskCancelled(task *Task, errorMessages ...string) error {
	err := wrapper.tasksClient.Rounds.Update(task.redisKey, func(roundTask *tasks.RoundTask) {
		roundTask.TaskStatuses.Sampler.Status = tasks.TaskStatusCanceled
		roundTask.TaskStatuses.Sampler.StartedAt = getFormattedNow()
		roundTask.TaskStatuses.Sampler.CompletedAt = getFormattedNow()
		roundTask.TaskStatuses.Sampler.Attempts += 1
		roundTask.TaskStatuses.Sampler.ErrorMessages = append(
			roundTask.TaskStatuses.Sampler.ErrorMessages,
			errorMessages...,
		)
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskExceededRetries(task *Task, maxRetries int) error {
	err := wrapper.tasksClient.Pools.Update(task.roundTask.PoolID, func(poolTask *tasks.PoolTask) {
		poolTask.FailedTasks = append(poolTask.FailedTasks, "sampler")
		poolTask.FailedRounds[task.redisKey] = append(poolTask.FailedRounds[task.redisKey], "sampler")
	})
	if err != nil {
		return err
	}
	err = wrapper.tasksClient.Rounds.Update(task.redisKey, func(roundTask *tasks.RoundTask) {
		roundTask.TaskStatuses.Sampler.Status = tasks.TaskStatusCompletedFailure
		roundTask.TaskStatuses.Sampler.StartedAt = getFormattedNow()
		roundTask.TaskStatuses.Sampler.CompletedAt = getFormattedNow()
		roundTask.TaskStatuses.Sampler.Attempts += 1
		roundTask.TaskStatuses.Sampler.ErrorMessages = append(
			roundTask.TaskStatuses.Sampler.ErrorMessages,
			fmt.Sprintf(
				"Task has exceeded retries. (Attempts: %d, max retries: %d )",
				roundTask.TaskStatuses.Sampler.Attempts,
				maxRetries,
			),
		)
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskFailedWithError(task *Task, err error) error {
	return wrapper.tasksClient.Rounds.Update(task.redisKey, func(roundTask *tasks.RoundTask) {
		roundTask.TaskStatuses.Sampler.Status = tasks.TaskStatusFailed
		roundTask.TaskStatuses.Sampler.CompletedAt = getFormattedNow()
		roundTask.TaskStatuses.Sampler.ErrorMessages = append(roundTask.TaskStatuses.Sampler.ErrorMessages, err.Error())
	})
}

func (wrapper *redisClientWrapper) onTaskComplete(task *Task) error {
	return wrapper.tasksClient.Rounds.Update(task.redisKey, func(roundTask *tasks.RoundTask) {
		if !roundTask.TaskStatuses.Sampler.Status.Complete() {
			roundTask.TaskStatuses.Sampler.Status = tasks.TaskStatusCompletedSuccess
		}
		roundTask.TaskStatuses.Sampler.CompletedAt = getFormattedNow()
		roundTask.TaskStatuses.Sampler.SelectionFileKey = getSelectionFileKey(task)
	})
}

func (wrapper *redisClientWrapper) getRoundTask(redisKey string) (*tasks.RoundTask, error) {
	return wrapper.tasksClient.Rounds.Get(redisKey)
}

func (wrapper *redisClientWrapper) getJobTask(task *Task) (*tasks.JobTask, error) {
	return wrapper.tasksClient.Jobs.GetCached(task.roundTask.JobID)
}

func (wrapper *redisClientWrapper) getPoolTask(task *Task) (*tasks.PoolTaskCached, error) {
	return wrapper.tasksClient.Pools.GetCached(task.roundTask.PoolID)
}
