package tasks

import (
	"annolab.com/seqtag/redis"
	"annolab.com/seqtag/utils/maps"
)

const RoundsDB redis.DB = 2

type TaskStatus string

const (
	TaskStatusProcessing       TaskStatus = "processing"
	TaskStatusSubmitted        TaskStatus = "submitted"
	TaskStatusStarted          TaskStatus = "started"
	TaskStatusFailed           TaskStatus = "failed"
	TaskStatusCompletedSuccess TaskStatus = "completed - success"
	TaskStatusCompletedFailure TaskStatus = "completed - failure"
	TaskStatusCanceled         TaskStatus = "canceled"
)

func (s TaskStatus) Complete() bool {
	return s == TaskStatusCompletedSuccess || s == TaskStatusCompletedFailure || s == TaskStatusCanceled
}

func (s TaskStatus) Submitted() bool {
	return s == TaskStatusSubmitted || s == TaskStatusStarted || s == TaskStatusProcessing
}

// RoundTask is the redis record of one query round over a pool snapshot.
type RoundTask struct {
	maps.BaseDocument
	PoolID       string            `json:"pool_id"`
	JobID        string            `json:"job_id"`
	PoolFileKey  string            `json:"pool_file_key"`
	TaskStatuses RoundTaskStatuses `json:"task_statuses"`
}

type RoundTaskStatuses struct {
	Sampler RoundTaskInfo `json:"sampler"`
}

type RoundTaskInfo struct {
	SelectionFileKey string     `json:"selection_file_key"`
	StartedAt        *string    `json:"started_at"`
	CompletedAt      *string    `json:"completed_at"`
	Attempts         int        `json:"attempts"`
	Status           TaskStatus `json:"status"`
	Dependencies     []string   `json:"dependencies"`
	ModelVersion     string     `json:"model_version"`
	ErrorMessages    []string   `json:"error_messages"`
}

type RoundTasks struct {
	client redis.Client
}

func (tasks RoundTasks) Get(redisKey string) (*RoundTask, error) {
	var task RoundTask
	err := tasks.client.GetPartialDocument(redisKey, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks RoundTasks) Update(redisKey string, updateFunc func(task *RoundTask)) error {
	var task RoundTask
	return tasks.client.UpdatePartialDocument(redisKey, &task, updateFunc)
}
