package tasks

import (
	"annolab.com/seqtag/redis"
	"annolab.com/seqtag/utils/maps"
	"sync"
)

const PoolsDB redis.DB = 0

// PoolTask is the redis record of an annotation pool and the rounds that
// failed against it.
type PoolTask struct {
	maps.BaseDocument
	FailedRounds map[string][]string `json:"failed_rounds"`
	FailedTasks  []string            `json:"failed_tasks"`
}

type PoolTaskCached struct {
	maps.BaseDocument
	PoolInfo    map[string]interface{} `json:"pool_info"`
	FailedTasks []string               `json:"failed_tasks"`
	JobID       string                 `json:"job_id"`
	Profile     string                 `json:"profile"`
}

type PoolTasks struct {
	client redis.Client
}

func (tasks PoolTasks) Get(redisKey string) (*PoolTask, error) {
	var task PoolTask
	err := tasks.client.GetPartialDocument(redisKey, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks PoolTasks) GetCached(redisKey string) (*PoolTaskCached, error) {
	var task PoolTaskCached
	err := tasks.client.GetPartialDocument(cachedPropertiesKey(redisKey), &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Update writes both the primary document and its cached copy.
func (tasks PoolTasks) Update(redisKey string, updateFunc func(task *PoolTask)) (err error) {
	releaseLock, err := tasks.client.Lock(redisKey)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = releaseLock()
			return
		}
		err = releaseLock()
	}()
	var task PoolTask
	var cached PoolTaskCached

	err = tasks.client.GetPartialDocument(redisKey, &task)
	if err != nil {
		return err
	}
	err = maps.ApplyUpdates(&task, updateFunc)
	if err != nil {
		return err
	}
	err = maps.CopyValues(&task, &cached)
	if err != nil {
		return err
	}
	errChan := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		errChan <- tasks.client.SaveDoc(redisKey, &task)
		wg.Done()
	}()
	go func() {
		errChan <- tasks.client.SaveDoc(cachedPropertiesKey(redisKey), &cached)
		wg.Done()
	}()
	wg.Wait()
	close(errChan)
	for err = range errChan {
		if err != nil {
			return err
		}
	}
	return nil
}
