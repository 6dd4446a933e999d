package tasks

import (
	"annolab.com/seqtag/redis"
	"fmt"
)

type Client struct {
	Pools  PoolTasks
	Rounds RoundTasks
	Jobs   JobTasks
}

// NewClient is the preferred way for working with task state.
func NewClient() (Client, error) {
	poolsRedisClient, err := redis.NewClient(PoolsDB)
	if err != nil {
		return Client{}, err
	}
	jobsRedisClient, err := redis.NewClient(JobsDB)
	if err != nil {
		return Client{}, err
	}
	roundsRedisClient, err := redis.NewClient(RoundsDB)
	if err != nil {
		return Client{}, err
	}
	return Client{
		Pools:  PoolTasks{client: poolsRedisClient},
		Jobs:   JobTasks{client: jobsRedisClient},
		Rounds: RoundTasks{client: roundsRedisClient},
	}, nil
}

func (client *Client) Close() {
	_ = client.Rounds.client.Close()
	_ = client.Pools.client.Close()
	_ = client.Jobs.client.Close()
}

func cachedPropertiesKey(redisKey string) string {
	return fmt.Sprintf("%s-cached-properties", redisKey)
}
