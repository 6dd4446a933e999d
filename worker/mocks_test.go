package worker

import (
	"annolab.com/seqtag/selection"
	"annolab.com/seqtag/tasks"
	"errors"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

type failingMethod struct {
	fail bool
}

type withValue struct {
	fail          bool
	returnedValue interface{}
}

type pipelineMock struct {
	ppln   selection.Pipeline
	config pipelineMockConfig
	calls  pipelineCall
}

type pipelineMockConfig struct {
	fail   bool
	result string
}

type pipelineCall struct {
	pipeline bool
}

type redisMock struct {
	config redisMockConfig
	calls  redisMockCalls
}

type redisMockConfig struct {
	getRoundTask          withValue
	getJobTask            withValue
	getPoolTask           withValue
	onTaskCancelled       failingMethod
	onTaskStarted         failingMethod
	onTaskExceededRetries failingMethod
	onTaskFailedWithError failingMethod
	onTaskComplete        failingMethod
}

type redisMockCalls struct {
	getRoundTask          bool
	getJobTask            bool
	getPoolTask           bool
	onTaskCancelled       bool
	onTaskStarted         bool
	onTaskExceededRetries bool
	onTaskFailedWithError bool
	onTaskComplete        bool
}

type rmqMock struct {
	config rmqMockConfig
	calls  rmqMockCalls
}

type rmqMockConfig struct {
	pingCurator         failingMethod
	acknowledgeDelivery failingMethod
}

type rmqMockCalls struct {
	pingCurator         bool
	acknowledgeDelivery bool
	rejectDelivery      bool
}

type s3Mock struct {
	config s3MockConfig
	calls  s3MockCalls
}

type s3MockConfig struct {
	getPoolData       withValue
	saveSelectionFile failingMethod
}

type s3MockCalls struct {
	getPoolData       bool
	saveSelectionFile bool
}

func (mock s3Mock) close() {}

func (mock *rmqMock) close() {}

func (mock *redisMock) close() {}

func getPipelineMock(config pipelineMockConfig) *pipelineMock {
	var mock pipelineMock
	if config.fail {
		mock.ppln = func(request selection.Request) <-chan string {
			mock.calls.pipeline = true
			ch := make(chan string)
			close(ch)
			return ch
		}
	} else {
		mock.ppln = func(request selection.Request) <-chan string {
			mock.calls.pipeline = true
			ch := make(chan string, 1)
			ch <- mock.config.result
			close(ch)
			return ch
		}
	}
	return &mock
}

func (mock *redisMock) getRoundTask(redisKey string) (*tasks.RoundTask, error) {
	mock.calls.getRoundTask = true
	if mock.config.getRoundTask.fail {
		return nil, errors.New("failed to get round task")
	}
	switch mock.config.getRoundTask.returnedValue.(type) {
	case tasks.RoundTask:
		task := mock.config.getRoundTask.returnedValue.(tasks.RoundTask)
		return &task, nil
	default:
		return &tasks.RoundTask{}, nil
	}

}

func (mock *redisMock) getJobTask(task *Task) (*tasks.JobTask, error) {
	mock.calls.getJobTask = true
	if mock.config.getJobTask.fail {
		return nil, errors.New("failed to get job task")
	}
	switch mock.config.getJobTask.returnedValue.(type) {
	case tasks.JobTask:
		jobTask := mock.config.getJobTask.returnedValue.(tasks.JobTask)
		return &jobTask, nil
	default:
		return &tasks.JobTask{}, nil
	}
}

func (mock *redisMock) getPoolTask(task *Task) (*tasks.PoolTaskCached, error) {
	mock.calls.getPoolTask = true
	if mock.config.getPoolTask.fail {
		return nil, errors.New("failed to get pool task")
	}
	switch mock.config.getPoolTask.returnedValue.(type) {
	case tasks.PoolTaskCached:
		poolTaskCached := mock.config.getPoolTask.returnedValue.(tasks.PoolTaskCached)
		return &poolTaskCached, nil
	default:
		return &tasks.PoolTaskCached{}, nil
	}
}

func (mock *redisMock) onTaskStarted(task *Task) error {
	mock.calls.onTaskStarted = true
	if mock.config.onTaskStarted.fail {
		return errors.New("failed to update round task on start")
	}
	return nil
}

func (mock *redisMock) onTaskCancelled(task *Task, errorMessages ...string) error {
	mock.calls.onTaskCancelled = true
	if mock.config.onTaskCancelled.fail {
		return errors.New("failed to update round task on cancel")
	}
	return nil
}

func (mock *redisMock) onTaskExceededRetries(task *Task, maxRetries int) error {
	mock.calls.onTaskExceededRetries = true
	if mock.config.onTaskExceededRetries.fail {
		return errors.New("failed to update round task on exceeded retries")
	}
	return nil
}

func (mock *redisMock) onTaskFailedWithError(task *Task, err error) error {
	mock.calls.onTaskFailedWithError = true
	if mock.config.onTaskFailedWithError.fail {
		return errors.New("failed to update round task on fail with error")
	}
	return nil
}

func (mock *redisMock) onTaskComplete(task *Task) error {
	mock.calls.onTaskComplete = true
	if mock.config.onTaskComplete.fail {
		return errors.New("failed to update round task on complete")
	}
	return nil
}
func (mock *rmqMock) rejectDelivery(delivery *amqp.Delivery, log *zerolog.Logger) {
	mock.calls.rejectDelivery = true
}
func (mock *rmqMock) getDeliveriesCh() <-chan amqp.Delivery {
	return nil
}

func (mock *rmqMock) getReqChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) getRespChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) pingCurator(task *Task, message Message) error {
	mock.calls.pingCurator = true
	if mock.config.pingCurator.fail {
		return errors.New("failed to ping curator")
	}
	return nil
}

func (mock *rmqMock) acknowledgeDelivery(delivery *amqp.Delivery) error {
	mock.calls.acknowledgeDelivery = true
	if mock.config.acknowledgeDelivery.fail {
		return errors.New("failed to acknowledge delivery")
	}
	return nil
}

func (mock *s3Mock) getPoolData(task *Task) ([]byte, error) {
	mock.calls.getPoolData = true
	if mock.config.getPoolData.fail {
		return nil, errors.New("mock: failed to load from s3")
	}
	switch mock.config.getPoolData.returnedValue.(type) {
	case []byte:
		return mock.config.getPoolData.returnedValue.([]byte), nil
	default:
		return []byte("some input"), nil
	}
}

func (mock *s3Mock) saveSelectionFile(task *Task, result string) error {
	mock.calls.saveSelectionFile = true
	if mock.config.saveSelectionFile.fail {
		return errors.New("failed to upload results")
	}
	return nil
}
