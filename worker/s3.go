package worker

import (
	"annolab.com/seqtag/s3client"
)

type s3Transactions interface {
	saveSelectionFile(task *Task, result string) error
	getPoolData(task *Task) ([]byte, error)
	close()
}

type s3ClientWrapper struct {
	s3Client *s3client.Client
}

func (wrapper *s3ClientWrapper) close() {
	wrapper.s3Client.Close()
}

func (wrapper *s3ClientWrapper) saveSelectionFile(task *Task, result string) error {
	selectionFileKey := getSelectionFileKey(task)
	_, err := wrapper.s3Client.Upload(result, selectionFileKey)
	return err
}

func (wrapper *s3ClientWrapper) getPoolData(task *Task) ([]byte, error) {
	return wrapper.s3Client.Download(task.roundTask.PoolFileKey)
}
