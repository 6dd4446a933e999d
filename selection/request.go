package selection

// Request carries one pool snapshot through the pipeline. Text holds the
// pool in two-column format, Tid identifies the round for log correlation.
type Request struct {
	Text string `json:"text"`
	Tid  string `json:"tid"`
}

// Pipeline scores a pool and emits a single JSON response on the returned
// channel. The channel is closed without a value when scoring fails.
type Pipeline func(request Request) <-chan string
