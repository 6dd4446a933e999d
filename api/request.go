package api

import (
	"annolab.com/seqtag/selection"
	"io/ioutil"
	"net/http"
)

type Request struct {
	Pipeline selection.Pipeline
}

// ProcessData scores a pool posted as two-column text and returns the
// selection as JSON.
func (req *Request) ProcessData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	logger := makeRequestLogger(r)

	if r.Method != "POST" {
		logger.Err(nil).Int("status", http.StatusMethodNotAllowed).Msg("Only 'POST' method is allowed here")
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	msg, err := ioutil.ReadAll(r.Body)
	if err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not read request body")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	request := selection.Request{
		Tid:  "test_api",
		Text: string(msg),
	}
	logger.Info().Str("tid", request.Tid).Msg("Starting selection for request from API")
	resp, ok := <-req.Pipeline(request)
	if !ok {
		logger.Error().Int("status", http.StatusInternalServerError).Msg("Selection failed for request")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	_, _ = w.Write([]byte(resp))
	logger.Info().Int("status", http.StatusOK).Msg("Finished processing request")
}
