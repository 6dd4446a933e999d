package ml

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"math"
)

// CRF is a linear-chain model over feature strings. Emissions are indexed
// [feature][state], transitions [previous][next]. Weights are plain sums,
// normalization happens in LogPartition.
type CRF struct {
	States         []string       `json:"states"`
	Features       map[string]int `json:"features"`
	Emissions      [][]float64    `json:"emissions"`
	Transitions    [][]float64    `json:"transitions"`
	InitialWeights []float64      `json:"initial_weights"`
	FinalWeights   []float64      `json:"final_weights"`

	stateIndex map[string]int
}

func NewCRF() *CRF {
	return &CRF{
		Features:   make(map[string]int),
		stateIndex: make(map[string]int),
	}
}

func (crf *CRF) NumStates() int {
	return len(crf.States)
}

// AddState registers a label and returns its index.
func (crf *CRF) AddState(label string) int {
	if idx, ok := crf.stateIndex[label]; ok {
		return idx
	}
	idx := len(crf.States)
	crf.States = append(crf.States, label)
	crf.stateIndex[label] = idx
	crf.InitialWeights = append(crf.InitialWeights, 0)
	crf.FinalWeights = append(crf.FinalWeights, 0)
	for s := range crf.Transitions {
		crf.Transitions[s] = append(crf.Transitions[s], 0)
	}
	crf.Transitions = append(crf.Transitions, make([]float64, len(crf.States)))
	for f := range crf.Emissions {
		crf.Emissions[f] = append(crf.Emissions[f], 0)
	}
	return idx
}

// AddFeature registers a feature name and returns its index.
func (crf *CRF) AddFeature(name string) int {
	if idx, ok := crf.Features[name]; ok {
		return idx
	}
	idx := len(crf.Emissions)
	crf.Features[name] = idx
	crf.Emissions = append(crf.Emissions, make([]float64, len(crf.States)))
	return idx
}

func (crf *CRF) StateIndex(label string) (int, bool) {
	idx, ok := crf.stateIndex[label]
	return idx, ok
}

// ToFeatureIdxVector drops features outside the vocabulary.
func (crf *CRF) ToFeatureIdxVector(features []string) []int {
	result := make([]int, 0, len(features))
	for _, name := range features {
		if idx, ok := crf.Features[name]; ok {
			result = append(result, idx)
		}
	}
	return result
}

func (crf *CRF) emissionScore(featureIdxVector []int, state int) float64 {
	score := 0.0
	for _, fIdx := range featureIdxVector {
		score += crf.Emissions[fIdx][state]
	}
	return score
}

// DecodeViterbi returns the best state sequence and its unnormalized score.
func (crf *CRF) DecodeViterbi(features [][]string) ([]int, float64) {
	n := len(features)
	states := len(crf.States)
	if n == 0 || states == 0 {
		return nil, 0
	}

	delta := make([][]float64, n)
	backptr := make([][]int, n)
	for t := range delta {
		delta[t] = make([]float64, states)
		backptr[t] = make([]int, states)
	}

	fIdx := crf.ToFeatureIdxVector(features[0])
	for s := 0; s < states; s++ {
		delta[0][s] = crf.InitialWeights[s] + crf.emissionScore(fIdx, s)
	}

	for t := 1; t < n; t++ {
		fIdx = crf.ToFeatureIdxVector(features[t])
		for s := 0; s < states; s++ {
			best := math.Inf(-1)
			bestPrev := 0
			for prev := 0; prev < states; prev++ {
				weight := delta[t-1][prev] + crf.Transitions[prev][s]
				if weight > best {
					best = weight
					bestPrev = prev
				}
			}
			delta[t][s] = best + crf.emissionScore(fIdx, s)
			backptr[t][s] = bestPrev
		}
	}

	bestScore := math.Inf(-1)
	bestState := 0
	for s := 0; s < states; s++ {
		weight := delta[n-1][s] + crf.FinalWeights[s]
		if weight > bestScore {
			bestScore = weight
			bestState = s
		}
	}

	path := make([]int, n)
	path[n-1] = bestState
	for t := n - 1; t > 0; t-- {
		path[t-1] = backptr[t][path[t]]
	}
	return path, bestScore
}

// Predict returns the best label sequence as strings.
func (crf *CRF) Predict(features [][]string) []string {
	path, _ := crf.DecodeViterbi(features)
	result := make([]string, len(path))
	for t, s := range path {
		result[t] = crf.States[s]
	}
	return result
}

// LogPartition computes log Z with the forward algorithm in log space.
func (crf *CRF) LogPartition(features [][]string) float64 {
	n := len(features)
	states := len(crf.States)
	if n == 0 || states == 0 {
		return 0
	}

	alpha := make([]float64, states)
	next := make([]float64, states)

	fIdx := crf.ToFeatureIdxVector(features[0])
	for s := 0; s < states; s++ {
		alpha[s] = crf.InitialWeights[s] + crf.emissionScore(fIdx, s)
	}

	terms := make([]float64, states)
	for t := 1; t < n; t++ {
		fIdx = crf.ToFeatureIdxVector(features[t])
		for s := 0; s < states; s++ {
			for prev := 0; prev < states; prev++ {
				terms[prev] = alpha[prev] + crf.Transitions[prev][s]
			}
			next[s] = logSumExp(terms) + crf.emissionScore(fIdx, s)
		}
		alpha, next = next, alpha
	}

	for s := 0; s < states; s++ {
		terms[s] = alpha[s] + crf.FinalWeights[s]
	}
	return logSumExp(terms)
}

// PathScore is the unnormalized score of a given state sequence.
func (crf *CRF) PathScore(features [][]string, path []int) float64 {
	if len(path) == 0 {
		return 0
	}
	score := crf.InitialWeights[path[0]]
	for t, s := range path {
		score += crf.emissionScore(crf.ToFeatureIdxVector(features[t]), s)
		if t > 0 {
			score += crf.Transitions[path[t-1]][s]
		}
	}
	score += crf.FinalWeights[path[len(path)-1]]
	return score
}

// SequenceLogProbability is the log-probability of the Viterbi path under
// the model. Always <= 0.
func (crf *CRF) SequenceLogProbability(features [][]string) float64 {
	path, score := crf.DecodeViterbi(features)
	if path == nil {
		return 0
	}
	return score - crf.LogPartition(features)
}

func logSumExp(terms []float64) float64 {
	max := math.Inf(-1)
	for _, v := range terms {
		if v > max {
			max = v
		}
	}
	if math.IsInf(max, -1) {
		return max
	}
	sum := 0.0
	for _, v := range terms {
		sum += math.Exp(v - max)
	}
	return max + math.Log(sum)
}

func (crf *CRF) SaveToFile(modelPath string) error {
	buf, err := json.Marshal(crf)
	if err != nil {
		return err
	}
	return ioutil.WriteFile(modelPath, buf, 0644)
}

func LoadCRFFromFile(modelPath string) (*CRF, error) {
	buf, err := ioutil.ReadFile(modelPath)
	if err != nil {
		return nil, err
	}

	var m CRF
	if err = json.Unmarshal(buf, &m); err != nil {
		return nil, err
	}
	if m.Features == nil {
		m.Features = make(map[string]int)
	}
	m.stateIndex = make(map[string]int, len(m.States))
	for i, state := range m.States {
		m.stateIndex[state] = i
	}
	if len(m.InitialWeights) != len(m.States) || len(m.FinalWeights) != len(m.States) {
		return nil, fmt.Errorf("model %s has inconsistent state weights", modelPath)
	}
	return &m, nil
}
