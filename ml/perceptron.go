package ml

// Perceptron trains a CRF with averaged structured-perceptron updates.
// Averaging uses the lazy trick: every weight change also bumps an
// accumulator scaled by the current step, and Average subtracts
// accumulator/steps from the raw weights.
type Perceptron struct {
	model        *CRF
	learningRate float64

	accEmissions   [][]float64
	accTransitions [][]float64
	accInitial     []float64
	accFinal       []float64
	step           float64
}

func NewPerceptron(model *CRF, learningRate float64) *Perceptron {
	if learningRate <= 0 {
		learningRate = 1.0
	}
	p := &Perceptron{
		model:        model,
		learningRate: learningRate,
		step:         1,
	}
	p.accEmissions = make([][]float64, len(model.Emissions))
	for f := range p.accEmissions {
		p.accEmissions[f] = make([]float64, len(model.States))
	}
	p.accTransitions = make([][]float64, len(model.Transitions))
	for s := range p.accTransitions {
		p.accTransitions[s] = make([]float64, len(model.States))
	}
	p.accInitial = make([]float64, len(model.States))
	p.accFinal = make([]float64, len(model.States))
	return p
}

// Learn runs one decode-and-update step. Returns true when the decoded
// path already matched the gold sequence.
func (p *Perceptron) Learn(features [][]string, gold []int) bool {
	predicted, _ := p.model.DecodeViterbi(features)
	p.step++
	if equalPaths(predicted, gold) {
		return true
	}
	p.updatePath(features, gold, p.learningRate)
	p.updatePath(features, predicted, -p.learningRate)
	return false
}

func (p *Perceptron) updatePath(features [][]string, path []int, delta float64) {
	if len(path) == 0 {
		return
	}
	p.bumpInitial(path[0], delta)
	for t, s := range path {
		for _, fIdx := range p.model.ToFeatureIdxVector(features[t]) {
			p.model.Emissions[fIdx][s] += delta
			p.accEmissions[fIdx][s] += p.step * delta
		}
		if t > 0 {
			prev := path[t-1]
			p.model.Transitions[prev][s] += delta
			p.accTransitions[prev][s] += p.step * delta
		}
	}
	p.bumpFinal(path[len(path)-1], delta)
}

func (p *Perceptron) bumpInitial(s int, delta float64) {
	p.model.InitialWeights[s] += delta
	p.accInitial[s] += p.step * delta
}

func (p *Perceptron) bumpFinal(s int, delta float64) {
	p.model.FinalWeights[s] += delta
	p.accFinal[s] += p.step * delta
}

// Average folds the accumulators into the model weights. Call once after
// the last epoch.
func (p *Perceptron) Average() {
	for f := range p.model.Emissions {
		for s := range p.model.Emissions[f] {
			p.model.Emissions[f][s] -= p.accEmissions[f][s] / p.step
		}
	}
	for prev := range p.model.Transitions {
		for s := range p.model.Transitions[prev] {
			p.model.Transitions[prev][s] -= p.accTransitions[prev][s] / p.step
		}
	}
	for s := range p.model.InitialWeights {
		p.model.InitialWeights[s] -= p.accInitial[s] / p.step
		p.model.FinalWeights[s] -= p.accFinal[s] / p.step
	}
}

func equalPaths(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
