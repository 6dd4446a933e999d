package types

import "strings"

// Entity is a contiguous labeled span decoded from one sentence.
// ID is the entity's index within its sentence, Cluster the k-means
// assignment (-1 until assigned).
type Entity struct {
	ID      int
	SentID  int
	Start   int
	End     int
	Label   string
	Text    string
	Vector  []float64
	Cluster int
}

func newEntity(id int, sent *Sentence, start, end int, label string) *Entity {
	entity := &Entity{
		ID:      id,
		SentID:  sent.ID,
		Start:   start,
		End:     end,
		Label:   label,
		Cluster: -1,
	}
	texts := make([]string, 0, end-start)
	var pooled []float64
	for _, token := range sent.Tokens[start:end] {
		texts = append(texts, token.Text)
		if token.Vector == nil {
			continue
		}
		if pooled == nil {
			pooled = make([]float64, len(token.Vector))
		}
		for d, v := range token.Vector {
			pooled[d] += v
		}
	}
	if pooled != nil {
		for d := range pooled {
			pooled[d] /= float64(end - start)
		}
	}
	entity.Text = strings.Join(texts, " ")
	entity.Vector = pooled
	return entity
}

// Entities collects spans across a batch of sentences.
type Entities struct {
	Items []*Entity
}

func (entities *Entities) Add(entity *Entity) {
	entities.Items = append(entities.Items, entity)
}

func (entities *Entities) Len() int {
	return len(entities.Items)
}

func (entities *Entities) GroupBySentence() map[int][]*Entity {
	groups := make(map[int][]*Entity)
	for _, entity := range entities.Items {
		groups[entity.SentID] = append(groups[entity.SentID], entity)
	}
	return groups
}

func (entities *Entities) GroupByLabel() map[string][]*Entity {
	groups := make(map[string][]*Entity)
	for _, entity := range entities.Items {
		groups[entity.Label] = append(groups[entity.Label], entity)
	}
	return groups
}

func (entities *Entities) GroupByCluster() map[int][]*Entity {
	groups := make(map[int][]*Entity)
	for _, entity := range entities.Items {
		groups[entity.Cluster] = append(groups[entity.Cluster], entity)
	}
	return groups
}
