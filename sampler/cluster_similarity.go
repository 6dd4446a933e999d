package sampler

import (
	"annolab.com/seqtag/logger"
	"annolab.com/seqtag/types"
	"fmt"
)

// ClusterSimilarity clusters all entity vectors with k-means and scores a
// sentence by how tightly its entities sit inside their clusters. An
// entity's score is its lowest cosine similarity to any cluster peer, an
// entity alone in its cluster scores against the cluster center, and a
// sentence takes the mean over its entities. Low scores are picked first.
type ClusterSimilarity struct{}

func (scorer *ClusterSimilarity) Name() string {
	return types.ScorerClusterSim
}

func (scorer *ClusterSimilarity) Select(sentences []*types.Sentence, params types.QueryParams, ctx *Context) ([]int, error) {
	scores, err := scorer.poolScores(sentences, ctx)
	if err != nil {
		return nil, err
	}
	if scores == nil {
		log := logger.NewLogger("ClusterSimilarity")
		log.Warn().Msg("No entities found, falling back to random order")
		return queryBudget(sentences, randomOrder(len(sentences), ctx.Seed), params), nil
	}
	return queryBudget(sentences, rankAscending(scores), params), nil
}

// poolScores predicts the pool, clusters its entities and returns the
// diversity scores, or nil when no entities were found.
func (scorer *ClusterSimilarity) poolScores(sentences []*types.Sentence, ctx *Context) ([]float64, error) {
	if ctx.Tagger == nil {
		return nil, fmt.Errorf("scorer %q needs a tagger", scorer.Name())
	}
	if ctx.KMeans.NClusters <= 0 {
		return nil, fmt.Errorf("scorer %q requires kmeans n_clusters", scorer.Name())
	}
	ctx.Tagger.Predict(sentences)

	entities, err := GetEntities(sentences, ctx)
	if err != nil {
		return nil, err
	}
	if entities.Len() == 0 {
		return nil, nil
	}

	kmeansParams := ctx.KMeans
	if kmeansParams.NClusters > entities.Len() {
		kmeansParams.NClusters = entities.Len()
	}
	vectors := make([][]float64, entities.Len())
	for i, entity := range entities.Items {
		vectors[i] = entity.Vector
	}
	centers, assignments, err := RunKMeans(vectors, kmeansParams)
	if err != nil {
		return nil, err
	}
	AssignClusters(entities, assignments)
	return scorer.Scores(sentences, entities, centers), nil
}

// AssignClusters writes the k-means assignment onto each entity, in the
// order the vectors were handed to RunKMeans.
func AssignClusters(entities *types.Entities, assignments []int) {
	for i, entity := range entities.Items {
		entity.Cluster = assignments[i]
	}
}

func (scorer *ClusterSimilarity) Scores(sentences []*types.Sentence, entities *types.Entities, centers [][]float64) []float64 {
	diversities := scorer.SentenceDiversities(entities, centers)
	scores := make([]float64, len(sentences))
	for i, sent := range sentences {
		scores[i] = diversities[sent.ID]
	}
	return scores
}

func (scorer *ClusterSimilarity) SentenceDiversities(entities *types.Entities, centers [][]float64) map[int]float64 {
	perCluster := entities.GroupByCluster()

	diversities := make(map[int]float64)
	for sentID, group := range entities.GroupBySentence() {
		total := 0.0
		for _, entity := range group {
			total += entityCohesion(entity, perCluster[entity.Cluster], centers)
		}
		diversities[sentID] = total / float64(len(group))
	}
	return diversities
}

func entityCohesion(entity *types.Entity, peers []*types.Entity, centers [][]float64) float64 {
	lowest := 0.0
	found := false
	for _, peer := range peers {
		if peer == entity {
			continue
		}
		sim := cosineSimilarity(entity.Vector, peer.Vector)
		if !found || sim < lowest {
			lowest = sim
			found = true
		}
	}
	if !found {
		if entity.Cluster >= 0 && entity.Cluster < len(centers) {
			return cosineSimilarity(entity.Vector, centers[entity.Cluster])
		}
		return 0
	}
	return lowest
}
