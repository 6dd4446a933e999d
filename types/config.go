package types

import (
	"annolab.com/seqtag/logger"
	"annolab.com/seqtag/utils"
	"encoding/json"
	"fmt"
	jsonpatch "github.com/evanphx/json-patch"
	"gopkg.in/yaml.v3"
	"io/ioutil"
	"os"
	"path"
	"strings"
	"sync"
)

const (
	// scorer names
	ScorerRandom          = "random"
	ScorerLeastConfidence = "lc"
	ScorerMaxNormLogProb  = "mnlp"
	ScorerDistributeSim   = "ds"
	ScorerClusterSim      = "cs"
	ScorerLCDistribute    = "lc_ds"
	ScorerLCCluster       = "lc_cs"
	ScorerMNLPDistribute  = "mnlp_ds"
	ScorerMNLPCluster     = "mnlp_cs"

	// combined modes
	CombinedSeries   = "series"
	CombinedParallel = "parallel"
)

var knownScorers = map[string]bool{
	ScorerRandom:          true,
	ScorerLeastConfidence: true,
	ScorerMaxNormLogProb:  true,
	ScorerDistributeSim:   true,
	ScorerClusterSim:      true,
	ScorerLCDistribute:    true,
	ScorerLCCluster:       true,
	ScorerMNLPDistribute:  true,
	ScorerMNLPCluster:     true,
}

func IsCombinedScorer(name string) bool {
	return strings.Contains(name, "_")
}

type KMeansParams struct {
	NClusters int   `yaml:"n_clusters" json:"n_clusters"`
	NInit     int   `yaml:"n_init" json:"n_init"`
	Seed      int64 `yaml:"seed" json:"seed"`
}

type TrainerParams struct {
	Epochs       int     `yaml:"epochs" json:"epochs"`
	Seed         int64   `yaml:"seed" json:"seed"`
	LearningRate float64 `yaml:"learning_rate" json:"learning_rate"`
}

type QueryParams struct {
	Scorer       string `yaml:"scorer" json:"scorer"`
	CombinedType string `yaml:"combined_type" json:"combined_type"`
	Number       int    `yaml:"number" json:"number"`
	TokenBased   bool   `yaml:"token_based" json:"token_based"`
}

func (qParams QueryParams) GetHashCode() uint64 {
	return utils.HashString(strings.ToLower(fmt.Sprintf(
		"%s|%s|%d|%t",
		qParams.Scorer, qParams.CombinedType, qParams.Number, qParams.TokenBased,
	)))
}

type Configuration struct {
	Name         string        `json:"name"`
	FilePath     string        `json:"file_path"`
	TagType      string        `yaml:"tag_type" json:"tag_type"`
	EmbeddingDim int           `yaml:"embedding_dim" json:"embedding_dim"`
	Query        QueryParams   `yaml:"query" json:"query"`
	KMeans       KMeansParams  `yaml:"kmeans" json:"kmeans"`
	Trainer      TrainerParams `yaml:"trainer" json:"trainer"`
}

func defaultConfiguration() Configuration {
	return Configuration{
		TagType:      "ner",
		EmbeddingDim: 64,
		Query: QueryParams{
			Scorer: ScorerLeastConfidence,
			Number: 10,
		},
		KMeans: KMeansParams{
			NClusters: 8,
			NInit:     10,
		},
		Trainer: TrainerParams{
			Epochs:       10,
			LearningRate: 1.0,
		},
	}
}

func (cfg Configuration) Validate() error {
	if !knownScorers[cfg.Query.Scorer] {
		return fmt.Errorf("unknown scorer %q", cfg.Query.Scorer)
	}
	if IsCombinedScorer(cfg.Query.Scorer) {
		switch cfg.Query.CombinedType {
		case CombinedSeries, CombinedParallel:
		case "":
			return fmt.Errorf("scorer %q requires combined_type", cfg.Query.Scorer)
		default:
			return fmt.Errorf("unknown combined_type %q", cfg.Query.CombinedType)
		}
	}
	if cfg.TagType == "" {
		return fmt.Errorf("tag_type must not be empty")
	}
	return nil
}

// LoadConfiguration merges a yaml profile over the built-in defaults.
// The file content is applied as a JSON merge patch so that partial
// profiles only override what they mention.
func LoadConfiguration(filePath string) (Configuration, error) {
	cfg := defaultConfiguration()
	cfg.Name = strings.TrimSuffix(path.Base(filePath), ".yaml")
	cfg.FilePath = filePath

	buf, err := ioutil.ReadFile(filePath)
	if err != nil {
		return cfg, err
	}
	var rawProfile map[string]interface{}
	if err := yaml.Unmarshal(buf, &rawProfile); err != nil {
		return cfg, err
	}
	patch, err := json.Marshal(rawProfile)
	if err != nil {
		return cfg, err
	}
	base, err := json.Marshal(cfg)
	if err != nil {
		return cfg, err
	}
	merged, err := jsonpatch.MergePatch(base, patch)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(merged, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func LoadConfigurations(dirPath string) ([]Configuration, error) {
	cfgLogger := logger.NewLogger("LoadConfigurations")

	files, err := ioutil.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	configChan := make(chan Configuration, len(files))
	for _, f := range files {
		// Skip dirs and non-yaml files
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}

		wg.Add(1)
		go func(file os.FileInfo) {
			defer wg.Done()
			cfg, err := LoadConfiguration(path.Join(dirPath, file.Name()))
			if err != nil {
				cfgLogger.Err(err).Str("file", file.Name()).Msg("Skipping profile")
				return
			}
			configChan <- cfg
		}(f)
	}

	go func() {
		wg.Wait()
		close(configChan)
	}()

	configs := make([]Configuration, 0, len(configChan))
	for cfg := range configChan {
		configs = append(configs, cfg)
	}
	return configs, nil
}
