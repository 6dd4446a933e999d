package main

import (
	"annolab.com/seqtag/api"
	"annolab.com/seqtag/corpus"
	"annolab.com/seqtag/logger"
	"annolab.com/seqtag/selection"
	"annolab.com/seqtag/tagger"
	"annolab.com/seqtag/types"
	"annolab.com/seqtag/worker"
	"flag"
	"fmt"
	"github.com/kelseyhightower/envconfig"
	"net/http"
	"os"
	"path"
	"time"
)

type Config struct {
	ConfigPath    string `envconfig:"SEQTAG_CONFIG_PATH" required:"true"`
	ModelPath     string `envconfig:"SEQTAG_MODEL_PATH" required:"true"`
	DataPath      string `envconfig:"SEQTAG_DATA_PATH" default:""`
	TrainFile     string `envconfig:"SEQTAG_TRAIN_FILE" default:"train.txt"`
	DevFile       string `envconfig:"SEQTAG_DEV_FILE" default:"dev.txt"`
	TestFile      string `envconfig:"SEQTAG_TEST_FILE" default:""`
	RestAPIActive bool   `envconfig:"SEQTAG_REST_API_ACTIVE" default:"false"`
	RestAPIPort   string `envconfig:"SEQTAG_REST_API_PORT" default:"10000"`
}

const pipelineStartMaxRetries = 5

func main() {
	logger.SetupLogging()
	mainLogger := logger.NewLogger("Main")
	fatalErrLogger := mainLogger.Fatal().Caller()
	train := flag.Bool("train", false, "a bool")
	flag.Parse()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fatalErrLogger.Err(err).Msg("Failed to read environment")
		os.Exit(1)
	}

	// train seed models for all profiles and exit
	if *train {
		cfgs, err := types.LoadConfigurations(config.ConfigPath)
		if err != nil {
			mainLogger.Err(err).Msg("Failed to load configurations")
			return
		}
		if err := trainModels(config, cfgs); err != nil {
			fatalErrLogger.Err(err).Msg("Failed to train seed models")
			os.Exit(1)
		}
		mainLogger.Info().Msg("Seed models were trained. Exit...")
		return
	}

	//Load selection pipeline
	pipelineChannel := make(chan selection.Pipeline)
	go func() {
		for retry := 0; retry < pipelineStartMaxRetries; retry++ {
			cfgs, err := types.LoadConfigurations(config.ConfigPath)
			if err != nil {
				mainLogger.Err(err).Msg("Failed to load configurations. Retrying in 5 sec")
				time.Sleep(5 * time.Second)
				continue
			}
			mainLogger.Info().Msgf("Loaded %d configurations", len(cfgs))
			mainLogger.Info().Msg("Starting selection pipeline loading")

			ppln, err := selection.New(selection.Params{
				ModelFolder:    config.ModelPath,
				Configurations: cfgs,
			})
			if err != nil {
				mainLogger.Err(err).Msg("Failed to start selection pipeline. Retrying in 5 sec")
				time.Sleep(5 * time.Second)
				continue
			}
			mainLogger.Info().Msg("Selection pipeline loaded")
			pipelineChannel <- ppln
			return
		}
		fatalErrLogger.Msg("Could not start selection pipeline after 5 retries, exiting")
		os.Exit(1)
	}()

	// block until pipeline loads
	ppln := <-pipelineChannel

	if config.RestAPIActive {
		go func() {
			mainLogger.Info().Msg("Starting API service")
			apiRequest := &api.Request{
				Pipeline: ppln,
			}
			http.HandleFunc("/", apiRequest.ProcessData)
			host := fmt.Sprintf(":%s", config.RestAPIPort)
			mainLogger.Info().Msgf("REST API on %s", host)
			err := http.ListenAndServe(host, nil)
			fatalErrLogger.Err(err).Msg("REST API stopped with error")
		}()
	}

	mainLogger.Info().Msg("Start Sampler Worker")
	for {
		rmqWorker, err := worker.New(ppln)
		if err != nil {
			mainLogger.Fatal().Err(err).Msg("Could not initialize RMQ worker")
			os.Exit(1)
		}
		err = rmqWorker.StartWorker()
		if err != nil {
			mainLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
			time.Sleep(5 * time.Second)
		}
	}
}

func trainModels(config Config, cfgs []types.Configuration) error {
	mainLogger := logger.NewLogger("Train")
	for _, cfg := range cfgs {
		columns := map[int]string{0: "text", 1: cfg.TagType}
		data, err := corpus.NewColumnCorpus(config.DataPath, columns, config.TrainFile, config.DevFile, config.TestFile)
		if err != nil {
			return fmt.Errorf("load corpus for %q: %w", cfg.Name, err)
		}
		tgr := tagger.New(cfg.TagType)
		trainer := tagger.NewTrainer(tgr, cfg.Trainer)
		metrics := trainer.Train(data)
		mainLogger.Info().
			Str("config_name", cfg.Name).
			Str("metrics", metrics.String()).
			Msg("Trained seed model")
		modelPath := path.Join(config.ModelPath, selection.ModelFileKey(cfg.Name))
		if err := tgr.Save(modelPath); err != nil {
			return fmt.Errorf("save model for %q: %w", cfg.Name, err)
		}
	}
	return nil
}
