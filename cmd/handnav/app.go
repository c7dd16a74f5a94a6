package main

import (
	"context"
	"errors"

	"github.com/tenxer/handnav/internal/classifier"
	"github.com/tenxer/handnav/internal/config"
	hnerr "github.com/tenxer/handnav/internal/errors"
	"github.com/tenxer/handnav/internal/filestore"
	"github.com/tenxer/handnav/internal/llm"
	"github.com/tenxer/handnav/internal/logging"
	"github.com/tenxer/handnav/internal/navigation"
	"github.com/tenxer/handnav/internal/protocol"
	"github.com/tenxer/handnav/internal/resolver"
)

// app wires one navigation machine to the resolver and protocol server.
type app struct {
	cfg        *config.Config
	client     llm.LLMClient
	classifier *classifier.Classifier
	machine    *navigation.Machine
	pipeline   *resolver.Pipeline
	server     *protocol.Server
}

// newApp builds the shared stack. A missing API key leaves the classifier
// unconfigured; local matching still works.
func newApp(ctx context.Context, cfg *config.Config, opts ...llm.Option) (*app, error) {
	log := logging.Global().WithPrefix("app")

	var client llm.LLMClient
	c, err := llm.New(ctx, cfg, opts...)
	switch {
	case err == nil:
		client = c
	case errors.Is(err, hnerr.ClassifierNotConfigured()):
		log.Warn("no API key, running without classifier", logging.Provider(string(cfg.LLM.Provider)))
	default:
		return nil, err
	}

	machine := navigation.NewMachine()
	adapter := navigation.Bind(machine)
	cls := classifier.New(client, cfg.Classifier)
	pipeline := resolver.New(cls, adapter)

	return &app{
		cfg:        cfg,
		client:     client,
		classifier: cls,
		machine:    machine,
		pipeline:   pipeline,
		server:     protocol.NewServer(pipeline, adapter),
	}, nil
}

func (a *app) modelName() string {
	if a.client == nil {
		return "no classifier"
	}
	return a.client.GetModel()
}

// stores opens the sketch store and uploader.
func (a *app) stores() (filestore.Store, *filestore.Uploader, error) {
	store, err := filestore.New(a.cfg.Store)
	if err != nil {
		return nil, nil, err
	}
	up, err := filestore.NewUploader(a.cfg.Store.UploadDir)
	if err != nil {
		return nil, nil, err
	}
	return store, up, nil
}

func (a *app) Close() error {
	if a.client == nil {
		return nil
	}
	return a.client.Close()
}
