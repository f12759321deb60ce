package main

import (
	"time"

	"quant_risk_go/agent"
	"quant_risk_go/config"
	"quant_risk_go/data"
	"quant_risk_go/logs"
	"quant_risk_go/monitor"
	"quant_risk_go/risk"
)

// Orchestrator wires the data layer, risk manager, agent and monitor
// together and owns their lifecycle.
type Orchestrator struct {
	cfg     *config.Config
	cache   *data.Cache
	service *data.Service
	manager *risk.Manager
	agent   *agent.Agent
	server  *monitor.Server

	stopChan chan struct{}
	done     chan struct{}
}

// NewOrchestrator builds the full service graph from configuration.
func NewOrchestrator(cfg *config.Config, envCfg *config.EnvConfig) (*Orchestrator, error) {
	cfg.ApplyEnv(envCfg)

	cache, err := data.NewCache(
		cfg.Data.CacheDirectory,
		time.Duration(cfg.Data.PriceCacheTTLHours)*time.Hour,
		time.Duration(cfg.Data.FundamentalCacheTTLHours)*time.Hour,
	)
	if err != nil {
		return nil, err
	}

	service := data.NewService(cfg.Data, cache)
	manager := risk.NewManager(cfg.Risk, service)
	riskAgent := agent.New(manager, service, cfg.Monitor.LookbackDays)
	server := monitor.NewServer(manager, cfg.Monitor.ListenAddr)

	return &Orchestrator{
		cfg:      cfg,
		cache:    cache,
		service:  service,
		manager:  manager,
		agent:    riskAgent,
		server:   server,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the HTTP server and the periodic analysis loop.
func (o *Orchestrator) Start() {
	go func() {
		if err := o.server.ListenAndServe(); err != nil {
			logs.Errorf("HTTP server stopped: %v", err)
		}
	}()

	go func() {
		defer close(o.done)
		monitor.Start(o.agent, o.cfg.Portfolio, o.cfg.Monitor, o.stopChan)
	}()

	logs.Infof("Risk service started, data source: %s, %d positions",
		o.cfg.Data.DefaultSource, len(o.cfg.Portfolio.Positions))
}

// Stop shuts down the monitor loop, HTTP server and cache in order.
func (o *Orchestrator) Stop() {
	logs.Info("Shutting down risk service...")
	close(o.stopChan)
	<-o.done

	if err := o.server.Shutdown(); err != nil {
		logs.Errorf("HTTP server shutdown error: %v", err)
	}
	if err := o.cache.Close(); err != nil {
		logs.Errorf("Cache close error: %v", err)
	}
	logs.Info("Risk service stopped.")
}
