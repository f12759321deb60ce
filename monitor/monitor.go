// monitor/monitor.go
package monitor

import (
	"context"
	"time"

	"quant_risk_go/agent"
	"quant_risk_go/config"
	"quant_risk_go/logs"
	"quant_risk_go/portfolio"
)

const heartbeatInterval = 30 * time.Minute

// Start runs the main loop of the monitor: one risk analysis immediately,
// then one per interval until the stop channel closes. Each cycle the agent
// message is logged so downstream consumers can be tailed from the log
// while a message bus is not wired.
func Start(
	riskAgent *agent.Agent,
	pf *portfolio.Portfolio,
	cfg *config.MonitorConfig,
	stopChan <-chan struct{},
) {
	interval := time.Duration(cfg.AnalysisIntervalMinutes) * time.Minute
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastHeartbeat := time.Now()

	runOnce(riskAgent, pf)

	for {
		select {
		case <-stopChan:
			logs.Info("Monitor received stop signal, exiting.")
			return
		case <-ticker.C:
			runOnce(riskAgent, pf)

			if time.Since(lastHeartbeat) >= heartbeatInterval {
				logs.Info("[Heartbeat] Monitor service still running...")
				lastHeartbeat = time.Now()
			}
		}
	}
}

func runOnce(riskAgent *agent.Agent, pf *portfolio.Portfolio) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	msg, err := riskAgent.Run(ctx, pf, time.Now())
	if err != nil {
		logs.Errorf("[Monitor-Error] Risk analysis cycle failed: %v", err)
		return
	}
	logs.Infof("[Monitor] Risk guidance %s: %s", msg.RunID, string(msg.Content))
}
