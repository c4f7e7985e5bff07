package metrics

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	"humesync/pkg/logger"
)

// AgentCollector reports how many local agents are linked to a remote config
type AgentCollector struct {
	log      *logger.Logger
	postgres *sqlx.DB

	totalAgents *prometheus.Desc
}

// NewAgentCollector creates a new agent state collector
func NewAgentCollector(log *logger.Logger, postgres *sqlx.DB) *AgentCollector {
	return &AgentCollector{
		log:      log,
		postgres: postgres,
		totalAgents: prometheus.NewDesc(
			"humesync_agents",
			"Number of local voice agents by remote sync state",
			[]string{"state"}, // state: synced|unsynced
			nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *AgentCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalAgents
}

// Collect implements prometheus.Collector
func (c *AgentCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type agentStat struct {
		Synced bool `db:"synced"`
		Count  int  `db:"count"`
	}

	var stats []agentStat
	err := c.postgres.SelectContext(ctx, &stats, `
		SELECT remote_config_id <> '' AS synced, COUNT(*) AS count
		FROM voice_agents
		GROUP BY 1
	`)
	if err != nil {
		c.log.Errorw("Failed to collect agent stats", "error", err)
		return
	}

	for _, stat := range stats {
		state := "unsynced"
		if stat.Synced {
			state = "synced"
		}
		ch <- prometheus.MustNewConstMetric(
			c.totalAgents,
			prometheus.GaugeValue,
			float64(stat.Count),
			state,
		)
	}
}

// RegisterAgentCollector registers the agent collector
func RegisterAgentCollector(collector *AgentCollector) {
	prometheus.MustRegister(collector)
}
