package kafka

// Topic definitions for agent sync events
const (
	TopicAgentSynced     = "agents.synced"
	TopicAgentDeleted    = "agents.deleted"
	TopicAgentSyncFailed = "agents.sync_failed"
	TopicAgentReconciled = "agents.reconciled"
)

// Topics lists every topic the service writes to
func Topics() []string {
	return []string{
		TopicAgentSynced,
		TopicAgentDeleted,
		TopicAgentSyncFailed,
		TopicAgentReconciled,
	}
}
