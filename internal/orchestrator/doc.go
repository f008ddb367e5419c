// Package orchestrator routes task descriptions to the agents best able to
// handle them and tracks what the session has learned.
//
// Delegation runs in three pure steps:
//   - TaskAnalyzer turns free text into a TaskRequirement by keyword matching
//   - Score rates each registered agent against the requirement
//   - AssembleTeam picks a primary agent and, for multi-perspective work,
//     greedily adds agents that cover the remaining required domains
//
// Engine wraps these steps together with the learning log and snapshot
// persistence. Registries are immutable; SwapRegistry replaces the whole
// catalog atomically, which is how catalog hot reload is applied.
//
// Example usage:
//
//	engine := orchestrator.New(registry.Default(), orchestrator.WithSink(sink))
//	result, err := engine.DelegateTask("design the consciousness architecture")
//	if err != nil {
//		return err
//	}
//	fmt.Println(result.PrimaryAgentID, result.Team)
package orchestrator
