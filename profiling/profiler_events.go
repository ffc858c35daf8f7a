package profiling

import (
	"github.com/crytic/tokengas/chain"
	"github.com/crytic/tokengas/events"
)

// ProfilerEvents defines event emitters for a Profiler.
type ProfilerEvents struct {
	// DeploymentCompleted emits events when a profiled contract has been deployed.
	DeploymentCompleted events.EventEmitter[DeploymentCompletedEvent]

	// StepCompleted emits events when a method step of a pipeline completes.
	StepCompleted events.EventEmitter[StepCompletedEvent]

	// ProfileCompleted emits events when a pipeline completes successfully.
	ProfileCompleted events.EventEmitter[ProfileCompletedEvent]
}

// DeploymentCompletedEvent describes an event where a contract was deployed at the start of a pipeline.
type DeploymentCompletedEvent struct {
	RunId    string
	Spec     ContractSpec
	Instance *chain.ContractInstance
	GasUsed  uint64
}

// StepCompletedEvent describes an event where a method step of a pipeline completed. Skipped optional steps are
// reported with Skipped set.
type StepCompletedEvent struct {
	RunId     string
	Spec      ContractSpec
	Operation string
	GasUsed   uint64
	Skipped   bool
}

// ProfileCompletedEvent describes an event where a pipeline produced its final report.
type ProfileCompletedEvent struct {
	RunId  string
	Spec   ContractSpec
	Report GasReport
}
