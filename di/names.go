package di

// Service keys shared by the rex executors.
const (
	TaskPipeline                  = "TaskPipeline"
	SequentialTasksPipeline       = "SequentialTasksPipeline"
	JobPipeline                   = "JobPipeline"
	SequentialJobsPipeline        = "SequentialJobsPipeline"
	DeploymentPipeline            = "DeploymentPipeline"
	SequentialDeploymentsPipeline = "SequentialDeploymentsPipeline"
	DiscoveryPipeline             = "DiscoveryPipeline"

	TaskRegistry       = "TaskRegistry"
	DeploymentRegistry = "DeploymentRegistry"

	// Timeout is the default unit timeout, a time.Duration or whole seconds.
	Timeout = "timeout"
	Logger  = "logger"
	Config  = "config"
)
