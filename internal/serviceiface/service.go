package serviceiface

// Service is the lifecycle contract shared by the long-lived pieces of the
// process: the file logger and the scheduled batch runner.
type Service interface {
	Name() string
	Start() error
	Stop() error
}
