package serviceiface

// Service is the lifecycle contract every managed service implements.
// The appmanager starts services in the order given by services.yaml and
// stops them in reverse.
type Service interface {
	Name() string
	Start() error
	Stop() error
}
