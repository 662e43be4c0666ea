package container

// Name is the backend's short identifier.
const Name = "container"

const (
	defaultImage   = "bashlet-sandbox:latest"
	dockerfilePath = "docker/Dockerfile.sandbox"
)
