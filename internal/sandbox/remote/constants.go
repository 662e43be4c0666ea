package remote

// Name is the backend's short identifier.
const Name = "remote"

const defaultConnectTimeoutSec = 10
