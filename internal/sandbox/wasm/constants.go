package wasm

// Name is the backend's short identifier.
const Name = "wasm"
