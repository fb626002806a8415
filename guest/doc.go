// Package guest is the program side of the syscall contract.
//
// A guest program is a Program: a function of the Syscalls the host provides and an
// opaque input buffer, returning 0 on success. Programs have exactly one way to fail
// hard, Panic, which never returns. Assert is built on it and is the only conditional
// error handling a program has; there is no recoverable mode.
//
// Compiled for Wasm (GOOS=wasip1), Host returns the syscalls imported from the "env"
// module, and the package exports "allocate" so the host can place the entry point's
// input in guest memory. Natively, the engine in package recovervm passes its own implementation.
package guest
