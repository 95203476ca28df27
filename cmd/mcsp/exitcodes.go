package main

// Exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing credentials, empty venue list)
	ExitCacheError  = 3 // Cache store could not be opened or written
)
