package backend

// Package backend is the HTTP client for the zip processing service. It sends
// the user's archive (or the canned example request), returns the processed
// bytes, and guards the service with a circuit breaker. It never retries.
