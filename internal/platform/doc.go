package platform

// Package platform contains OS integration: the download directory sink,
// filesystem helpers and OS open/reveal.
