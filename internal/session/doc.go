package session

// Package session owns the uploader's interaction state (selection, result,
// busy flag). It validates intake, drives the upload and example requests
// through the backend, and saves results through a Sink. While a request is
// in flight every other request is refused with ErrBusy.
