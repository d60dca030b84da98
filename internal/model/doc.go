package model

// Package model defines domain data structures used across the app: the
// user's selection and the processed result, plus request records and state
// enums for display in the UI.
