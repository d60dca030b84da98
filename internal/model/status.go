package model

// SessionState represents where the uploader session is in its lifecycle
type SessionState string

const (
	// SessionStateIdle means nothing has been selected or received yet
	SessionStateIdle SessionState = "Idle"

	// SessionStateSelected means a file is chosen and ready to send
	SessionStateSelected SessionState = "Selected"

	// SessionStateUploading means the selected file is being processed
	SessionStateUploading SessionState = "Uploading"

	// SessionStateFetchingExample means the example request is in flight
	SessionStateFetchingExample SessionState = "FetchingExample"

	// SessionStateReady means a processed result is waiting to be saved
	SessionStateReady SessionState = "Ready"
)

// String returns the string representation of SessionState
func (s SessionState) String() string {
	return string(s)
}

// IsBusy returns true while a network request is in flight
func (s SessionState) IsBusy() bool {
	return s == SessionStateUploading || s == SessionStateFetchingExample
}

// RequestStatus represents the status of a single backend request
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "Pending"
	RequestStatusRunning   RequestStatus = "Running"
	RequestStatusCompleted RequestStatus = "Completed"
	RequestStatusError     RequestStatus = "Error"
)

// String returns the string representation of RequestStatus
func (rs RequestStatus) String() string {
	return string(rs)
}

// IsActive returns true if the request has not finished yet
func (rs RequestStatus) IsActive() bool {
	return rs == RequestStatusPending || rs == RequestStatusRunning
}

// IsFinished returns true if the request completed or failed
func (rs RequestStatus) IsFinished() bool {
	return rs == RequestStatusCompleted || rs == RequestStatusError
}
