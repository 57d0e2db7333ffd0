package models

// SubmissionRequest is the wire payload posted by the contact form.
// Website is the honeypot field and is always expected to be empty.
type SubmissionRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
	Website string `json:"website,omitempty"`
}

// SubmissionResult is the outcome of a successful (or silently trapped)
// submission. ID is empty when nothing was delivered.
type SubmissionResult struct {
	ID      string
	Trapped bool
}

// ProbeConfigured stands in for the destination address in probe results
const ProbeConfigured = "configured"

// ProbeResult reports whether delivery is configured without exposing
// the configured values. To is ProbeConfigured or empty.
type ProbeResult struct {
	HasKey bool
	To     string
}
