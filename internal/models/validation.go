package models

// GeneralErrorKey is the map key for errors that are not tied to a
// single field, rendered as a banner by the frontend.
const GeneralErrorKey = "base"

// ValidationErrors maps field names to their validation messages.
// Business validation failures are data, not Go errors: handlers
// return them as a 422 body and services never wrap them in error.
type ValidationErrors map[string][]string

// Add appends a message for a field
func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

// AddGeneral appends a message not attributable to one field
func (v ValidationErrors) AddGeneral(message string) {
	v.Add(GeneralErrorKey, message)
}

// Valid returns true when no errors were recorded
func (v ValidationErrors) Valid() bool {
	return len(v) == 0
}

// HasField returns true if the given field has at least one error
func (v ValidationErrors) HasField(field string) bool {
	return len(v[field]) > 0
}
