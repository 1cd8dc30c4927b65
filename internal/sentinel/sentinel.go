package sentinel

var _ error = Error("")

// Error is an error whose identity is its text. Declare sentinels with it as
// const so no caller can reassign them.
type Error string

// Error implements the error interface.
func (e Error) Error() string {
	return string(e)
}
