package models

// Result is the uniform outcome of an invoice action service.
// Success with a non-empty Errors slice means the primary transition went
// through but a side effect (email, push) failed softly.
type Result struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func Ok(message string) Result {
	return Result{Success: true, Message: message}
}

func Fail(message string) Result {
	return Result{Success: false, Message: message}
}

// SoftFail appends a non-fatal error to an otherwise successful result.
func (r Result) SoftFail(msg string) Result {
	r.Errors = append(r.Errors, msg)
	return r
}
