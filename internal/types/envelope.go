package types

// Envelope is the response body of every API operation, success or failure.
type Envelope[T any] struct {
	Output  T       `json:"output"`
	Error   *string `json:"error"`
	Message string  `json:"message"`
}

// ErrorEnvelope is a failure body; output is always null.
type ErrorEnvelope = Envelope[any]

// Success builds an envelope with a null error.
func Success[T any](output T, message string) Envelope[T] {
	return Envelope[T]{Output: output, Message: message}
}

// Failure builds an envelope with a null output.
func Failure(errMsg, message string) ErrorEnvelope {
	return ErrorEnvelope{Error: &errMsg, Message: message}
}

// DatasetStatus reports whether the recipe dataset is resident.
type DatasetStatus struct {
	Loaded bool `json:"loaded"`
	Rows   int  `json:"rows"`
}

// HealthResponse is the fixed health check payload
type HealthResponse struct {
	HealthCheck string        `json:"health_check"`
	Message     string        `json:"message"`
	Dataset     DatasetStatus `json:"dataset"`
}
