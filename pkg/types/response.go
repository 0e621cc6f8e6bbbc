package types

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RemoteError is the body shape the commerce API uses for failures.
type RemoteError struct {
	Error         string   `json:"error"`
	Message       string   `json:"message,omitempty"`
	Reason        string   `json:"reason,omitempty"`
	MinOrderValue *float64 `json:"min_order_value,omitempty"`
}
