package response

// Error is the uniform error body: detail is human-readable, code is short and
// machine-checkable.
type Error struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}
