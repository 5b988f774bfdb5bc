package models

// Distance is one ranked neighbor. ID is empty when the engine handle has no mapping.
type Distance struct {
	ID       string  `json:"id"`
	Distance float32 `json:"distance"`
}

// SearchResponse is the reply to a search.
type SearchResponse struct {
	RequestID string      `json:"request_id"`
	Results   []*Distance `json:"results"`
}

// StreamSearchResponse is one streamed search reply. Exactly one field is set.
type StreamSearchResponse struct {
	Response *SearchResponse `json:"response,omitempty"`
	Error    *RPCError       `json:"error,omitempty"`
}

// RPCError describes a failed call. Status is the numeric RPC status code.
type RPCError struct {
	Type     string `json:"type"`
	Msg      string `json:"msg"`
	Error    string `json:"error"`
	Instance string `json:"instance"`
	Status   int    `json:"status"`
}
