// Package models defines the wire payloads exchanged with agent clients.
package models

import "fmt"

// Object is a vector registered under a caller-chosen id.
type Object struct {
	ID     string    `json:"id"`
	Vector []float32 `json:"vector"`
}

// InsertRequest is the body of an insert call.
type InsertRequest struct {
	Vector *Object `json:"vector"`
}

// Validate reports whether the request carries an object with an id and a vector.
func (r *InsertRequest) Validate() error {
	if r.Vector == nil {
		return fmt.Errorf("vector is required")
	}
	if r.Vector.ID == "" {
		return fmt.Errorf("vector id is required")
	}
	if len(r.Vector.Vector) == 0 {
		return fmt.Errorf("vector cannot be empty")
	}
	return nil
}

// MultiInsertRequest carries several insert requests processed in order.
type MultiInsertRequest struct {
	Requests []*InsertRequest `json:"requests"`
}

// Location tells the caller which agent accepted an object.
type Location struct {
	Name string   `json:"name"`
	UUID string   `json:"uuid"`
	IPs  []string `json:"ips"`
}

// Locations is the reply to a multi insert.
type Locations struct {
	Locations []*Location `json:"locations"`
}

// StreamLocation is one streamed insert reply. Exactly one field is set.
type StreamLocation struct {
	Location *Location `json:"location,omitempty"`
	Error    *RPCError `json:"error,omitempty"`
}

// CreateIndexRequest triggers an index build.
type CreateIndexRequest struct {
	PoolSize uint32 `json:"pool_size"`
}

// Empty is an empty reply.
type Empty struct{}
