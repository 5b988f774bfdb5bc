package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/hyperjump/vecagent/internal/agent"
	"github.com/hyperjump/vecagent/internal/models"
)

var errUnimplemented = errors.New("rpc is not implemented")

// Code is an RPC status code. Values follow the gRPC numbering.
type Code int

const (
	CodeOK               Code = 0
	CodeCanceled         Code = 1
	CodeInvalidArgument  Code = 3
	CodeDeadlineExceeded Code = 4
	CodeAlreadyExists    Code = 6
	CodeUnimplemented    Code = 12
	CodeInternal         Code = 13
	CodeUnavailable      Code = 14
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeCanceled:
		return "CANCELED"
	case CodeInvalidArgument:
		return "INVALID_ARGUMENT"
	case CodeDeadlineExceeded:
		return "DEADLINE_EXCEEDED"
	case CodeAlreadyExists:
		return "ALREADY_EXISTS"
	case CodeUnimplemented:
		return "UNIMPLEMENTED"
	case CodeUnavailable:
		return "UNAVAILABLE"
	default:
		return "INTERNAL"
	}
}

// HTTPStatus maps the code onto the HTTP status sent for unary calls.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeOK:
		return http.StatusOK
	case CodeCanceled:
		return 499
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeDeadlineExceeded:
		return http.StatusGatewayTimeout
	case CodeAlreadyExists:
		return http.StatusConflict
	case CodeUnimplemented:
		return http.StatusNotImplemented
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func codeOf(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, agent.ErrInvalidArgument):
		return CodeInvalidArgument
	case errors.Is(err, agent.ErrAlreadyExists):
		return CodeAlreadyExists
	case errors.Is(err, agent.ErrNotReady):
		return CodeUnavailable
	case errors.Is(err, errUnimplemented):
		return CodeUnimplemented
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return CodeDeadlineExceeded
	default:
		return CodeInternal
	}
}

func rpcError(instance, rpc string, err error) *models.RPCError {
	code := codeOf(err)
	return &models.RPCError{
		Type:     code.String(),
		Msg:      rpc + " failed",
		Error:    err.Error(),
		Instance: instance,
		Status:   int(code),
	}
}
