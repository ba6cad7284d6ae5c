package apperr

import (
	"net/http"

	json "github.com/goccy/go-json"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// GRPCCode maps an HTTP status from the taxonomy to the closest gRPC code.
func GRPCCode(httpStatus int) codes.Code {
	switch httpStatus {
	case http.StatusBadRequest:
		return codes.InvalidArgument
	case http.StatusUnauthorized:
		return codes.Unauthenticated
	case http.StatusForbidden:
		return codes.PermissionDenied
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusConflict:
		return codes.AlreadyExists
	case http.StatusInternalServerError:
		return codes.Internal
	}
	return codes.Unknown
}

// GRPCStatus projects a taxonomy error onto a gRPC status so internal gRPC
// callers see the same classification as HTTP clients. The details payload,
// when present, is attached as a structpb value after a JSON round trip;
// a payload that cannot be represented is dropped rather than failing the
// projection.
func GRPCStatus(e *Error) *status.Status {
	st := status.New(GRPCCode(e.Status), e.Message)
	if e.Details == nil {
		return st
	}

	raw, err := json.Marshal(e.Details)
	if err != nil {
		return st
	}
	var plain any
	if err := json.Unmarshal(raw, &plain); err != nil {
		return st
	}
	val, err := structpb.NewValue(plain)
	if err != nil {
		return st
	}
	if withDetails, err := st.WithDetails(val); err == nil {
		return withDetails
	}
	return st
}
