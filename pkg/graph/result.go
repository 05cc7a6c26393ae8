package graph

import (
	"fmt"

	"github.com/matzehuels/blueprint/pkg/errors"
)

// Result is the outcome of executing a node: success, or an error code with
// the ID of the offending node, pin or link.
type Result struct {
	Code    errors.Code `json:"code,omitempty" bson:"code,omitempty" yaml:"code,omitempty"`
	Source  int64       `json:"source,omitempty" bson:"source,omitempty" yaml:"source,omitempty"`
	Message string      `json:"message,omitempty" bson:"message,omitempty" yaml:"message,omitempty"`
}

// Success returns the successful result.
func Success() Result { return Result{} }

// NodeError reports a behavior-level failure of node id.
func NodeError(id NodeID, format string, args ...any) Result {
	return Result{Code: errors.ErrCodeNode, Source: int64(id), Message: fmt.Sprintf(format, args...)}
}

// PinError reports that pin id has no resolvable value.
func PinError(id PinID, format string, args ...any) Result {
	return Result{Code: errors.ErrCodePin, Source: int64(id), Message: fmt.Sprintf(format, args...)}
}

// LinkError reports that link id cannot produce a value.
func LinkError(id LinkID, format string, args ...any) Result {
	return Result{Code: errors.ErrCodeLink, Source: int64(id), Message: fmt.Sprintf(format, args...)}
}

// UnknownError reports an unexpected failure (a recovered panic) in node id.
func UnknownError(id NodeID, format string, args ...any) Result {
	return Result{Code: errors.ErrCodeUnknown, Source: int64(id), Message: fmt.Sprintf(format, args...)}
}

// FromError converts err into a result for node id. Coded result errors keep
// their code and source; anything else becomes a NODE_ERROR on id.
func FromError(id NodeID, err error) Result {
	if err == nil {
		return Success()
	}
	if e, ok := errors.As(err); ok && errors.IsResultCode(e.Code) {
		src := e.Source
		if src == 0 {
			src = int64(id)
		}
		return Result{Code: e.Code, Source: src, Message: e.Message}
	}
	return NodeError(id, "%s", errors.UserMessage(err))
}

// OK reports whether the result is a success.
func (r Result) OK() bool { return r.Code == "" }

// Err returns the result as an *errors.Error, or nil on success.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return &errors.Error{Code: r.Code, Message: r.Message, Source: r.Source}
}

func (r Result) String() string {
	if r.OK() {
		return "ok"
	}
	return fmt.Sprintf("%s(#%d): %s", r.Code, r.Source, r.Message)
}
