// Copyright 2014-2024 Aerospike, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package partcore

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/replikv/partcore/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error is the error interface every failure returned by this package
// satisfies. It is compatible with the standard error interface,
// including errors.Is and errors.As.
type Error interface {
	error

	// Matches returns true if the ResultCode of the error, or any error
	// wrapped beneath it, is one of rcs.
	Matches(rcs ...types.ResultCode) bool

	// ResultCode returns the error's result code.
	ResultCode() types.ResultCode

	// Unwrap returns the wrapped error, or nil.
	Unwrap() error

	// Trace returns a stack trace captured at the point the error was
	// created. Only populated for InvariantViolation errors; everything
	// else in this package is expected, local, and not logged (§7).
	Trace() string

	// GRPCStatus lets a fabric layer built on this core hand these
	// errors straight to grpc without a translation step.
	GRPCStatus() *status.Status

	wrap(error) Error
}

// PartitionError implements Error for every failure this core produces.
type PartitionError struct {
	code types.ResultCode
	msg  string

	wrapped     error
	stackFrames []stackFrame
}

func newError(code types.ResultCode, messages ...string) Error {
	if len(messages) == 0 {
		messages = []string{types.ResultCodeToString(code)}
	}
	pe := &PartitionError{msg: strings.Join(messages, " "), code: code}
	if code == types.INVARIANT_VIOLATION {
		pe.stackFrames = stackTrace()
	}
	return pe
}

// ErrNotLocal is returned when a reserve_read/reserve_write/reserve_query
// is routed to a node that is not the best node for that partition.
func ErrNotLocal(messages ...string) Error { return newError(types.NOT_LOCAL, messages...) }

// ErrUnavailable is returned when reserve_xdr_read finds the partition
// empty (null version).
func ErrUnavailable(messages ...string) Error { return newError(types.UNAVAILABLE, messages...) }

// ErrTimeout is returned when a deadline-bounded reservation could not
// acquire the partition lock before its deadline.
func ErrTimeout(messages ...string) Error { return newError(types.TIMEOUT, messages...) }

// ErrInvariantViolation builds the error for structurally-impossible
// partition states (self appearing twice in replicas, target and origin
// both nonzero, ...). Per §7 this is fatal; callers should abort the
// process rather than continue with corrupt state. No code in this
// package checks for those states or returns this error itself.
func ErrInvariantViolation(messages ...string) Error {
	return newError(types.INVARIANT_VIOLATION, messages...)
}

func (pe *PartitionError) Error() string {
	const cErr = "ResultCode: %s: %s"
	const cErrNL = cErr + "\n  %s"
	if pe.wrapped != nil {
		return fmt.Sprintf(cErrNL, pe.code.String(), pe.msg, pe.wrapped.Error())
	}
	return fmt.Sprintf(cErr, pe.code.String(), pe.msg)
}

func (pe *PartitionError) ResultCode() types.ResultCode { return pe.code }

func (pe *PartitionError) wrap(err error) Error {
	pe.wrapped = err
	return pe
}

func (pe *PartitionError) Unwrap() error { return pe.wrapped }

// Matches returns true if pe's code, or the code of any error wrapped
// beneath it, is one of rcs. Returns false for a nil receiver.
func (pe *PartitionError) Matches(rcs ...types.ResultCode) bool {
	if pe == nil || len(rcs) == 0 {
		return false
	}
	for i := range rcs {
		if pe.code == rcs[i] {
			return true
		}
	}
	var wrapped *PartitionError
	if pe.wrapped != nil && errors.As(pe.wrapped, &wrapped) {
		return wrapped.Matches(rcs...)
	}
	return false
}

// Is implements errors.Is for *PartitionError targets: two partition
// errors match if they carry the same result code.
func (pe *PartitionError) Is(target error) bool {
	if pe == nil || target == nil {
		return false
	}
	t, ok := target.(*PartitionError)
	if !ok {
		return false
	}
	return pe.code == t.code
}

// Trace renders the captured stack trace, if any.
func (pe *PartitionError) Trace() string {
	var sb strings.Builder
	for i := range pe.stackFrames {
		sb.WriteString(pe.stackFrames[i].String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// GRPCStatus maps this error's ResultCode to a grpc status so a fabric
// layer built on top of this core can return it directly.
func (pe *PartitionError) GRPCStatus() *status.Status {
	var c codes.Code
	switch pe.code {
	case types.NOT_LOCAL:
		c = codes.FailedPrecondition
	case types.UNAVAILABLE:
		c = codes.Unavailable
	case types.TIMEOUT:
		c = codes.DeadlineExceeded
	case types.INVARIANT_VIOLATION:
		c = codes.Internal
	default:
		c = codes.Unknown
	}
	return status.New(c, pe.msg)
}

type stackFrame struct {
	fl, fn string
	ln     int
}

func (sf *stackFrame) String() string {
	return sf.fl + ":" + strconv.Itoa(sf.ln) + " " + sf.fn + "()"
}

func stackTrace() []stackFrame {
	const maxDepth = 10
	frames := make([]stackFrame, 0, maxDepth)
	for i := 2; i <= maxDepth+2; i++ {
		pc, fl, ln, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		frames = append(frames, stackFrame{fl: fl, fn: fn.Name(), ln: ln})
	}
	return frames
}
