// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package merr

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

type ErrorType int32

const (
	SystemError ErrorType = 0
	InputError  ErrorType = 1
)

var ErrorTypeName = map[ErrorType]string{
	SystemError: "system_error",
	InputError:  "input_error",
}

func (err ErrorType) String() string {
	return ErrorTypeName[err]
}

// Define leaf errors here,
// WARN: take care to add new error,
// check whether you can use the errors below before adding a new one.
// Name: Err + related prefix + error name
var (
	// Key related
	ErrKeyUnsupported = newMarshalError("unsupported field key", 100, false, WithErrorType(InputError))
	ErrDuplicateKey   = newMarshalError("duplicate field key", 101, false, WithErrorType(InputError))

	// Field related
	// ErrFieldValidation 为字段级可恢复错误，只会出现在错误记录中，不会中断记录的组装。
	ErrFieldValidation = newMarshalError("field validation failed", 200, false, WithErrorType(InputError))
	ErrFieldFatal      = newMarshalError("field serialization failed", 201, false)
	ErrDescriptorPanic = newMarshalError("field descriptor panicked", 202, false)

	// Source related
	ErrSourceNotSequence = newMarshalError("source is not an indexable sequence", 300, false, WithErrorType(InputError))

	// Record & batch related
	ErrElementFailed = newMarshalError("batch element failed", 400, false)
	ErrRecordInvalid = newMarshalError("record has invalid fields", 401, false, WithErrorType(InputError))

	// Parameter related
	ErrParameterInvalid = newMarshalError("invalid parameter", 1100, false)
	ErrConfigInvalid    = newMarshalError("invalid config", 1101, false)

	// Serializer related
	ErrSerializerUnsupported = newMarshalError("unsupported serializer", 1200, false)
	ErrSerializeFailed       = newMarshalError("serialize output failed", 1201, false)

	// Worker pool related
	ErrPoolExhausted = newMarshalError("worker pool exhausted", 1300, true)
	ErrPoolClosed    = newMarshalError("worker pool closed", 1301, false)

	// Do NOT export this,
	// never allow programmer using this, keep only for converting unknown error to marshalError
	errUnexpected = newMarshalError("unexpected error", (1<<16)-1, false)
)

type errorOption func(*marshalError)

func WithErrorType(etype ErrorType) errorOption {
	return func(err *marshalError) {
		err.errType = etype
	}
}

type marshalError struct {
	msg       string
	retriable bool
	errCode   int32
	errType   ErrorType
}

func newMarshalError(msg string, code int32, retriable bool, options ...errorOption) marshalError {
	err := marshalError{
		msg:       msg,
		retriable: retriable,
		errCode:   code,
	}

	for _, option := range options {
		option(&err)
	}
	return err
}

func (e marshalError) code() int32 {
	return e.errCode
}

func (e marshalError) Error() string {
	return e.msg
}

func (e marshalError) Is(err error) bool {
	cause := errors.Cause(err)
	if cause, ok := cause.(marshalError); ok {
		return e.errCode == cause.errCode
	}
	return false
}

type multiErrors struct {
	errs []error
}

func (e multiErrors) Unwrap() error {
	if len(e.errs) <= 1 {
		return nil
	}
	// To make merr work for multi errors,
	// we need cause of multi errors, which defined as the last error
	if len(e.errs) == 2 {
		return e.errs[1]
	}

	return multiErrors{
		errs: e.errs[1:],
	}
}

func (e multiErrors) Error() string {
	final := e.errs[0]
	for i := 1; i < len(e.errs); i++ {
		final = errors.Wrap(e.errs[i], final.Error())
	}
	return final.Error()
}

func (e multiErrors) Is(err error) bool {
	for _, item := range e.errs {
		if errors.Is(item, err) {
			return true
		}
	}
	return false
}

// fieldError 为组装字段时的致命错误，携带字段 key 并保留原始 cause。
type fieldError struct {
	key   any
	cause error
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("%s[key=%v]: %s", ErrFieldFatal.msg, e.key, e.cause.Error())
}

func (e *fieldError) Unwrap() error {
	return e.cause
}

func (e *fieldError) Is(target error) bool {
	var merr marshalError
	return errors.As(target, &merr) && merr.errCode == ErrFieldFatal.errCode
}

func Combine(errs ...error) error {
	errs = lo.Filter(errs, func(err error, _ int) bool { return err != nil })
	if len(errs) == 0 {
		return nil
	}
	return multiErrors{
		errs,
	}
}
