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
	"strings"

	"github.com/cockroachdb/errors"
)

// Code 返回给定错误对应的错误码。
// 非 merr 定义的错误统一返回 errUnexpected 的错误码，nil 返回 0。
func Code(err error) int32 {
	if err == nil {
		return 0
	}

	var merr marshalError
	if errors.As(err, &merr) {
		return merr.code()
	}
	return errUnexpected.code()
}

func IsRetryableErr(err error) bool {
	var merr marshalError
	if errors.As(err, &merr) {
		return merr.retriable
	}

	return false
}

func GetErrorType(err error) ErrorType {
	var merr marshalError
	if errors.As(err, &merr) {
		return merr.errType
	}

	return SystemError
}

// Key 相关错误封装。
func WrapErrKeyUnsupported(key any, msg ...string) error {
	err := wrapFields(ErrKeyUnsupported,
		value("key", key),
		value("type", fmt.Sprintf("%T", key)),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrDuplicateKey(key any, msg ...string) error {
	err := wrapFields(ErrDuplicateKey, value("key", key))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// Field 相关错误封装。
//
// WrapErrFieldFatal 保留原始错误，errors.Is / errors.As 仍然可以穿透到 cause，
// 同时 errors.Is(err, ErrFieldFatal) 成立。
func WrapErrFieldFatal(key any, cause error) error {
	if cause == nil {
		return nil
	}
	return &fieldError{key: key, cause: cause}
}

func WrapErrDescriptorPanic(key any, recovered any) error {
	return wrapFieldsWithDesc(ErrDescriptorPanic,
		fmt.Sprintf("%v", recovered),
		value("key", key),
	)
}

// Source 相关错误封装。
func WrapErrSourceNotSequence(source any, msg ...string) error {
	err := wrapFields(ErrSourceNotSequence, value("type", fmt.Sprintf("%T", source)))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// Record 相关错误封装。
func WrapErrRecordInvalid(invalid int, details any) error {
	err := wrapFields(ErrRecordInvalid, value("invalid", invalid))
	return errors.WithDetailf(err, "%v", details)
}

func WrapErrParameterInvalidMsg(fmt string, args ...any) error {
	return errors.Wrapf(ErrParameterInvalid, fmt, args...)
}

func WrapErrConfigInvalid(key string, reason string) error {
	return wrapFieldsWithDesc(ErrConfigInvalid, reason, value("key", key))
}

func WrapErrSerializerUnsupported(name string, msg ...string) error {
	err := wrapFields(ErrSerializerUnsupported, value("name", name))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrSerializeFailed(format string, cause error) error {
	if cause == nil {
		return nil
	}
	return wrapFieldsWithDesc(ErrSerializeFailed, cause.Error(), value("format", format))
}

func WrapErrPoolExhausted(size int, cause error) error {
	desc := "submit rejected"
	if cause != nil {
		desc = cause.Error()
	}
	return wrapFieldsWithDesc(ErrPoolExhausted, desc, value("size", size))
}

func wrapFields(err marshalError, fields ...errorField) error {
	for i := range fields {
		err.msg += fmt.Sprintf("[%s]", fields[i].String())
	}
	return err
}

func wrapFieldsWithDesc(err marshalError, desc string, fields ...errorField) error {
	for i := range fields {
		err.msg += fmt.Sprintf("[%s]", fields[i].String())
	}
	err.msg += ": " + desc
	return err
}

type errorField interface {
	String() string
}

type valueField struct {
	name  string
	value any
}

func value(name string, value any) valueField {
	return valueField{
		name,
		value,
	}
}

func (f valueField) String() string {
	return fmt.Sprintf("%s=%v", f.name, f.value)
}
