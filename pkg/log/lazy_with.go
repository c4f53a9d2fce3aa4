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

package log

import (
	"sync"

	"go.uber.org/zap/zapcore"
)

// lazyWithCore 推迟 core.With(fields) 的执行，直到第一条日志真正需要写出。
// 参考 https://github.com/uber-go/zap/issues/1426 。
type lazyWithCore struct {
	base zapcore.Core
	core func() zapcore.Core
}

var _ zapcore.Core = (*lazyWithCore)(nil)

// NewLazyWith 返回带 fields 的 Core，fields 为空时直接返回 core。
func NewLazyWith(core zapcore.Core, fields []zapcore.Field) zapcore.Core {
	if len(fields) == 0 {
		return core
	}
	return &lazyWithCore{
		base: core,
		core: sync.OnceValue(func() zapcore.Core {
			return core.With(fields)
		}),
	}
}

// Enabled 只读取级别，不触发初始化。
func (d *lazyWithCore) Enabled(level zapcore.Level) bool {
	return d.base.Enabled(level)
}

func (d *lazyWithCore) Level() zapcore.Level {
	return zapcore.LevelOf(d.base)
}

func (d *lazyWithCore) With(fields []zapcore.Field) zapcore.Core {
	return d.core().With(fields)
}

func (d *lazyWithCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !d.base.Enabled(e.Level) {
		return ce
	}
	return d.core().Check(e, ce)
}

func (d *lazyWithCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return d.core().Write(entry, fields)
}

func (d *lazyWithCore) Sync() error {
	return d.core().Sync()
}
