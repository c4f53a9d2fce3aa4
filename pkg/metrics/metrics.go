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

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// marshalNamespace 是当前项目所有 Prometheus 指标使用的命名空间。
	marshalNamespace = "marshal"

	// 以下为当前使用的通用标签名。
	modeLabelName      = "mode"
	errorKindLabelName = "kind"

	ModeSingle = "single"
	ModeMany   = "many"

	ErrorKindValidation = "validation"
	ErrorKindFatal      = "fatal"
)

var (
	// buckets 为耗时直方图的桶划分，单位为毫秒。
	// 实际桶分布为：
	// [0.01 0.02 0.04 ... 163.84 327.68 655.36]
	buckets = prometheus.ExponentialBuckets(0.01, 2, 17)

	// sizeBuckets 为批量大小的桶划分，单位为元素个数。
	sizeBuckets = []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024, 4096, 16384, 65536}

	registerOnce     sync.Once
	metricRegisterer prometheus.Registerer
)

// GetRegisterer 返回 Register 时使用的 Registerer，未注册时返回 prometheus.DefaultRegisterer。
func GetRegisterer() prometheus.Registerer {
	if metricRegisterer == nil {
		return prometheus.DefaultRegisterer
	}
	return metricRegisterer
}

// Register 注册所有 marshal 指标，重复调用只生效一次。
func Register(r prometheus.Registerer) {
	registerOnce.Do(func() {
		r.MustRegister(MarshalRecordsTotal)
		r.MustRegister(MarshalFieldErrorsTotal)
		r.MustRegister(MarshalElementFailuresTotal)
		r.MustRegister(MarshalBatchSize)
		r.MustRegister(MarshalLatency)
		metricRegisterer = r
	})
}
