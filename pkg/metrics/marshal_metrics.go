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
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MarshalRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: marshalNamespace,
			Name:      "records_total",
			Help:      "已组装完成的记录数量",
		}, []string{modeLabelName})

	MarshalFieldErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: marshalNamespace,
			Name:      "field_errors_total",
			Help:      "字段序列化失败次数，按 validation / fatal 区分",
		}, []string{errorKindLabelName})

	MarshalElementFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: marshalNamespace,
			Name:      "element_failures_total",
			Help:      "批量模式下因致命错误失败的元素数量",
		})

	MarshalBatchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: marshalNamespace,
			Name:      "batch_size",
			Help:      "批量模式下单次调用的元素个数",
			Buckets:   sizeBuckets,
		})

	MarshalLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: marshalNamespace,
			Name:      "latency_ms",
			Help:      "单次 Marshal 调用耗时，单位毫秒",
			Buckets:   buckets,
		}, []string{modeLabelName})
)

// ModeLabel 把 many 标记转换为 mode 标签值。
func ModeLabel(many bool) string {
	if many {
		return ModeMany
	}
	return ModeSingle
}
