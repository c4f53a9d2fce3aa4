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
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegister(t *testing.T) {
	r := prometheus.NewRegistry()
	Register(r)
	Register(r)
	assert.Equal(t, prometheus.Registerer(r), GetRegisterer())

	MarshalRecordsTotal.WithLabelValues(ModeLabel(true)).Add(2)
	assert.Equal(t, float64(2), testutil.ToFloat64(MarshalRecordsTotal.WithLabelValues(ModeMany)))
	assert.Equal(t, ModeSingle, ModeLabel(false))

	families, err := r.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}
