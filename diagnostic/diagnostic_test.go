//  Copyright (c) 2023 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEngine_FindingsAreDeterministicallyOrdered(t *testing.T) {
	e := NewEngine()
	e.Report(Finding{Ranges: []Range{{First: 50, Last: 60}}, Check: "funnel", Message: "z"})
	e.Report(Finding{Ranges: []Range{{First: 10, Last: 20}}, Check: "constraints", Message: "a"})
	e.Report(Finding{Ranges: []Range{{First: 10, Last: 20}}, Check: "abscontinuity", Message: "b"})

	got := e.Findings()
	assert.Equal(t, []string{"abscontinuity", "constraints", "funnel"}, checkOrder(got))
}

func TestEngine_HasErrors(t *testing.T) {
	e := NewEngine()
	assert.False(t, e.HasErrors())
	e.Report(Finding{Severity: Warning})
	assert.False(t, e.HasErrors())
	e.Report(Finding{Severity: Error})
	assert.True(t, e.HasErrors())
}

func checkOrder(fs []Finding) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Check
	}
	return out
}
