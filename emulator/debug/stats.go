/*
Copyright (c) 2019-2021 Andreas T Jonsson

This software is provided 'as-is', without any express or implied
warranty. In no event will the authors be held liable for any damages
arising from the use of this software.

Permission is granted to anyone to use this software for any purpose,
including commercial applications, and to alter it and redistribute it
freely, subject to the following restrictions:

1. The origin of this software must not be misrepresented; you must not
   claim that you wrote the original software. If you use this software
   in a product, an acknowledgment in the product documentation would be
   appreciated but is not required.
2. Altered source versions must be plainly marked as such, and must not be
   misrepresented as being the original software.
3. This notice may not be removed or altered from any source distribution.
*/

package debug

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "memstep"

// Stats counts engine activity.
type Stats struct {
	Allocations       prometheus.Counter
	FailedAllocations prometheus.Counter
	Frees             prometheus.Counter
	Steps             prometheus.Counter
	Views             prometheus.Counter
	HeapInUse         prometheus.Gauge
}

// NewStats creates the counters and registers them with reg unless it is nil.
func NewStats(reg prometheus.Registerer) (*Stats, error) {
	s := &Stats{
		Allocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations",
			Help:      "number of successful malloc calls",
		}),
		FailedAllocations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failed_allocations",
			Help:      "number of malloc calls that returned null",
		}),
		Frees: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frees",
			Help:      "number of free calls",
		}),
		Steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps",
			Help:      "number of executed steps",
		}),
		Views: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "views",
			Help:      "number of extracted views",
		}),
		HeapInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "heap_in_use",
			Help:      "bytes held by allocated heap blocks, headers included",
		}),
	}
	if reg == nil {
		return s, nil
	}
	return s, errors.Join(
		reg.Register(s.Allocations),
		reg.Register(s.FailedAllocations),
		reg.Register(s.Frees),
		reg.Register(s.Steps),
		reg.Register(s.Views),
		reg.Register(s.HeapInUse),
	)
}
