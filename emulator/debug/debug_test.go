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
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLogger(t *testing.T) {
	require := require.New(t)

	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "memstep.log")
	log := NewLogger(LogConfig{Level: zapcore.InfoLevel, Console: &buf, File: file})

	log.Info("hello")
	log.Debug("hidden")
	require.Contains(buf.String(), "hello")
	require.NotContains(buf.String(), "hidden")

	MuteLogging(true)
	log.Info("muted")
	MuteLogging(false)
	require.NotContains(buf.String(), "muted")
	require.NoError(log.Sync())

	data, err := os.ReadFile(file)
	require.NoError(err)
	require.Contains(string(data), `"msg":"muted"`)
	require.Contains(string(data), `"msg":"hello"`)
}

func TestStats(t *testing.T) {
	require := require.New(t)

	reg := prometheus.NewRegistry()
	s, err := NewStats(reg)
	require.NoError(err)

	s.Allocations.Inc()
	s.Allocations.Inc()
	s.HeapInUse.Add(12)
	require.Equal(2.0, testutil.ToFloat64(s.Allocations))
	require.Equal(12.0, testutil.ToFloat64(s.HeapInUse))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(err)
	require.Equal(6, n)

	_, err = NewStats(reg)
	require.Error(err)

	_, err = NewStats(nil)
	require.NoError(err)
}
