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

package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/andreas-jonsson/memstep/emulator/debug"
	"github.com/andreas-jonsson/memstep/emulator/heap"
	"github.com/andreas-jonsson/memstep/emulator/memory"
	"github.com/andreas-jonsson/memstep/emulator/view"
	"github.com/andreas-jonsson/memstep/platform"
	"github.com/andreas-jonsson/memstep/version"
)

var scenarioFile = "scenario.yaml"

var (
	svgFile, metricsAddr string
	steps                = -1
	ver, dump            bool
)

func init() {
	if p, ok := os.LookupEnv("MEMSTEP_DEFAULT_SCENARIO"); ok {
		scenarioFile = p
	}

	flag.BoolVar(&ver, "version", false, "Print version information")
	flag.BoolVar(&dump, "dump", false, "Print the heap and a hex dump of the view instead of opening the viewer")

	flag.StringVar(&scenarioFile, "scenario", scenarioFile, "Path to scenario file")
	flag.IntVar(&steps, "steps", steps, "Number of steps to execute before showing the view, -1 runs all")
	flag.StringVar(&svgFile, "svg", "", "Write the view as SVG to file and exit")
	flag.StringVar(&metricsAddr, "metrics", "", "Serve Prometheus metrics on address")
}

func main() {
	flag.Parse()

	if ver {
		fmt.Printf("%s (%s)\n", version.Current.FullString(), version.Hash)
		return
	}

	logger := debug.NewLogger(debug.FlagConfig())
	defer logger.Sync()

	reg := prometheus.NewRegistry()
	stats, err := debug.NewStats(reg)
	if err != nil {
		logger.Fatal("could not register metrics", zap.Error(err))
	}
	if metricsAddr != "" {
		go serveMetrics(logger, reg)
	}

	s, err := platform.Open(scenarioFile, steps, logger, stats)
	if err != nil {
		logger.Fatal("could not open scenario", zap.String("file", scenarioFile), zap.Error(err))
	}

	switch {
	case svgFile != "":
		if err := platform.ExportSVG(svgFile, s); err != nil {
			logger.Fatal("could not write SVG", zap.Error(err))
		}
		logger.Info("wrote view", zap.String("file", svgFile))
	case dump:
		printDump(s)
	default:
		printLogo()
		if err := platform.Start(s); err != nil {
			logger.Fatal("terminal error", zap.Error(err))
		}
	}
}

func serveMetrics(logger *zap.Logger, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	logger.Info("serving metrics", zap.String("addr", metricsAddr))
	if err := http.ListenAndServe(metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", zap.Error(err))
	}
}

func printDump(s *platform.Session) {
	fmt.Println(s.Status())

	sum := heap.Summary(s.Core.Memory(), s.Core.Config().HeapStart)
	fmt.Printf("heap: %d blocks (%d free), %d bytes used, %d available\n", sum.Blocks, sum.FreeBlocks, sum.Used, sum.Available)
	for _, b := range s.Core.Blocks() {
		state := "used"
		if b.Free {
			state = "free"
		}
		fmt.Printf("  %s %s %d\n", view.FormatAddress(b.Header), state, b.DataSize())
	}

	g := s.Grid()
	fmt.Print(memory.Dump(s.Core.Memory(), g.Bytes.Start, g.Bytes.End))
}

func printLogo() {
	fmt.Print(logo)
	fmt.Println("v" + version.Current.String())
	fmt.Println(" ───────═════ " + version.Copyright + " ══════───────\n")
}

var logo = `
███╗   ███╗███████╗███╗   ███╗███████╗████████╗███████╗██████╗
████╗ ████║██╔════╝████╗ ████║██╔════╝╚══██╔══╝██╔════╝██╔══██╗
██╔████╔██║█████╗  ██╔████╔██║███████╗   ██║   █████╗  ██████╔╝
██║╚██╔╝██║██╔══╝  ██║╚██╔╝██║╚════██║   ██║   ██╔══╝  ██╔═══╝
██║ ╚═╝ ██║███████╗██║ ╚═╝ ██║███████║   ██║   ███████╗██║
╚═╝     ╚═╝╚══════╝╚═╝     ╚═╝╚══════╝   ╚═╝   ╚══════╝╚═╝`
