// Package profiling captures CPU, heap and execution-trace profiles for a
// single CLI run, so slow builds of large topic graphs can be inspected with
// `go tool pprof` and `go tool trace`.
package profiling

import (
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	naverrors "github.com/Aman-CERP/navindex/internal/errors"
)

// Paths names the profile outputs. Empty fields are skipped.
type Paths struct {
	CPU   string
	Heap  string
	Trace string
}

// Enabled reports whether any profile was requested.
func (p Paths) Enabled() bool {
	return p.CPU != "" || p.Heap != "" || p.Trace != ""
}

// Session is an active profiling run started by Start.
type Session struct {
	paths     Paths
	cpuFile   *os.File
	traceFile *os.File
}

// Start begins CPU profiling and tracing as requested. The heap profile is
// written by Stop.
func Start(paths Paths) (*Session, error) {
	s := &Session{paths: paths}

	if paths.CPU != "" {
		f, err := os.Create(paths.CPU)
		if err != nil {
			return nil, naverrors.IOError("create CPU profile", paths.CPU, err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, naverrors.IOError("start CPU profile", paths.CPU, err)
		}
		s.cpuFile = f
	}

	if paths.Trace != "" {
		f, err := os.Create(paths.Trace)
		if err != nil {
			s.stopCPU()
			return nil, naverrors.IOError("create trace", paths.Trace, err)
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			s.stopCPU()
			return nil, naverrors.IOError("start trace", paths.Trace, err)
		}
		s.traceFile = f
	}

	return s, nil
}

func (s *Session) stopCPU() {
	if s.cpuFile == nil {
		return
	}
	pprof.StopCPUProfile()
	_ = s.cpuFile.Close()
	s.cpuFile = nil
}

// Stop ends the running profiles and writes the heap profile. It is safe to
// call more than once.
func (s *Session) Stop() error {
	s.stopCPU()
	if s.traceFile != nil {
		trace.Stop()
		_ = s.traceFile.Close()
		s.traceFile = nil
	}

	if s.paths.Heap == "" {
		return nil
	}
	path := s.paths.Heap
	s.paths.Heap = ""

	f, err := os.Create(path)
	if err != nil {
		return naverrors.IOError("create heap profile", path, err)
	}
	defer func() { _ = f.Close() }()

	// Live objects only; collect first so the snapshot is current.
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return naverrors.IOError("write heap profile", path, err)
	}
	return nil
}
