package workspace

import (
	"context"
	"fmt"
	"log/slog"

	"pirbench/internal/benchmark"
	"pirbench/internal/paramfile"
	"pirbench/internal/process"
)

// State is the calibration state of a Session.
type State int

const (
	// Unconfigured: the parameter file has not been written for this run.
	Unconfigured State = iota
	// Uncalibrated: N and d are written, the basis is not yet known.
	Uncalibrated
	// Calibrated: the basis is written. Terminal.
	Calibrated
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Uncalibrated:
		return "uncalibrated"
	case Calibrated:
		return "calibrated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Session is exclusive access to the workspace for one RunConfig.
type Session struct {
	ws       *Workspace
	cfg      benchmark.RunConfig
	state    State
	basis    benchmark.CalibratedBasis
	built    bool // the build output reflects the current parameter file
	released bool
}

// Config returns the run configuration of the session.
func (s *Session) Config() benchmark.RunConfig {
	return s.cfg
}

// State returns the current calibration state.
func (s *Session) State() State {
	return s.state
}

// Basis returns the calibrated basis; valid once State is Calibrated.
func (s *Session) Basis() benchmark.CalibratedBasis {
	return s.basis
}

// Layout returns the layout of the owning workspace.
func (s *Session) Layout() Layout {
	return s.ws.layout
}

// Built reports whether the last build matches the current parameters.
func (s *Session) Built() bool {
	return s.built
}

// Release gives up the workspace. It is safe to call more than once.
func (s *Session) Release() {
	if s.released {
		return
	}
	s.released = true
	<-s.ws.sem
}

func (s *Session) check() error {
	if s.released {
		return fmt.Errorf("workspace session for %s already released", s.cfg)
	}
	return nil
}

// Configure writes N and d to the parameter file.
func (s *Session) Configure() error {
	if err := s.check(); err != nil {
		return err
	}
	err := paramfile.Rewrite(s.ws.Path(s.ws.layout.ParamsFile),
		paramfile.Define{Name: paramfile.SizeExponentMacro, Value: s.cfg.SizeExponent},
		paramfile.Define{Name: paramfile.RecordSizeMacro, Value: s.cfg.RecordSize},
	)
	if err != nil {
		return err
	}
	s.state = Uncalibrated
	s.built = false
	return nil
}

// Build runs the build command against the current parameter file.
func (s *Session) Build(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	if s.state == Unconfigured {
		return fmt.Errorf("build for %s requested before parameters were written", s.cfg)
	}
	s.built = false
	res, err := s.ws.exec.Build(ctx, s.ws.layout.BuildCommand)
	if err != nil {
		return err
	}
	slog.Debug("build finished", "N", s.cfg.SizeExponent, "d", s.cfg.RecordSize,
		"state", s.state, "duration", res.Duration)
	s.built = true
	return nil
}

// RunCalibration runs the benchmark binary in ignore-errors mode against
// the uncalibrated build.
func (s *Session) RunCalibration(ctx context.Context) (*process.Result, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if s.state != Uncalibrated || !s.built {
		return nil, fmt.Errorf("calibration for %s requires a fresh uncalibrated build (state %s, built %t)",
			s.cfg, s.state, s.built)
	}
	return s.ws.exec.Run(ctx, s.ws.layout.BenchBinary, process.IgnoreErrors())
}

// Calibrate records basis in the parameter file and moves the session to
// Calibrated. The build is stale until the next Build.
func (s *Session) Calibrate(basis benchmark.CalibratedBasis) error {
	if err := s.check(); err != nil {
		return err
	}
	if s.state != Uncalibrated {
		return fmt.Errorf("cannot calibrate %s from state %s", s.cfg, s.state)
	}
	err := paramfile.Rewrite(s.ws.Path(s.ws.layout.ParamsFile),
		paramfile.Define{Name: paramfile.BasisMacro, Value: basis.Exponent},
	)
	if err != nil {
		return err
	}
	s.basis = basis
	s.state = Calibrated
	s.built = false
	return nil
}

// RunMeasurement runs program strictly against the calibrated build.
func (s *Session) RunMeasurement(ctx context.Context, program string) (*process.Result, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if s.state != Calibrated || !s.built {
		return nil, fmt.Errorf("measurement for %s requires a build at the calibrated basis (state %s, built %t)",
			s.cfg, s.state, s.built)
	}
	return s.ws.exec.Run(ctx, program)
}
