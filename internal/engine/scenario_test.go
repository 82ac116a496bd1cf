package engine

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/san-kum/robosim/internal/config"
	"github.com/san-kum/robosim/internal/constraints"
	"github.com/san-kum/robosim/internal/kernel"
	"github.com/san-kum/robosim/internal/models"
	"github.com/san-kum/robosim/internal/telemetry"
	"github.com/san-kum/robosim/internal/telemetry/record"
)

func singlePendulumModel() *kernel.Model {
	length := 1.0
	mass := 1.0
	joint := kernel.Joint{
		Name:      "shoulder",
		Type:      kernel.Rotary,
		ParentIdx: 0,
		Placement: kernel.IdentitySE3,
		Inertia: kernel.SpatialInertia{
			Mass: mass,
			COM:  kernel.Vec3{Z: -length},
			Rot:  kernel.Diag3(mass*length*length*1e-3, mass*length*length*1e-3, 1e-4),
		},
		Axis: kernel.Vec3{Y: 1},
	}
	gravity := kernel.NewSpatial(kernel.Zero3, kernel.Vec3{Z: -9.81})
	return kernel.NewModel([]kernel.Joint{joint}, nil, gravity)
}

func testOptions() config.EngineOptions {
	opts := config.DefaultOptions()
	opts.Contacts.Model = "spring_damper"
	return opts
}

func TestEngineLifecycleRejectsOperationsOutOfPhase(t *testing.T) {
	e, err := New(testOptions(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Step(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning stepping an Idle engine, got %v", err)
	}
	robot := singlePendulumModel()
	if err := e.AddSystem("arm", robot, nil, nil, nil); err != nil {
		t.Fatalf("AddSystem: %v", err)
	}
	if err := e.AddSystem("arm", robot, nil, nil, nil); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName on repeat name, got %v", err)
	}
	if err := e.AddSystem("arm2", robot, nil, nil, nil); !errors.Is(err, ErrSharedRobot) {
		t.Fatalf("expected ErrSharedRobot sharing a robot pointer, got %v", err)
	}
}

func TestEngineStartRejectsDimensionMismatch(t *testing.T) {
	e, err := New(testOptions(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	robot := singlePendulumModel()
	if err := e.AddSystem("arm", robot, nil, nil, nil); err != nil {
		t.Fatalf("AddSystem: %v", err)
	}
	err = e.Start([][]float64{{0, 0}}, [][]float64{{0}}, nil)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestEnginePendulumFallsUnderGravity(t *testing.T) {
	e, err := New(testOptions(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	robot := singlePendulumModel()
	if err := e.AddSystem("arm", robot, nil, nil, nil); err != nil {
		t.Fatalf("AddSystem: %v", err)
	}
	q0 := robot.NeutralConfiguration()
	q0[0] = math.Pi / 2 // horizontal start, maximal torque
	v0 := make([]float64, robot.NV)
	if err := e.Start([][]float64{q0}, [][]float64{v0}, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := e.Simulate(0.5); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if err := e.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	q := e.data[0].State.Q[0]
	if q >= math.Pi/2 {
		t.Fatalf("expected pendulum angle to decrease from pi/2 under gravity torque, got %v", q)
	}
	if math.IsNaN(q) || math.IsInf(q, 0) {
		t.Fatalf("pendulum angle diverged: %v", q)
	}
}

func TestEngineCallbackStopsSimulation(t *testing.T) {
	e, err := New(testOptions(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	robot := singlePendulumModel()
	stopAt := 0.1
	callback := func(t float64, q, v, a []float64) bool {
		return t < stopAt
	}
	if err := e.AddSystem("arm", robot, nil, nil, callback); err != nil {
		t.Fatalf("AddSystem: %v", err)
	}
	q0 := robot.NeutralConfiguration()
	v0 := make([]float64, robot.NV)
	if err := e.Start([][]float64{q0}, [][]float64{v0}, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := e.Simulate(10.0); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if e.state.T >= 10.0 {
		t.Fatalf("expected callback to halt simulation well before duration, stopped at t=%v", e.state.T)
	}
}

func TestEngineStopIsIdempotent(t *testing.T) {
	e, err := New(testOptions(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := e.Stop(); err != nil {
		t.Fatalf("Stop on Idle engine should be a no-op, got %v", err)
	}
}

// TestStepAdvancesTimeMonotonicallyWithTickAlignedTelemetry is property 1:
// t in StepperState is non-decreasing, and every emitted telemetry
// timestamp is a whole multiple of STEPPER_MIN_TIMESTEP.
func TestStepAdvancesTimeMonotonicallyWithTickAlignedTelemetry(t *testing.T) {
	e, err := New(testOptions(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	robot := singlePendulumModel()
	if err := e.AddSystem("arm", robot, nil, nil, nil); err != nil {
		t.Fatalf("AddSystem: %v", err)
	}
	rec := record.New(0, config.StepperMinTimestep)
	if err := e.SetTelemetry(rec); err != nil {
		t.Fatalf("SetTelemetry: %v", err)
	}
	q0 := robot.NeutralConfiguration()
	q0[0] = math.Pi / 2
	v0 := make([]float64, robot.NV)
	if err := e.Start([][]float64{q0}, [][]float64{v0}, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}

	lastT := e.state.T
	for i := 0; i < 50; i++ {
		if err := e.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
		if e.state.T <= lastT {
			t.Fatalf("clock did not advance: t=%v after previous t=%v", e.state.T, lastT)
		}
		lastT = e.state.T
	}

	log := rec.Flush()
	lastTick := int64(-1)
	for _, tick := range log.Timestamps {
		if tick <= lastTick {
			t.Fatalf("telemetry timestamps not strictly increasing: tick=%d after %d", tick, lastTick)
		}
		lastTick = tick
	}
}

// TestSimulateLandsWithinKahanBoundOfDuration is property 2: after
// simulate(tEnd), |t_final - tEnd| < STEPPER_MIN_TIMESTEP, exercising the
// tEnd-as-breakpoint clamp in nextBreakpoint/clampDtToBreakpoint.
func TestSimulateLandsWithinKahanBoundOfDuration(t *testing.T) {
	e, err := New(testOptions(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	robot := singlePendulumModel()
	if err := e.AddSystem("arm", robot, nil, nil, nil); err != nil {
		t.Fatalf("AddSystem: %v", err)
	}
	q0 := robot.NeutralConfiguration()
	q0[0] = math.Pi / 2
	v0 := make([]float64, robot.NV)
	if err := e.Start([][]float64{q0}, [][]float64{v0}, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}

	const duration = 0.37 // deliberately not a multiple of dtMax
	if err := e.Simulate(duration); err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if diff := math.Abs(e.state.T - duration); diff >= config.StepperMinTimestep {
		t.Fatalf("final time %v not within the Kahan bound of %v (diff %v)", e.state.T, duration, diff)
	}
}

// TestForceCouplingIsEqualAndOppositeAcrossBothFrames is property 6: the
// wrench a coupling applies to its two endpoints sums to zero.
func TestForceCouplingIsEqualAndOppositeAcrossBothFrames(t *testing.T) {
	e, err := New(testOptions(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	robotA := models.NewSinglePendulum(1.0, 1.0, 9.81) // carries the "tip" frame
	robotB := models.NewSinglePendulum(1.0, 1.0, 9.81)
	if err := e.AddSystem("a", robotA, nil, nil, nil); err != nil {
		t.Fatalf("AddSystem a: %v", err)
	}
	if err := e.AddSystem("b", robotB, nil, nil, nil); err != nil {
		t.Fatalf("AddSystem b: %v", err)
	}
	wrench := kernel.NewSpatial(kernel.Zero3, kernel.Vec3{Z: 3})
	forceFn := func(t float64, q1, v1, q2, v2 []float64) kernel.Spatial { return wrench }
	if err := e.RegisterForceCoupling("a", "tip", "b", "tip", forceFn); err != nil {
		t.Fatalf("RegisterForceCoupling: %v", err)
	}

	q0 := robotA.NeutralConfiguration()
	v0 := make([]float64, robotA.NV)
	if err := e.Start([][]float64{q0, append([]float64(nil), q0...)}, [][]float64{v0, append([]float64(nil), v0...)}, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := e.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	ja, _ := robotA.JointIndex("shoulder")
	jb, _ := robotB.JointIndex("shoulder")
	fa := e.data[0].State.FExternal[ja]
	fb := e.data[1].State.FExternal[jb]
	for c := 0; c < 6; c++ {
		if math.Abs(fa[c]+fb[c]) > 1e-9 {
			t.Fatalf("coupling wrench not equal-and-opposite in component %d: %v vs %v", c, fa[c], fb[c])
		}
	}
}

// TestIdenticalRunsProduceBitwiseIdenticalTelemetry is property 7: two
// runs with identical options, seeds, initial state and registered
// forces yield bitwise-identical telemetry.
func TestIdenticalRunsProduceBitwiseIdenticalTelemetry(t *testing.T) {
	run := func() telemetry.LogData {
		e, err := New(testOptions(), nil)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		robot := singlePendulumModel()
		if err := e.AddSystem("arm", robot, nil, nil, nil); err != nil {
			t.Fatalf("AddSystem: %v", err)
		}
		rec := record.New(0, config.StepperMinTimestep)
		if err := e.SetTelemetry(rec); err != nil {
			t.Fatalf("SetTelemetry: %v", err)
		}
		q0 := robot.NeutralConfiguration()
		q0[0] = math.Pi / 2
		v0 := make([]float64, robot.NV)
		if err := e.Start([][]float64{q0}, [][]float64{v0}, nil); err != nil {
			t.Fatalf("Start: %v", err)
		}
		if err := e.Simulate(0.3); err != nil {
			t.Fatalf("Simulate: %v", err)
		}
		if err := e.Stop(); err != nil {
			t.Fatalf("Stop: %v", err)
		}
		return rec.Flush()
	}

	a, b := run(), run()
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("two identical runs produced different telemetry")
	}
}

// TestImpulseWindowActivatesExactlyOnceAndAligned is scenario S2: a
// pendulum at rest under zero gravity, impulse-torqued at frame "tip"
// over [0.5, 0.51), driven with a discrete stepperUpdatePeriod grid.
// Expected: the telemetry-visible clock lands on both window edges, and
// the joint acceleration is zero outside the window, nonzero inside it.
func TestImpulseWindowActivatesExactlyOnceAndAligned(t *testing.T) {
	opts := testOptions()
	opts.Stepper.ControllerUpdatePeriod = 1e-3
	e, err := New(opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	robot := models.NewSinglePendulum(1, 1, 0) // zero gravity isolates the impulse effect
	if err := e.AddSystem("arm", robot, nil, nil, nil); err != nil {
		t.Fatalf("AddSystem: %v", err)
	}
	wrench := kernel.NewSpatial(kernel.Vec3{Y: 10}, kernel.Zero3) // pure torque about the joint axis
	if err := e.RegisterForceImpulse("arm", "tip", 0.5, 0.01, wrench); err != nil {
		t.Fatalf("RegisterForceImpulse: %v", err)
	}
	q0 := robot.NeutralConfiguration()
	v0 := make([]float64, robot.NV)
	if err := e.Start([][]float64{q0}, [][]float64{v0}, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var sawBefore, sawDuring, sawAfter, hit500, hit510 bool
	for e.state.T < 1.0 {
		if err := e.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
		a := e.data[0].State.A[0]
		switch {
		case e.state.T < 0.5-1e-9:
			if math.Abs(a) > 1e-9 {
				t.Fatalf("expected zero acceleration before the impulse window, got %v at t=%v", a, e.state.T)
			}
			sawBefore = true
		case e.state.T >= 0.5 && e.state.T < 0.51:
			if math.Abs(a) > 1e-9 {
				sawDuring = true
			}
		case e.state.T >= 0.51+1e-9:
			if math.Abs(a) > 1e-9 {
				t.Fatalf("expected zero acceleration after the impulse window, got %v at t=%v", a, e.state.T)
			}
			sawAfter = true
		}
		if math.Abs(e.state.T-0.5) < 1e-9 {
			hit500 = true
		}
		if math.Abs(e.state.T-0.51) < 1e-9 {
			hit510 = true
		}
	}
	if !sawBefore || !sawDuring || !sawAfter {
		t.Fatalf("did not observe all three impulse phases: before=%v during=%v after=%v", sawBefore, sawDuring, sawAfter)
	}
	if !hit500 || !hit510 {
		t.Fatalf("expected breakpoint-aligned samples at t=0.500 and t=0.510, hit500=%v hit510=%v", hit500, hit510)
	}
}

// TestSlidingCubeHoldsUntilFrictionConeExceededThenAccelerates is
// scenario S3: a cube resting on the spring-damper ground, pushed
// horizontally by a force ramping through the static friction cone
// (mu*m*g). Expected: near-zero sliding velocity while the push is well
// below the cone, clearly nonzero once it's well past it.
func TestSlidingCubeHoldsUntilFrictionConeExceededThenAccelerates(t *testing.T) {
	opts := testOptions()
	e, err := New(opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	const mass, halfExtent, gravity = 1.0, 0.1, 9.81
	robot := models.NewFreeCube(mass, halfExtent, gravity)
	if err := e.AddSystem("cube", robot, nil, nil, nil); err != nil {
		t.Fatalf("AddSystem: %v", err)
	}
	if err := e.AddGroundContactSphere("cube", "corner", 0, 0); err != nil {
		t.Fatalf("AddGroundContactSphere: %v", err)
	}
	const rate = 10.0 // N/s; mu*m*g ~= 4.9 N is crossed at t ~= 0.49s, 20N at t=2s
	if err := e.RegisterForceProfile("cube", "corner", func(t float64, q, v []float64) kernel.Spatial {
		fx := rate * t
		if fx > 20 {
			fx = 20
		}
		return kernel.NewSpatial(kernel.Zero3, kernel.Vec3{X: fx})
	}, 0); err != nil {
		t.Fatalf("RegisterForceProfile: %v", err)
	}

	q0 := robot.NeutralConfiguration()
	q0[2] = halfExtent
	v0 := make([]float64, robot.NV)
	if err := e.Start([][]float64{q0}, [][]float64{v0}, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var vxEarly, vxLate float64
	sampledEarly, sampledLate := false, false
	for e.state.T < 2.0 {
		if err := e.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
		vx := e.data[0].State.V[3]
		if !sampledEarly && e.state.T >= 0.3 {
			vxEarly = vx
			sampledEarly = true
		}
		if e.state.T >= 1.8 {
			vxLate = vx
			sampledLate = true
		}
	}
	if !sampledEarly || !sampledLate {
		t.Fatalf("did not sample both the early and late windows")
	}
	if math.Abs(vxEarly) > 0.05 {
		t.Fatalf("expected the cube to hold near-zero sliding velocity while F_x=%v is below the friction cone, got vx=%v", rate*0.3, vxEarly)
	}
	if vxLate < 1.0 {
		t.Fatalf("expected the cube to be sliding well after F_x crosses the friction cone, got vx=%v", vxLate)
	}
}

// TestConstraintContactHysteresisTracksPenetrationSign is scenario S4: a
// falling point mass under the rigid-constraint contact model. Expected:
// the ground FixedFrame constraint is enabled whenever the probe has
// penetrated, and is never found disabled mid-penetration.
func TestConstraintContactHysteresisTracksPenetrationSign(t *testing.T) {
	opts := testOptions()
	opts.Contacts.Model = "constraint"
	opts.Contacts.TransitionEps = 1e-4
	e, err := New(opts, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	joint := kernel.Joint{
		Name:      "base",
		Type:      kernel.Free,
		ParentIdx: 0,
		Placement: kernel.IdentitySE3,
		Inertia:   kernel.SpatialInertia{Mass: 1, Rot: kernel.Diag3(0.01, 0.01, 0.01)},
	}
	frames := []kernel.Frame{{Name: "probe", JointIdx: 1, Placement: kernel.IdentitySE3}}
	gravity := kernel.NewSpatial(kernel.Zero3, kernel.Vec3{Z: -9.81})
	robot := kernel.NewModel([]kernel.Joint{joint}, frames, gravity)

	if err := e.AddSystem("ball", robot, nil, nil, nil); err != nil {
		t.Fatalf("AddSystem: %v", err)
	}
	if err := e.AddGroundContactFrame("ball", "probe"); err != nil {
		t.Fatalf("AddGroundContactFrame: %v", err)
	}

	q0 := robot.NeutralConfiguration()
	q0[2] = 0.2 // starts well clear of the ground
	v0 := make([]float64, robot.NV)
	v0[5] = -2.0 // falling toward it
	if err := e.Start([][]float64{q0}, [][]float64{v0}, nil); err != nil {
		t.Fatalf("Start: %v", err)
	}

	fixedFrame := e.data[0].Registry.ContactFrames[0].Constraint.(*constraints.FixedFrame)
	sawEnabled := false
	for e.state.T < 1.0 {
		if err := e.Step(); err != nil {
			if errors.Is(err, ErrStepTooSmall) {
				break
			}
			t.Fatalf("Step: %v", err)
		}
		depth := e.data[0].State.Q[2]
		enabled := fixedFrame.Enabled()
		if depth < 0 && !enabled {
			t.Fatalf("expected the contact to be enabled while penetrating (depth=%v)", depth)
		}
		if enabled {
			sawEnabled = true
		}
	}
	if !sawEnabled {
		t.Fatalf("expected the contact to enable at some point during the fall")
	}
}
