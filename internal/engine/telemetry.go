package engine

import (
	"fmt"
	"strconv"

	"github.com/san-kum/robosim/internal/kernel"
)

// registerTelemetry declares every enabled scalar field against the
// installed surface, gated per-system by the telemetry.enable* flags
// (spec.md §6.3/§4.7). Called once from Start, before surface.Lock().
func (e *Engine) registerTelemetry() {
	t := e.opts.Telemetry
	for _, sys := range e.systems {
		name := sys.Name
		robot := sys.Robot
		if t.EnableConfiguration {
			for k := 0; k < robot.NQ; k++ {
				e.surface.RegisterFloatField(fmt.Sprintf("%s.q[%d]", name, k))
			}
		}
		if t.EnableVelocity {
			for k := 0; k < robot.NV; k++ {
				e.surface.RegisterFloatField(fmt.Sprintf("%s.v[%d]", name, k))
			}
		}
		if t.EnableAcceleration {
			for k := 0; k < robot.NV; k++ {
				e.surface.RegisterFloatField(fmt.Sprintf("%s.a[%d]", name, k))
			}
		}
		if t.EnableForceExternal {
			for j := 1; j < len(robot.Joints); j++ {
				for c := 0; c < 6; c++ {
					e.surface.RegisterFloatField(fmt.Sprintf("%s.fExternal[%d][%d]", name, j, c))
				}
			}
		}
		if t.EnableCommand {
			for k := 0; k < robot.NV; k++ {
				e.surface.RegisterFloatField(fmt.Sprintf("%s.command[%d]", name, k))
			}
		}
		if t.EnableMotorEffort {
			for k := 0; k < robot.NV; k++ {
				e.surface.RegisterFloatField(fmt.Sprintf("%s.uMotor[%d]", name, k))
			}
		}
		if t.EnableEnergy {
			e.surface.RegisterFloatField(name + ".energy")
		}
		e.surface.RegisterConstant(name+".nq", strconv.Itoa(robot.NQ))
		e.surface.RegisterConstant(name+".nv", strconv.Itoa(robot.NV))
	}
}

// emitSnapshot pushes the current committed state of every system to the
// telemetry surface, quantized at the shared clock's current time.
func (e *Engine) emitSnapshot() {
	t := e.opts.Telemetry
	ints := map[string]int64{}
	floats := map[string]float64{}

	for i, sys := range e.systems {
		name := sys.Name
		d := e.data[i]

		if t.EnableConfiguration {
			for k, val := range d.State.Q {
				floats[fmt.Sprintf("%s.q[%d]", name, k)] = val
			}
		}
		if t.EnableVelocity {
			for k, val := range d.State.V {
				floats[fmt.Sprintf("%s.v[%d]", name, k)] = val
			}
		}
		if t.EnableAcceleration {
			for k, val := range d.State.A {
				floats[fmt.Sprintf("%s.a[%d]", name, k)] = val
			}
		}
		if t.EnableForceExternal {
			for j := 1; j < len(sys.Robot.Joints); j++ {
				w := d.State.FExternal[j]
				for c := 0; c < 6; c++ {
					floats[fmt.Sprintf("%s.fExternal[%d][%d]", name, j, c)] = w[c]
				}
			}
		}
		if t.EnableCommand {
			for k, val := range d.State.Command {
				floats[fmt.Sprintf("%s.command[%d]", name, k)] = val
			}
		}
		if t.EnableMotorEffort {
			for k, val := range d.State.UMotor {
				floats[fmt.Sprintf("%s.uMotor[%d]", name, k)] = val
			}
		}
		if t.EnableEnergy {
			ke := kernel.ComputeKineticEnergy(sys.Robot, d.Data, d.State.Q, d.State.V)
			pe := kernel.ComputePotentialEnergy(sys.Robot, d.Data)
			floats[name+".energy"] = ke + pe
		}
	}

	e.surface.Snapshot(e.state.T, ints, floats)
}
