package constraints

// Entry names a constraint within a registry group (spec.md §3
// "ConstraintRegistry ... Each entry: (name, constraint)").
type Entry struct {
	Name       string
	Constraint Constraint
}

// Registry is the four ordered groups spec.md §3 names: bound joints,
// contact frames, per-body collision pairs, and user-registered
// constraints. Iteration order is deterministic — insertion order
// within each group, groups visited in this declared order.
type Registry struct {
	BoundJoints     []Entry
	ContactFrames   []Entry
	CollisionBodies [][]Entry // per body, per collision pair
	Registered      []Entry
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) AddBoundJoint(name string, c Constraint) {
	r.BoundJoints = append(r.BoundJoints, Entry{Name: name, Constraint: c})
}

func (r *Registry) AddContactFrame(name string, c Constraint) {
	r.ContactFrames = append(r.ContactFrames, Entry{Name: name, Constraint: c})
}

// AddCollisionBody appends a collision-pair constraint under body's
// group, growing CollisionBodies as needed.
func (r *Registry) AddCollisionBody(body int, name string, c Constraint) {
	for len(r.CollisionBodies) <= body {
		r.CollisionBodies = append(r.CollisionBodies, nil)
	}
	r.CollisionBodies[body] = append(r.CollisionBodies[body], Entry{Name: name, Constraint: c})
}

func (r *Registry) AddUser(name string, c Constraint) {
	r.Registered = append(r.Registered, Entry{Name: name, Constraint: c})
}

// All returns every entry across all four groups, in registry order.
func (r *Registry) All() []Entry {
	var out []Entry
	out = append(out, r.BoundJoints...)
	out = append(out, r.ContactFrames...)
	for _, body := range r.CollisionBodies {
		out = append(out, body...)
	}
	out = append(out, r.Registered...)
	return out
}

// Active returns every enabled entry across all four groups, in
// registry order (spec.md §4.2 "Inactive constraints are skipped").
func (r *Registry) Active() []Entry {
	var out []Entry
	for _, e := range r.All() {
		if e.Constraint.Enabled() {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears every constraint's Lagrange-multiplier accumulator.
func (r *Registry) Reset() {
	for _, e := range r.All() {
		e.Constraint.Reset()
	}
}

// ByName looks up a constraint across all groups.
func (r *Registry) ByName(name string) (Constraint, bool) {
	for _, e := range r.All() {
		if e.Name == name {
			return e.Constraint, true
		}
	}
	return nil, false
}
