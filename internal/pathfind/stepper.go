package pathfind

// Stepper drives a search from a single-threaded host. Each Resume call does
// at most one yield interval of work, so the host can interleave other jobs
// between calls. A Stepper is not safe for concurrent use.
type Stepper struct {
	s *search
}

// NewStepper prepares a search without running it.
func (f *Finder) NewStepper(origin, target Position, opts Options) (*Stepper, error) {
	s, err := f.newSearch(origin, target, opts)
	if err != nil {
		return nil, err
	}
	return &Stepper{s: s}, nil
}

// Step performs a single expansion and reports whether the search is done.
func (st *Stepper) Step() bool {
	return st.s.step()
}

// Resume runs expansions for up to one yield interval and reports whether
// the search is done.
func (st *Stepper) Resume() bool {
	if st.s.run(st.s.finder.params.YieldInterval) {
		return true
	}
	st.s.yields++
	return false
}

// Done reports whether the search has finished.
func (st *Stepper) Done() bool {
	return st.s.done
}

// Result returns the finished search outcome, or ErrPending.
func (st *Stepper) Result() (*Result, error) {
	return st.s.result()
}

// Err returns the error the search finished with. It is nil while the
// search is running and after a path was found.
func (st *Stepper) Err() error {
	if !st.s.done {
		return nil
	}
	return st.s.err
}

// Expanded returns the number of expansions so far.
func (st *Stepper) Expanded() int {
	return st.s.expanded
}

// Frontier returns the number of queued frontier entries, stale ones included.
func (st *Stepper) Frontier() int {
	return st.s.frontier.Len()
}

// Cost returns the best known cost of the node at pos.
func (st *Stepper) Cost(pos Position) (float64, bool) {
	n, ok := st.s.nodes[pos.Key()]
	if !ok {
		return 0, false
	}
	return n.cost, true
}
