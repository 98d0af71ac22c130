package pathfind

import (
	"container/heap"
	"fmt"
	"time"
)

// search is the state of one invocation. It is owned by a single caller
// for its whole lifetime.
type search struct {
	finder *Finder
	origin Position
	target Position
	opts   Options

	nodes    map[NodeKey]*node
	frontier frontier
	seq      uint64

	expanded int
	yields   int

	done  bool
	found *node
	err   error
}

func (f *Finder) newSearch(origin, target Position, opts Options) (*search, error) {
	if origin.Map != target.Map {
		return nil, fmt.Errorf("%w: %q -> %q", ErrUnsupported, origin.Map, target.Map)
	}

	s := &search{
		finder: f,
		origin: origin,
		target: target,
		opts:   opts,
		nodes:  make(map[NodeKey]*node),
	}

	start := &node{pos: origin}
	s.nodes[origin.Key()] = start

	// Nothing to search for; the oracle is never consulted.
	if origin.Distance(target) == 0 {
		s.finish(start, nil)
		return s, nil
	}

	s.push(start, f.Heuristic(origin, target))
	return s, nil
}

func (s *search) push(n *node, h float64) {
	s.seq++
	heap.Push(&s.frontier, &frontierItem{
		node:     n,
		cost:     n.cost,
		priority: n.cost + h,
		seq:      s.seq,
	})
}

// run steps until the search finishes or the slice elapses. It reports
// whether the search finished. A non-positive slice runs to completion.
func (s *search) run(slice time.Duration) bool {
	start := time.Now()
	for !s.step() {
		if slice > 0 && time.Since(start) >= slice {
			return false
		}
	}
	return true
}

// step pops one live frontier entry, tests it against the goal and expands
// it. It reports whether the search finished.
func (s *search) step() bool {
	if s.done {
		return true
	}

	for s.frontier.Len() > 0 {
		item := heap.Pop(&s.frontier).(*frontierItem)
		current := item.node
		if item.cost > current.cost {
			continue // superseded by a cheaper relaxation
		}
		s.expanded++

		if goal := s.reach(current); goal != nil {
			s.finish(goal, nil)
			return true
		}
		s.expand(current)
		return false
	}

	s.finish(nil, ErrNoPath)
	return true
}

// reach applies the goal test to current and returns the final node of the
// path, or nil when current does not satisfy it.
func (s *search) reach(current *node) *node {
	if !s.opts.Exact {
		if current.pos.Distance(s.target) < s.finder.params.Range {
			return current
		}
		return nil
	}

	if !s.finder.canMove(current.pos, s.target) {
		return nil
	}
	hop := current.pos.Distance(s.target)
	cost := current.cost + hop
	if s.opts.bounded() && cost > s.opts.MaxDistance {
		return nil
	}
	if hop == 0 {
		return current
	}
	return &node{pos: s.target, cost: cost, parent: current}
}

func (s *search) expand(current *node) {
	step := s.finder.StepFor(current.cost)

	for _, next := range s.finder.Neighbors(current.pos, step) {
		cost := current.cost + current.pos.Distance(next)
		if s.opts.bounded() && cost > s.opts.MaxDistance {
			continue
		}

		key := next.Key()
		n, known := s.nodes[key]
		if known && n.cost <= cost {
			continue
		}
		if !known {
			n = &node{pos: next}
			s.nodes[key] = n
		}
		n.cost = cost
		n.parent = current
		s.push(n, s.finder.Heuristic(next, s.target))
	}
}

func (s *search) finish(found *node, err error) {
	s.done = true
	s.found = found
	s.err = err
	s.frontier = nil
}

func (s *search) result() (*Result, error) {
	if !s.done {
		return nil, ErrPending
	}
	if s.err != nil {
		return nil, fmt.Errorf("%w: %v -> %v after %d expansions",
			s.err, s.origin, s.target, s.expanded)
	}

	raw := reconstruct(s.found)
	res := &Result{
		Path:     raw,
		Raw:      raw,
		Cost:     s.found.cost,
		Expanded: s.expanded,
		Yields:   s.yields,
	}
	if s.opts.Simplify {
		res.Path = s.finder.Simplify(raw)
	}
	return res, nil
}

// reconstruct follows parent links from n back to the origin.
func reconstruct(n *node) Path {
	var path Path
	for ; n != nil; n = n.parent {
		path = append(path, n.pos)
	}
	// Reverse path (it's built from goal to origin)
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
