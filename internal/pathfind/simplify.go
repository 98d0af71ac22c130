package pathfind

// Simplify reduces a waypoint-per-step path to long straight runs.
//
// From each kept point it jumps to the farthest later point that lies
// within MaxSegment and is directly reachable, falling back to the next
// point. The result is a subsequence of path with the same endpoints, and
// simplifying it again returns it unchanged.
func (f *Finder) Simplify(path Path) Path {
	if len(path) <= 2 {
		return append(Path(nil), path...)
	}

	out := Path{path[0]}
	for i := 0; i < len(path)-1; {
		next := i + 1
		for j := len(path) - 1; j >= i+2; j-- {
			if path[i].Distance(path[j]) >= f.params.MaxSegment {
				continue
			}
			if f.canMove(path[i], path[j]) {
				next = j
				break
			}
		}
		out = append(out, path[next])
		i = next
	}
	return out
}
