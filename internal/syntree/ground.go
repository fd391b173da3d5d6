package syntree

// IsNonGround reports whether any variable token occurs in the subtree
// of any of the given elements. The walk is depth-first, stops at the
// first variable, and keeps a visited set keyed by element identity so
// subtrees shared between parents are walked once. The visited set
// lives only for this call; identity is only meaningful within one
// parse.
func IsNonGround(elems ...Elem) bool {
	seen := make(map[Elem]bool)
	for _, e := range elems {
		if nonGround(e, seen) {
			return true
		}
	}
	return false
}

// IsGround is the complement of IsNonGround over the same elements.
func IsGround(elems ...Elem) bool {
	return !IsNonGround(elems...)
}

func nonGround(e Elem, seen map[Elem]bool) bool {
	if e == nil || seen[e] {
		return false
	}
	seen[e] = true
	switch x := e.(type) {
	case *Token:
		return x.Kind == KindVar
	case *Node:
		for _, c := range x.Children {
			if nonGround(c, seen) {
				return true
			}
		}
	}
	return false
}
