package syntree

import "testing"

func TestGroundedness(t *testing.T) {
	cases := []struct {
		name      string
		elem      Elem
		nonGround bool
	}{
		{"constant token", NewToken(KindID, "a"), false},
		{"variable token", NewToken(KindVar, "X"), true},
		{"ground pred", NewNode(KindGroundPred, NewToken(KindID, "f"), NewToken(KindInt, "1")), false},
		{"pred with variable", pred("f", NewToken(KindVar, "X")), true},
		{"variable buried two levels down",
			NewNode(KindBody, NewNode(KindPred, NewToken(KindID, "f"), NewToken(KindVar, "X"))), true},
		{"interval is ground",
			NewNode(KindInterval, NewToken(KindInt, "1"), NewToken(KindInt, "5")), false},
		{"nil element", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsNonGround(tc.elem); got != tc.nonGround {
				t.Errorf("IsNonGround = %v, want %v", got, tc.nonGround)
			}
			if got := IsGround(tc.elem); got != !tc.nonGround {
				t.Errorf("IsGround = %v, want %v", got, !tc.nonGround)
			}
		})
	}
}

func TestGroundednessOverSequences(t *testing.T) {
	ground := []Elem{NewToken(KindID, "a"), NewToken(KindInt, "1")}
	if IsNonGround(ground...) {
		t.Errorf("all-ground sequence reported non-ground")
	}
	if !IsGround(ground...) {
		t.Errorf("complement broken for ground sequence")
	}

	mixed := append(ground, NewToken(KindVar, "X"))
	if !IsNonGround(mixed...) {
		t.Errorf("sequence with a variable reported ground")
	}
	if IsGround(mixed...) {
		t.Errorf("complement broken for mixed sequence")
	}

	if IsNonGround() {
		t.Errorf("empty sequence reported non-ground")
	}
}

// A subtree referenced from two parents must be walked once and must
// not break the result.
func TestGroundednessSharedSubtree(t *testing.T) {
	shared := pred("f", NewToken(KindVar, "X"))
	left := NewNode(KindBody, shared)
	right := NewNode(KindBody, shared)
	root := NewNode(KindPLP, left, right)

	if !IsNonGround(root) {
		t.Errorf("shared variable subtree not detected")
	}

	sharedGround := NewNode(KindGroundPred, NewToken(KindID, "g"), NewToken(KindInt, "2"))
	root = NewNode(KindPLP, NewNode(KindBody, sharedGround), NewNode(KindBody, sharedGround))
	if IsNonGround(root) {
		t.Errorf("shared ground subtree reported non-ground")
	}
}
