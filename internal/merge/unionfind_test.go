package merge

import "testing"

func TestUnionFind(t *testing.T) {
	t.Run("singletons are their own roots", func(t *testing.T) {
		u := newUnionFind(4)
		for i := 0; i < 4; i++ {
			if u.find(i) != i {
				t.Errorf("find(%d) = %d", i, u.find(i))
			}
		}
	})

	t.Run("union connects transitively", func(t *testing.T) {
		u := newUnionFind(6)
		u.union(0, 1)
		u.union(2, 3)
		u.union(1, 2)

		if u.find(0) != u.find(3) {
			t.Error("0 and 3 not connected after chained unions")
		}
		if u.find(0) == u.find(4) {
			t.Error("4 joined a set it was never unioned into")
		}
	})

	t.Run("union is idempotent", func(t *testing.T) {
		u := newUnionFind(3)
		u.union(0, 1)
		root := u.find(0)
		u.union(0, 1)
		u.union(1, 0)
		if u.find(0) != root || u.find(1) != root {
			t.Error("repeated unions changed the component root")
		}
	})

	t.Run("components stay disjoint", func(t *testing.T) {
		u := newUnionFind(8)
		u.union(0, 1)
		u.union(2, 3)
		u.union(4, 5)
		u.union(6, 7)
		u.union(0, 3)
		u.union(4, 7)

		if u.find(1) != u.find(2) {
			t.Error("first component split")
		}
		if u.find(5) != u.find(6) {
			t.Error("second component split")
		}
		if u.find(0) == u.find(4) {
			t.Error("independent components collapsed")
		}
	})
}
