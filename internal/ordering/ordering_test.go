package ordering_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ms-catalog/internal/ordering"
)

type item struct {
	Name string
	Key  int
}

func setKey(it *item, key int) { it.Key = key }

func makeItems(n int) []item {
	items := make([]item, n)
	for i := range items {
		items[i] = item{Name: string(rune('a' + i)), Key: i + 1}
	}
	return items
}

func TestMoveForward(t *testing.T) {
	items := makeItems(4)

	moved := ordering.Move(items, 0, 2)

	assert.Equal(t, []string{"b", "c", "a", "d"}, names(moved))
	// Original slice untouched
	assert.Equal(t, []string{"a", "b", "c", "d"}, names(items))
}

func TestMoveBackward(t *testing.T) {
	items := makeItems(4)

	moved := ordering.Move(items, 3, 1)

	assert.Equal(t, []string{"a", "d", "b", "c"}, names(moved))
}

func TestMoveOutOfRangeIsNoop(t *testing.T) {
	items := makeItems(3)

	assert.Equal(t, names(items), names(ordering.Move(items, -1, 1)))
	assert.Equal(t, names(items), names(ordering.Move(items, 0, 5)))
}

func TestRenumberRepairsDrift(t *testing.T) {
	// Keys left with gaps and duplicates by earlier operations.
	items := []item{{"a", 3}, {"b", 3}, {"c", 7}}

	ordering.Renumber(items, setKey)

	assert.Equal(t, []int{1, 2, 3}, keys(items))
}

func TestMoveAndRenumberAllPositions(t *testing.T) {
	// After moving i -> j the keys must be exactly the dense sequence 1..N,
	// for every combination of i and j.
	const n = 6
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			items := makeItems(n)
			out := ordering.MoveAndRenumber(items, i, j, setKey)

			assert.Len(t, out, n)
			assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, keys(out), "move %d -> %d", i, j)
		}
	}
}

func TestMoveAndRenumberSingleElement(t *testing.T) {
	items := []item{{"a", 9}}

	out := ordering.MoveAndRenumber(items, 0, 0, setKey)

	assert.Equal(t, []int{1}, keys(out))
}

func names(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func keys(items []item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Key
	}
	return out
}
