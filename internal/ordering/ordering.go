// Package ordering keeps sibling lists (tour days, day activities, space
// categories) numbered as a dense 1..N sequence across drag-and-drop moves
// and deletes.
package ordering

// Move returns a copy of list with the element at oldIndex reinserted at
// newIndex. Out-of-range indexes leave the list unchanged.
func Move[T any](list []T, oldIndex, newIndex int) []T {
	out := make([]T, len(list))
	copy(out, list)
	if oldIndex < 0 || oldIndex >= len(out) || newIndex < 0 || newIndex >= len(out) {
		return out
	}
	item := out[oldIndex]
	out = append(out[:oldIndex], out[oldIndex+1:]...)

	rest := make([]T, 0, len(list))
	rest = append(rest, out[:newIndex]...)
	rest = append(rest, item)
	rest = append(rest, out[newIndex:]...)
	return rest
}

// Renumber assigns position+1 to every element, not only the ones between the
// moved indexes, so earlier drift can never survive a reorder.
func Renumber[T any](list []T, set func(item *T, key int)) {
	for i := range list {
		set(&list[i], i+1)
	}
}

// MoveAndRenumber combines Move and Renumber into the single operation the
// drag handlers use.
func MoveAndRenumber[T any](list []T, oldIndex, newIndex int, set func(item *T, key int)) []T {
	out := Move(list, oldIndex, newIndex)
	Renumber(out, set)
	return out
}
