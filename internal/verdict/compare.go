package verdict

import "reflect"

// columnsEqual reports whether two column-name sequences are identical,
// including order.
func columnsEqual(user, reference []string) bool {
	if len(user) != len(reference) {
		return false
	}
	for i := range user {
		if user[i] != reference[i] {
			return false
		}
	}
	return true
}

// rowsEqual reports whether two result sets are identical: same row order,
// same cell values, no cross-type coercion. Values come from the same JSON
// decoding on both sides, so DeepEqual compares like with like.
func rowsEqual(user, reference [][]any) bool {
	if len(user) != len(reference) {
		return false
	}
	for i := range user {
		if len(user[i]) != len(reference[i]) {
			return false
		}
		if !reflect.DeepEqual(user[i], reference[i]) {
			return false
		}
	}
	return true
}
