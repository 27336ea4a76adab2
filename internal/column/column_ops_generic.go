package column

// gatherSlice reorders data by the given index array.
func gatherSlice[T any](data []T, indices []int) []T {
	out := make([]T, len(indices))
	for i, idx := range indices {
		out[i] = data[idx]
	}
	return out
}

// appendSlice appends src onto dst and returns the extended slice.
func appendSlice[T any](dst, src []T) []T {
	return append(dst, src...)
}

func cloneSlice[T any](data []T) []T {
	out := make([]T, len(data))
	copy(out, data)
	return out
}
