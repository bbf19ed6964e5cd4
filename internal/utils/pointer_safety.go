package utils

// Ptr is used to build the optional fields of partial update requests
func Ptr[T any](v T) *T {
	return &v
}
