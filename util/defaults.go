package util

// Default sets *field to def when it holds the zero value.
//
//	util.Default(&c.Addr, "localhost:6379")
func Default[T comparable](field *T, def T) {
	var zero T
	if *field == zero {
		*field = def
	}
}
