package python

import "strings"

// IsTestModule reports whether a dotted module path names test code: any
// segment is `test` or `tests`, starts with `test_`, or ends with `_test` or `_tests`.
func IsTestModule(modulePath string) bool {
	for _, segment := range strings.Split(modulePath, ".") {
		if segment == "test" || segment == "tests" {
			return true
		}
		if strings.HasPrefix(segment, "test_") ||
			strings.HasSuffix(segment, "_test") ||
			strings.HasSuffix(segment, "_tests") {
			return true
		}
	}
	return false
}
