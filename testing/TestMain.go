// Package testing flips the process into test mode. Test files import it for
// its side effect so that nothing reaches real postgres, redis or Gotenberg.
package testing

import "os"

func init() {
	_ = os.Setenv("DEVISFLOW_TEST_MODE", "1")
	if os.Getenv("GOTENBERG_URL") == "" {
		_ = os.Setenv("GOTENBERG_URL", "http://127.0.0.1:0")
	}
}
