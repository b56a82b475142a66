package app

import (
	"os"
	"sync"
)

const testModeEnv = "DEVISFLOW_TEST_MODE"

var testMode = sync.OnceValue(func() bool {
	return os.Getenv(testModeEnv) == "1"
})

// InTestMode reports whether main should skip opening connections. The
// environment is read once per process.
func InTestMode() bool {
	return testMode()
}
