// st_debug.go - Environment-controlled trace output

package stsound

import (
	"fmt"
	"os"
	"strings"
)

// stDebugEnabled caches STSOUND_DEBUG at init time
var stDebugEnabled = func() bool {
	value := strings.ToLower(os.Getenv("STSOUND_DEBUG"))
	return value == "1" || value == "true" || value == "yes"
}()

func debugf(format string, args ...any) {
	if !stDebugEnabled {
		return
	}
	fmt.Fprintf(os.Stderr, "stsound: "+format+"\n", args...)
}
