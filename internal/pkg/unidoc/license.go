package unidoc

import (
	"fmt"
	"sync/atomic"

	"github.com/unidoc/unioffice/common/license"
)

// EnvKey holds the metered UniDoc key that unlocks reading and writing .docx files
const EnvKey = "UNIDOC_LICENSE_API_KEY"

var licensed atomic.Bool

// Activate registers a metered license key for the process. An empty key leaves
// .docx support disabled and is not an error.
func Activate(key string) error {
	if key == "" {
		return nil
	}
	if err := license.SetMeteredKey(key); err != nil {
		return fmt.Errorf("set unidoc license: %w", err)
	}
	licensed.Store(true)
	return nil
}

// Licensed reports whether .docx files can be opened and saved
func Licensed() bool {
	return licensed.Load()
}
