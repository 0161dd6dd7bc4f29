package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("MYFINAI_TEST_MODE") == "" {
			_ = os.Setenv("MYFINAI_TEST_MODE", "1")
		}
	})
}
