package optimizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jwaldner/putfolio/internal/logger"
)

func TestMain(m *testing.M) {
	if err := logger.InitWithConfig("error", filepath.Join(os.TempDir(), "putfolio-test.log")); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
