package observability

import (
	"os"

	"github.com/grafana/pyroscope-go"

	"compress-bot/pkg/logger"
)

// StartProfiling attaches continuous profiling when a pyroscope server is
// configured. Safe to call before config loading: it falls back to the
// PYROSCOPE_SERVER_ADDRESS environment variable and does nothing when unset.
func StartProfiling(appName string) {
	addr := os.Getenv("PYROSCOPE_SERVER_ADDRESS")
	if addr == "" {
		return
	}

	_, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: appName,
		ServerAddress:   addr,
		AuthToken:       os.Getenv("PYROSCOPE_AUTH_TOKEN"),
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		logger.Warnf("pyroscope profiling not started: %v", err)
	}
}
