package meta

import "sync"

// Service identity is process-global so that tracing and middleware can
// read it without carrying config through every constructor.
var (
	svcOnce    sync.Once //nolint:gochecknoglobals // write-once identity
	svcName    string    //nolint:gochecknoglobals // write-once identity
	svcVersion string    //nolint:gochecknoglobals // write-once identity
)

// SetServiceInfo records the service name and version. Only the first
// call takes effect.
func SetServiceInfo(name, version string) {
	svcOnce.Do(func() {
		svcName = name
		svcVersion = version
	})
}

// GetServiceInfo reports the name and version recorded at startup.
func GetServiceInfo() (name, version string) {
	return svcName, svcVersion
}
