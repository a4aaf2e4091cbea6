package app

// Version information, injected at build time.
var (
	Version   string = "1.0.0"
	GitTag    string = "2000.01.01.release"
	BuildTime string = "2000-01-01T00:00:00+0800"
)

const (
	// Name is the application name reported by /health and the middleware.
	Name = "Offline Note Sync Service"
)
