package borealdb

// DriverType identifies this client in telemetry records.
const DriverType = "Go"

// Version is set by build flags during compilation.
// Example: go build -ldflags "-X github.com/borealdb/borealdb-go.Version=$(git describe --tags --always --dirty)"
var Version = "dev"
