// Package version holds build metadata set via linker flags at release
// build time (-X github.com/jordigilh/uccompare/version.GitRelease=...).
package version

var (
	GitRelease    = "dev"
	GitCommit     = "unknown"
	GitCommitDate = "unknown"
	GoInfo        = "unknown"
)
