package version

import "fmt"

var (
	Version   string // Version should be updated by hand at each release. It must follow SemVer (https://semver.org)
	GitCommit string // GitCommit will be overwritten automatically by the build system
	GitState  string // GitState will be overwritten automatically by the build system
	BuildDate string // BuildDate will be overwritten automatically by the build system
)

func ToDetailVersion() string {
	return fmt.Sprintf("version=%s git=%s state=%s build=%s", Version, GitCommit, GitState, BuildDate)
}
