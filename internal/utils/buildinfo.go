package utils

import (
	"runtime/debug"
	"strings"
)

const (
	unknownVersion     = "unknown"
	develBuildVersion  = "(devel)"
	vcsRevisionSetting = "vcs.revision"
	vcsModifiedSetting = "vcs.modified"
	shortRevisionWidth = 12
	dirtyRevisionLabel = "-dirty"
)

// Version can be set at link time with -ldflags "-X .../internal/utils.Version=v1.2.3".
var Version = EmptyString

// GetApplicationVersion reports the linked version, the module version from
// build info, or the VCS revision recorded by the Go toolchain, in that order.
func GetApplicationVersion() string {
	if trimmed := strings.TrimSpace(Version); trimmed != EmptyString {
		return trimmed
	}
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if !buildInfoAvailable {
		return unknownVersion
	}
	if buildInfo.Main.Version != EmptyString && buildInfo.Main.Version != develBuildVersion {
		return buildInfo.Main.Version
	}
	return revisionFromSettings(buildInfo.Settings)
}

func revisionFromSettings(settings []debug.BuildSetting) string {
	revision := EmptyString
	modified := false
	for _, setting := range settings {
		switch setting.Key {
		case vcsRevisionSetting:
			revision = setting.Value
		case vcsModifiedSetting:
			modified = setting.Value == "true"
		}
	}
	if revision == EmptyString {
		return unknownVersion
	}
	if len(revision) > shortRevisionWidth {
		revision = revision[:shortRevisionWidth]
	}
	if modified {
		revision += dirtyRevisionLabel
	}
	return revision
}
