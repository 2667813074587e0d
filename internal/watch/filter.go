package watch

import (
	"path/filepath"

	"github.com/SourM1lk/gpt-repo-stream/internal/utils"
)

// Filter decides which events trigger a refresh.
//
// Only modification events qualify; creations, removals and renames are
// dropped, so a new or deleted file is picked up on the next modification.
// Events touching the artifact or the Git metadata directory are dropped so
// the loop never refreshes on its own write.
type Filter struct {
	Root       string
	OutputPath string
}

// Accept reports whether event should provoke a pass.
func (filter Filter) Accept(event Event) bool {
	if event.Kind != EventKindModify {
		return false
	}
	for _, affectedPath := range event.Paths {
		if filter.isArtifact(affectedPath) || filter.isVersionControl(affectedPath) {
			return false
		}
	}
	return true
}

// isArtifact matches the artifact by trailing components, or by absolute
// path when OutputPath climbs out of the working directory with "..".
func (filter Filter) isArtifact(affectedPath string) bool {
	if filter.OutputPath == utils.EmptyString {
		return false
	}
	if utils.HasPathSuffix(affectedPath, filter.OutputPath) {
		return true
	}
	absoluteOutputPath, outputError := filepath.Abs(filter.OutputPath)
	if outputError != nil {
		return false
	}
	absoluteAffectedPath, affectedError := filepath.Abs(affectedPath)
	return affectedError == nil && absoluteAffectedPath == absoluteOutputPath
}

func (filter Filter) isVersionControl(affectedPath string) bool {
	if utils.HasPathPrefix(affectedPath, utils.GitDirectoryName) {
		return true
	}
	if filter.Root == utils.EmptyString {
		return false
	}
	relativePath, underRoot := utils.RelativePathUnder(affectedPath, filter.Root)
	return underRoot && utils.HasPathPrefix(relativePath, utils.GitDirectoryName)
}
