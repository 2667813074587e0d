// Package snapshot materializes a directory tree into a single text artifact.
//
// Every pass truncates the artifact and rewrites it from scratch: the fixed
// header, one block per included file in lexical walk order, and the
// terminator line.
package snapshot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/SourM1lk/gpt-repo-stream/internal/ignore"
	"github.com/SourM1lk/gpt-repo-stream/internal/utils"
)

var (
	// ErrEmptyRoot is returned when the writer has no root directory.
	ErrEmptyRoot = errors.New("snapshot: root path is empty")
	// ErrEmptyOutputPath is returned when the writer has no artifact path.
	ErrEmptyOutputPath = errors.New("snapshot: output path is empty")
)

const (
	errorCreateArtifactFormat = "create artifact %s: %w"
	errorWriteArtifactFormat  = "write artifact %s: %w"
	errorCloseArtifactFormat  = "close artifact %s: %w"
	errorResolvePathFormat    = "resolve path %s: %w"
	errorReadDirectoryFormat  = "read directory %s: %w"
)

// Summary describes one completed pass.
type Summary struct {
	Files int
	Bytes int64
}

// Writer serializes Root into the artifact at OutputPath, skipping paths
// matched by Rules.
type Writer struct {
	Root       string
	Rules      ignore.RuleSet
	OutputPath string
}

// Write truncates the artifact and renders a full pass into it. On error the
// artifact may be left partially written.
func (writer Writer) Write() (Summary, error) {
	if writer.Root == utils.EmptyString {
		return Summary{}, ErrEmptyRoot
	}
	if writer.OutputPath == utils.EmptyString {
		return Summary{}, ErrEmptyOutputPath
	}

	// #nosec G304
	artifactFile, createError := os.Create(writer.OutputPath)
	if createError != nil {
		return Summary{}, fmt.Errorf(errorCreateArtifactFormat, writer.OutputPath, createError)
	}

	bufferedWriter := bufio.NewWriter(artifactFile)
	summary, renderError := writer.Render(bufferedWriter)
	if renderError == nil {
		if flushError := bufferedWriter.Flush(); flushError != nil {
			renderError = fmt.Errorf(errorWriteArtifactFormat, writer.OutputPath, flushError)
		}
	}
	if closeError := artifactFile.Close(); closeError != nil && renderError == nil {
		renderError = fmt.Errorf(errorCloseArtifactFormat, writer.OutputPath, closeError)
	}
	if renderError != nil {
		return Summary{}, renderError
	}
	return summary, nil
}

// Render writes the header, every included file block and the terminator to destination.
func (writer Writer) Render(destination io.Writer) (Summary, error) {
	if writer.Root == utils.EmptyString {
		return Summary{}, ErrEmptyRoot
	}
	absoluteRoot, rootError := filepath.Abs(writer.Root)
	if rootError != nil {
		return Summary{}, fmt.Errorf(errorResolvePathFormat, writer.Root, rootError)
	}
	absoluteOutputPath := utils.EmptyString
	if writer.OutputPath != utils.EmptyString {
		resolvedOutputPath, outputError := filepath.Abs(writer.OutputPath)
		if outputError != nil {
			return Summary{}, fmt.Errorf(errorResolvePathFormat, writer.OutputPath, outputError)
		}
		absoluteOutputPath = resolvedOutputPath
	}

	renderer := &blockRenderer{destination: destination, outputPath: writer.OutputPath}
	if headerError := renderer.writeString(Header); headerError != nil {
		return Summary{}, headerError
	}

	traversal := &treeWalker{
		root:       absoluteRoot,
		outputPath: absoluteOutputPath,
		rules:      writer.Rules,
		ancestors:  make(map[string]struct{}),
		visit:      renderer.writeFile,
	}
	if walkError := traversal.walkDirectory(absoluteRoot, utils.EmptyString); walkError != nil {
		return Summary{}, walkError
	}

	if terminatorError := renderer.writeString(Terminator + lineBreak); terminatorError != nil {
		return Summary{}, terminatorError
	}
	return renderer.summary, nil
}

type blockRenderer struct {
	destination io.Writer
	outputPath  string
	summary     Summary
}

func (renderer *blockRenderer) writeString(text string) error {
	if _, writeError := io.WriteString(renderer.destination, text); writeError != nil {
		return fmt.Errorf(errorWriteArtifactFormat, renderer.outputPath, writeError)
	}
	return nil
}

// writeFile appends one block for the file at absolutePath. Unreadable or
// non-text files are skipped without error.
func (renderer *blockRenderer) writeFile(relativePath, absolutePath string) error {
	// #nosec G304
	fileBytes, readError := os.ReadFile(absolutePath)
	if readError != nil || !utils.IsText(fileBytes) {
		return nil
	}
	block := SectionDelimiter + lineBreak + relativePath + lineBreak + string(fileBytes) + lineBreak
	if writeError := renderer.writeString(block); writeError != nil {
		return writeError
	}
	renderer.summary.Files++
	renderer.summary.Bytes += int64(len(fileBytes))
	return nil
}

// treeWalker visits regular files under root in lexical order, following
// symbolic links. A directory whose resolved path is already on the current
// descent chain is skipped; the same directory reached through sibling links
// is emitted once per path.
type treeWalker struct {
	root       string
	outputPath string
	rules      ignore.RuleSet
	ancestors  map[string]struct{}
	visit      func(relativePath, absolutePath string) error
}

func (walker *treeWalker) walkDirectory(directoryPath, relativeDirectory string) error {
	resolvedDirectory, resolveError := filepath.EvalSymlinks(directoryPath)
	if resolveError != nil {
		return fmt.Errorf(errorResolvePathFormat, directoryPath, resolveError)
	}
	if _, onStack := walker.ancestors[resolvedDirectory]; onStack {
		return nil
	}
	walker.ancestors[resolvedDirectory] = struct{}{}
	defer delete(walker.ancestors, resolvedDirectory)

	directoryEntries, readDirectoryError := os.ReadDir(directoryPath)
	if readDirectoryError != nil {
		return fmt.Errorf(errorReadDirectoryFormat, directoryPath, readDirectoryError)
	}

	for _, directoryEntry := range directoryEntries {
		entryPath := filepath.Join(directoryPath, directoryEntry.Name())
		entryRelativePath := path.Join(relativeDirectory, directoryEntry.Name())

		entryMode := directoryEntry.Type()
		if entryMode&fs.ModeSymlink != 0 {
			targetInfo, statError := os.Stat(entryPath)
			if statError != nil {
				continue
			}
			entryMode = targetInfo.Mode().Type()
		}

		switch {
		case entryMode.IsDir():
			if walkError := walker.walkDirectory(entryPath, entryRelativePath); walkError != nil {
				return walkError
			}
		case entryMode.IsRegular():
			if walker.skipFile(entryPath, entryRelativePath) {
				continue
			}
			if visitError := walker.visit(entryRelativePath, entryPath); visitError != nil {
				return visitError
			}
		}
	}
	return nil
}

func (walker *treeWalker) skipFile(absolutePath, relativePath string) bool {
	if walker.outputPath != utils.EmptyString && utils.HasPathSuffix(absolutePath, walker.outputPath) {
		return true
	}
	return walker.rules.MatchesRelative(relativePath)
}
