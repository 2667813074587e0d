package snapshot

// Fixed layout of the artifact.
const (
	// SectionDelimiter opens every file block.
	SectionDelimiter = "----"
	// Terminator closes the artifact.
	Terminator = "--END--"
	// Header is written verbatim at the top of every artifact.
	Header = "# Repository Content Structure\n" +
		"# Section start: '" + SectionDelimiter + "'\n" +
		"# File path: Relative path of the file\n" +
		"# File content: Contents of the file\n" +
		"# Repository ends with: '" + Terminator + "'\n" +
		"# Text after '" + Terminator + "': Instructions or context\n" +
		"\n"

	lineBreak = "\n"
)
