package injector

// UsageError is returned when the command line does not name exactly one
// project file.
type UsageError struct{}

func (UsageError) Error() string {
	return "Syntax: <path to .pbxproj file>"
}

// FileNotFoundError is returned when the project path does not name an
// existing file.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return "File not found: " + e.Path
}
