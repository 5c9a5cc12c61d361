// Package injector makes sure an Xcode project links CoreTelephony.framework.
package injector

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/countly/xcode-postprocessor/internal/logger"
	"github.com/countly/xcode-postprocessor/pbxproj"
	"go.trai.ch/zerr"
)

const (
	// FrameworkPath is the SDK-relative path of the framework to link.
	FrameworkPath = "System/Library/Frameworks/CoreTelephony.framework"

	// SourceTree roots FrameworkPath in the active SDK.
	SourceTree = "SDKROOT"
)

// Project is the subset of a loaded project file the injector works with.
//
//go:generate mockgen -source=injector.go -destination=mocks/mock_injector.go -package=mocks
type Project interface {
	// AddFramework adds a framework reference unless one with the same path
	// exists and reports whether it did.
	AddFramework(filePath string, options pbxproj.PbxFileOptions) (bool, error)

	// Modified reports unsaved changes.
	Modified() bool

	// Backup copies the file on disk and returns the copy's path.
	Backup() (string, error)

	// Save writes the project back in format.
	Save(format pbxproj.SaveFormat) error

	// Dump writes a JSON rendition of the contents.
	Dump(w io.Writer) error
}

// Loader opens project files.
type Loader interface {
	Load(path string) (Project, error)
}

// Options tunes a run.
type Options struct {
	// Backup keeps a timestamped copy of the file before it is overwritten.
	Backup bool
	// DryRun applies the change in memory and reports it without writing.
	DryRun bool
	// Format is the save layout. Empty means pbxproj.Format3_2.
	Format pbxproj.SaveFormat
	// Weak links the framework optionally.
	Weak bool
	// Target limits linking to one native target.
	Target string
	// UnityBuild treats the argument as a Unity iOS build directory.
	UnityBuild bool
	// DumpPath receives a JSON dump of the final contents when set.
	DumpPath string
}

// Injector runs the framework check against a single project file.
type Injector struct {
	loader Loader
	stdout io.Writer
}

// New creates an Injector that loads projects with loader and reports
// updates on stdout.
func New(loader Loader, stdout io.Writer) *Injector {
	return &Injector{
		loader: loader,
		stdout: stdout,
	}
}

// CheckArgs accepts exactly one positional argument.
func CheckArgs(args []string) error {
	if len(args) != 1 {
		return UsageError{}
	}
	return nil
}

// Run ensures the project named by args links the framework, saving it
// only when something was added.
func (i *Injector) Run(args []string, opts Options) error {
	if err := CheckArgs(args); err != nil {
		return err
	}

	path := args[0]
	if opts.UnityBuild {
		path = UnityProjectPath(path)
	}
	if err := checkFile(path); err != nil {
		return err
	}

	logger.Debug("loading %s\n", path)
	project, err := i.loader.Load(path)
	if err != nil {
		return err
	}

	added, err := project.AddFramework(FrameworkPath, pbxproj.PbxFileOptions{
		SourceTree: SourceTree,
		Weak:       opts.Weak,
		Target:     opts.Target,
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to add framework"), "path", path)
	}

	if opts.DumpPath != "" {
		if err := dumpTo(project, opts.DumpPath); err != nil {
			return err
		}
	}

	if !added && !project.Modified() {
		logger.Debug("%s already links %s\n", path, FrameworkPath)
		return nil
	}

	if opts.DryRun {
		logger.Info("dry run: %s would be updated\n", path)
		return nil
	}

	if opts.Backup {
		backupPath, err := project.Backup()
		if err != nil {
			return err
		}
		logger.Debug("backup written to %s\n", backupPath)
	}

	format := opts.Format
	if format == "" {
		format = pbxproj.Format3_2
	}
	if err := project.Save(format); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(i.stdout, "CountlyPostprocessor: Successfully updated %s\n", path)
	return nil
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &FileNotFoundError{Path: path}
	case err != nil:
		return zerr.With(zerr.Wrap(err, "failed to stat project file"), "path", path)
	case info.IsDir():
		return &FileNotFoundError{Path: path}
	}
	return nil
}

func dumpTo(project Project, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create dump file"), "path", path)
	}
	if err := project.Dump(f); err != nil {
		_ = f.Close()
		return zerr.With(err, "path", path)
	}
	if err := f.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close dump file"), "path", path)
	}
	return nil
}
