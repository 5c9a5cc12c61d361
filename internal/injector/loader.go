package injector

import "github.com/countly/xcode-postprocessor/pbxproj"

// PbxLoader loads projects with the pbxproj package.
type PbxLoader struct {
	Options []pbxproj.PbxProjectOption
}

// Load parses the project file at path.
func (l PbxLoader) Load(path string) (Project, error) {
	project, err := pbxproj.Load(path, l.Options...)
	if err != nil {
		return nil, err
	}
	return project, nil
}
