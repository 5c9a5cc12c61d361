package injector

import "path/filepath"

// UnityProjectDir is the Xcode project Unity generates in an iOS build.
const UnityProjectDir = "Unity-iPhone.xcodeproj"

// UnityProjectPath returns the project file inside a Unity iOS build directory.
func UnityProjectPath(buildDir string) string {
	return filepath.Join(buildDir, UnityProjectDir, "project.pbxproj")
}
