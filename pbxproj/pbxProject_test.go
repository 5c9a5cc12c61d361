package pbxproj_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/countly/xcode-postprocessor/internal/logger"
	"github.com/countly/xcode-postprocessor/pbxproj"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"howett.net/plist"
)

const (
	fixture       = "testdata/Unity-iPhone.pbxproj"
	coreTelephony = "System/Library/Frameworks/CoreTelephony.framework"
)

var sdkFramework = pbxproj.PbxFileOptions{SourceTree: pbxproj.SDKROOT_SOURCETREE}

// sequentialUUIDs makes generated object IDs predictable: 000...001, 000...002, ...
func sequentialUUIDs() pbxproj.PbxProjectOption {
	n := 0
	return pbxproj.WithUUIDGenerator(func() string {
		n++
		return fmt.Sprintf("%024X", n)
	})
}

// captureLog sends log output to a buffer for the rest of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.Init(false, &buf)
	t.Cleanup(func() { logger.Init(false, os.Stderr) })
	return &buf
}

// writeProject puts content into a temporary project file.
func writeProject(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.pbxproj")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func copyFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(fixture)
	require.NoError(t, err)
	return writeProject(t, data)
}

func loadFixture(t *testing.T, options ...pbxproj.PbxProjectOption) *pbxproj.PbxProject {
	t.Helper()
	project, _ := loadFixtureFile(t, options...)
	return project
}

// loadFixtureFile is loadFixture that also returns where the copy lives.
func loadFixtureFile(t *testing.T, options ...pbxproj.PbxProjectOption) (*pbxproj.PbxProject, string) {
	t.Helper()
	path := copyFixture(t)
	project, err := pbxproj.Load(path, append([]pbxproj.PbxProjectOption{sequentialUUIDs()}, options...)...)
	require.NoError(t, err)
	return project, path
}

func TestLoad_RoundTripIsByteIdentical(t *testing.T) {
	want, err := os.ReadFile(fixture)
	require.NoError(t, err)

	project := loadFixture(t)
	got := pbxproj.NewPbxWriter(project).Bytes()

	assert.Equal(t, string(want), string(got))
	assert.False(t, project.Modified())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "truncated", content: "// !$*UTF8*$!\n{\n\tobjects = {\n"},
		{name: "missing objects", content: "// !$*UTF8*$!\n{\n\tarchiveVersion = 1;\n}\n"},
		{name: "not a dictionary", content: "// !$*UTF8*$!\n(a, b)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pbxproj.Load(writeProject(t, []byte(tt.content)))
			require.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := pbxproj.Load(filepath.Join(t.TempDir(), "absent.pbxproj"))
		require.Error(t, err)
	})
}

func TestAddFramework(t *testing.T) {
	logged := captureLog(t)
	project := loadFixture(t)
	require.False(t, project.HasFile(coreTelephony))

	added, err := project.AddFramework(coreTelephony, sdkFramework)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Empty(t, logged.String(), "existing Frameworks phases are reused")
	assert.True(t, project.Modified())
	assert.True(t, project.HasFile(coreTelephony))

	g := goldie.New(t)
	g.Assert(t, "add_framework", pbxproj.NewPbxWriter(project).Bytes())
}

func TestAddFramework_Idempotent(t *testing.T) {
	project := loadFixture(t)

	added, err := project.AddFramework(coreTelephony, sdkFramework)
	require.NoError(t, err)
	require.True(t, added)
	once := pbxproj.NewPbxWriter(project).Bytes()

	added, err = project.AddFramework(coreTelephony, sdkFramework)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, string(once), string(pbxproj.NewPbxWriter(project).Bytes()))
}

func TestAddFramework_ExistingReference(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "bare path", path: "System/Library/Frameworks/Foundation.framework"},
		{name: "quoted path", path: `"System/Library/Frameworks/CFNetwork.framework"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project := loadFixture(t)

			added, err := project.AddFramework(tt.path, sdkFramework)
			require.NoError(t, err)
			assert.False(t, added)
			assert.False(t, project.Modified())
		})
	}
}

func TestAddFramework_Weak(t *testing.T) {
	project := loadFixture(t)

	added, err := project.AddFramework(coreTelephony, pbxproj.PbxFileOptions{
		SourceTree: pbxproj.SDKROOT_SOURCETREE,
		Weak:       true,
	})
	require.NoError(t, err)
	require.True(t, added)

	assert.Contains(t, string(pbxproj.NewPbxWriter(project).Bytes()),
		"000000000000000000000002 /* CoreTelephony.framework in Frameworks */ = {isa = PBXBuildFile; "+
			"fileRef = 000000000000000000000001 /* CoreTelephony.framework */; settings = {ATTRIBUTES = (Weak, ); }; };\n")
}

func TestAddFramework_Target(t *testing.T) {
	t.Run("known target", func(t *testing.T) {
		project := loadFixture(t)

		added, err := project.AddFramework(coreTelephony, pbxproj.PbxFileOptions{
			SourceTree: pbxproj.SDKROOT_SOURCETREE,
			Target:     "Unity-iPhone",
		})
		require.NoError(t, err)
		assert.True(t, added)
	})

	t.Run("unknown target", func(t *testing.T) {
		project := loadFixture(t)

		added, err := project.AddFramework(coreTelephony, pbxproj.PbxFileOptions{
			SourceTree: pbxproj.SDKROOT_SOURCETREE,
			Target:     "Unity-iPhone-Tests",
		})
		require.Error(t, err)
		assert.False(t, added)
		assert.False(t, project.Modified())
		assert.False(t, project.HasFile(coreTelephony))
	})
}

const bareProject = `// !$*UTF8*$!
{
	archiveVersion = 1;
	classes = {
	};
	objectVersion = 46;
	objects = {

/* Begin PBXGroup section */
		AAAAAAAAAAAAAAAAAAAAAAA1 = {
			isa = PBXGroup;
			children = (
			);
			sourceTree = "<group>";
		};
/* End PBXGroup section */

/* Begin PBXNativeTarget section */
		AAAAAAAAAAAAAAAAAAAAAAA2 /* App */ = {
			isa = PBXNativeTarget;
			buildPhases = (
			);
			name = App;
		};
/* End PBXNativeTarget section */

/* Begin PBXProject section */
		AAAAAAAAAAAAAAAAAAAAAAA3 /* Project object */ = {
			isa = PBXProject;
			mainGroup = AAAAAAAAAAAAAAAAAAAAAAA1;
			targets = (
				AAAAAAAAAAAAAAAAAAAAAAA2 /* App */,
			);
		};
/* End PBXProject section */
	};
	rootObject = AAAAAAAAAAAAAAAAAAAAAAA3 /* Project object */;
}
`

func TestAddFramework_CreatesGroupAndBuildPhase(t *testing.T) {
	logged := captureLog(t)
	project, err := pbxproj.Load(writeProject(t, []byte(bareProject)), sequentialUUIDs())
	require.NoError(t, err)

	added, err := project.AddFramework(coreTelephony, sdkFramework)
	require.NoError(t, err)
	require.True(t, added)
	assert.Contains(t, logged.String(), "target App has no Frameworks build phase, adding one\n")

	out := string(pbxproj.NewPbxWriter(project).Bytes())

	// main group lists the new group
	assert.Contains(t, out, "\t\t\tchildren = (\n\t\t\t\t000000000000000000000001 /* Frameworks */,\n\t\t\t);\n")
	assert.Contains(t, out, "\t\t000000000000000000000001 /* Frameworks */ = {\n"+
		"\t\t\tisa = PBXGroup;\n"+
		"\t\t\tchildren = (\n"+
		"\t\t\t\t000000000000000000000002 /* CoreTelephony.framework */,\n"+
		"\t\t\t);\n"+
		"\t\t\tname = Frameworks;\n"+
		"\t\t\tsourceTree = \"<group>\";\n"+
		"\t\t};\n")
	// target gets a Frameworks phase holding the build file
	assert.Contains(t, out, "\t\t\tbuildPhases = (\n\t\t\t\t000000000000000000000003 /* Frameworks */,\n\t\t\t);\n")
	assert.Contains(t, out, "\t\t000000000000000000000003 /* Frameworks */ = {\n"+
		"\t\t\tisa = PBXFrameworksBuildPhase;\n"+
		"\t\t\tbuildActionMask = 2147483647;\n"+
		"\t\t\tfiles = (\n"+
		"\t\t\t\t000000000000000000000004 /* CoreTelephony.framework in Frameworks */,\n"+
		"\t\t\t);\n"+
		"\t\t\trunOnlyForDeploymentPostprocessing = 0;\n"+
		"\t\t};\n")

	// sections come out in isa order
	assert.Less(t, strings.Index(out, "/* Begin PBXBuildFile section */"), strings.Index(out, "/* Begin PBXFileReference section */"))
	assert.Less(t, strings.Index(out, "/* Begin PBXFileReference section */"), strings.Index(out, "/* Begin PBXFrameworksBuildPhase section */"))
	assert.Less(t, strings.Index(out, "/* Begin PBXFrameworksBuildPhase section */"), strings.Index(out, "/* Begin PBXGroup section */"))
	assert.NotContains(t, out, "XCBuildConfiguration")

	reparsed, err := pbxproj.Load(writeProject(t, []byte(out)))
	require.NoError(t, err)
	assert.True(t, reparsed.HasFile(coreTelephony))
}

func TestAddFramework_NoMainGroup(t *testing.T) {
	content := strings.Replace(bareProject, "\t\t\tmainGroup = AAAAAAAAAAAAAAAAAAAAAAA1;\n", "", 1)
	project, err := pbxproj.Load(writeProject(t, []byte(content)))
	require.NoError(t, err)

	added, err := project.AddFramework(coreTelephony, sdkFramework)
	require.Error(t, err)
	assert.False(t, added)
}

func TestAddFramework_CustomFramework(t *testing.T) {
	project := loadFixture(t)

	added, err := project.AddFramework("Frameworks/Plugins/iOS/Countly.framework", pbxproj.PbxFileOptions{
		CustomFramework: true,
	})
	require.NoError(t, err)
	require.True(t, added)

	out := string(pbxproj.NewPbxWriter(project).Bytes())
	assert.Contains(t, out, "000000000000000000000001 /* Countly.framework */ = {isa = PBXFileReference; "+
		"lastKnownFileType = wrapper.framework; name = Countly.framework; "+
		"path = Frameworks/Plugins/iOS/Countly.framework; sourceTree = \"<group>\"; };\n")
	assert.Contains(t, out, "\t\t\t\tFRAMEWORK_SEARCH_PATHS = (\n"+
		"\t\t\t\t\t\"$(inherited)\",\n"+
		"\t\t\t\t\t\"\\\"Frameworks/Plugins/iOS\\\"\",\n"+
		"\t\t\t\t);\n")
	// only configurations building the product are touched
	assert.Equal(t, 1, strings.Count(out, "FRAMEWORK_SEARCH_PATHS"))
}

func TestAddFramework_NotParsed(t *testing.T) {
	project := pbxproj.NewPbxProject("project.pbxproj")

	_, err := project.AddFramework(coreTelephony, sdkFramework)
	require.Error(t, err)
}

func TestBackup(t *testing.T) {
	path := copyFixture(t)
	require.NoError(t, os.Chmod(path, 0o600))
	stamp := time.Date(2024, time.March, 5, 14, 7, 9, 0, time.Local)
	project, err := pbxproj.Load(path, pbxproj.WithClock(func() time.Time { return stamp }))
	require.NoError(t, err)

	original, err := os.Stat(path)
	require.NoError(t, err)

	backupPath, err := project.Backup()
	require.NoError(t, err)
	assert.Equal(t, path+".050324-140709.backup", backupPath)

	want, err := os.ReadFile(path)
	require.NoError(t, err)
	got, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(backupPath)
	require.NoError(t, err)
	assert.Equal(t, original.Mode().Perm(), info.Mode().Perm())
	assert.True(t, original.ModTime().Equal(info.ModTime()))
}

func TestSave(t *testing.T) {
	project, path := loadFixtureFile(t)
	_, err := project.AddFramework(coreTelephony, sdkFramework)
	require.NoError(t, err)

	require.NoError(t, project.Save(pbxproj.Format3_2))
	assert.False(t, project.Modified())

	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	golden, err := os.ReadFile("testdata/add_framework.golden")
	require.NoError(t, err)
	assert.Equal(t, string(golden), string(saved))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files left behind")
	assert.Equal(t, "project.pbxproj", entries[0].Name())

	reloaded, err := pbxproj.Load(path)
	require.NoError(t, err)
	assert.True(t, reloaded.HasFile(coreTelephony))
}

func TestSave_KeepsFileMode(t *testing.T) {
	project, path := loadFixtureFile(t)
	require.NoError(t, os.Chmod(path, 0o600))
	_, err := project.AddFramework(coreTelephony, sdkFramework)
	require.NoError(t, err)

	require.NoError(t, project.Save(pbxproj.Format3_2))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSave_OutputIsOpenStepPlist(t *testing.T) {
	project, path := loadFixtureFile(t)
	_, err := project.AddFramework(coreTelephony, sdkFramework)
	require.NoError(t, err)
	require.NoError(t, project.Save(pbxproj.Format3_2))

	saved, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]interface{}
	format, err := plist.Unmarshal(saved, &doc)
	require.NoError(t, err)
	assert.Contains(t, []int{plist.OpenStepFormat, plist.GNUStepFormat}, format)

	objects, ok := doc["objects"].(map[string]interface{})
	require.True(t, ok)
	ref, ok := objects["000000000000000000000001"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "PBXFileReference", ref["isa"])
	assert.Equal(t, coreTelephony, ref["path"])
	assert.Equal(t, "SDKROOT", ref["sourceTree"])
}

func TestSave_UnsupportedFormat(t *testing.T) {
	project, path := loadFixtureFile(t)
	_, err := project.AddFramework(coreTelephony, sdkFramework)
	require.NoError(t, err)

	require.Error(t, project.Save(pbxproj.SaveFormat("3.1")))
	assert.True(t, project.Modified())

	want, err := os.ReadFile(fixture)
	require.NoError(t, err)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

func TestParseSaveFormat(t *testing.T) {
	format, err := pbxproj.ParseSaveFormat("3.2")
	require.NoError(t, err)
	assert.Equal(t, pbxproj.Format3_2, format)

	for _, name := range []string{"", "3.1", "xml", "binary"} {
		_, err := pbxproj.ParseSaveFormat(name)
		assert.Error(t, err, name)
	}
}

func TestDump(t *testing.T) {
	project := loadFixture(t)
	_, err := project.AddFramework(coreTelephony, sdkFramework)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, project.Dump(&buf))

	var doc struct {
		HeadComment string `json:"headComment"`
		Project     struct {
			RootObject string                            `json:"rootObject"`
			Objects    map[string]map[string]interface{} `json:"objects"`
		} `json:"project"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "!$*UTF8*$!", doc.HeadComment)
	assert.Equal(t, "29B97313FDCFA39411CA2CEA", doc.Project.RootObject)
	ref, ok := doc.Project.Objects["PBXFileReference"]["000000000000000000000001"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, coreTelephony, ref["path"])
	assert.Equal(t, "CoreTelephony.framework", doc.Project.Objects["PBXFileReference"]["000000000000000000000001_comment"])

	// keys keep file order: isa leads each object
	dump := buf.String()
	buildFile := strings.Index(dump, `"000000000000000000000002": {`)
	require.NotEqual(t, -1, buildFile)
	assert.Less(t, strings.Index(dump[buildFile:], `"isa": "PBXBuildFile"`),
		strings.Index(dump[buildFile:], `"fileRef": "000000000000000000000001"`))
}
