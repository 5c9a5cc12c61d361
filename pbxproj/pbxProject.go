/**
Licensed to the Apache Software Foundation (ASF) under one
or more contributor license agreements.  See the NOTICE file
distributed with this work for additional information
regarding copyright ownership.  The ASF licenses this file
to you under the Apache License, Version 2.0 (the
'License'); you may not use this file except in compliance
with the License.  You may obtain a copy of the License at
http://www.apache.org/licenses/LICENSE-2.0
Unless required by applicable law or agreed to in writing,
software distributed under the License is distributed on an
'AS IS' BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
KIND, either express or implied.  See the License for the
specific language governing permissions and limitations
under the License.
*/

package pbxproj

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/countly/xcode-postprocessor/internal/logger"
	"github.com/countly/xcode-postprocessor/pegparser"
	"github.com/gofrs/uuid"
	"go.trai.ch/zerr"
)

var (
	// ErrNotParsed is returned by mutations on a project without contents.
	ErrNotParsed = zerr.New("project has not been parsed")

	// ErrMalformedProject is returned when a required section or object is missing.
	ErrMalformedProject = zerr.New("malformed project")

	// ErrTargetNotFound is returned when a named native target does not exist.
	ErrTargetNotFound = zerr.New("native target not found")
)

type CommentValue struct {
	Value   string
	Comment string
}

func (c CommentValue) ToObject() pegparser.Object {
	return pegparser.NewObjectWithData([]pegparser.SliceItem{
		pegparser.NewObjectItem("value", c.Value),
		pegparser.NewObjectItem("comment", c.Comment),
	})
}

type PbxProjectOption func(p *PbxProject)

// WithUUIDGenerator replaces the random object ID source. Generated IDs
// that collide with existing ones are skipped.
func WithUUIDGenerator(generate func() string) PbxProjectOption {
	return func(p *PbxProject) {
		p.newUuid = generate
	}
}

// WithClock sets the time source used to name backups.
func WithClock(now func() time.Time) PbxProjectOption {
	return func(p *PbxProject) {
		p.now = now
	}
}

// WithOutputVerification toggles re-parsing the serialized project as a
// property list before it replaces the file on Save. On by default.
func WithOutputVerification(enabled bool) PbxProjectOption {
	return func(p *PbxProject) {
		p.verifyOutput = enabled
	}
}

type PbxProject struct {
	filePath                       string
	pbxContents                    pegparser.Object
	topProjectSection              pegparser.Object
	pbxObjectSection               pegparser.Object
	pbxGroupSection                pegparser.Object
	pbxProjectSection              pegparser.Object
	pbxBuildFileSection            pegparser.Object
	pbxXCBuildConfigurationSection pegparser.Object
	pbxFileReferenceSection        pegparser.Object
	pbxNativeTargetSection         pegparser.Object
	uuids                          map[string]struct{}
	modified                       bool
	verifyOutput                   bool
	newUuid                        func() string
	now                            func() time.Time
}

func NewPbxProject(filename string, options ...PbxProjectOption) PbxProject {
	p := PbxProject{
		filePath:     filename,
		uuids:        make(map[string]struct{}),
		verifyOutput: true,
		newUuid:      randomUuid,
		now:          time.Now,
	}
	for _, option := range options {
		option(&p)
	}
	return p
}

// Load reads and parses the project file at filename.
func Load(filename string, options ...PbxProjectOption) (*PbxProject, error) {
	project := NewPbxProject(filename, options...)
	if err := project.Parse(); err != nil {
		return nil, err
	}
	return &project, nil
}

func (p *PbxProject) Contents() pegparser.Object {
	return p.pbxContents
}

// Modified reports whether any mutation changed the contents since they
// were parsed or last saved.
func (p *PbxProject) Modified() bool {
	return p.modified
}

func (p *PbxProject) Parse() error {
	data, err := os.ReadFile(p.filePath)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to read project file"), "path", p.filePath)
	}

	contents, err := pegparser.ParseReader(p.filePath, bytes.NewReader(data))
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to parse project file"), "path", p.filePath)
	}
	p.pbxContents = contents.(pegparser.Object)
	if err := p.initSections(); err != nil {
		return err
	}
	p.buildExistUuids()
	p.modified = false
	return nil
}

func (p *PbxProject) Dump(writer io.Writer) error {
	buffer := bytes.NewBuffer([]byte{})
	jsonEncoder := json.NewEncoder(buffer)
	jsonEncoder.SetEscapeHTML(false)
	jsonEncoder.SetIndent("", "  ")
	if err := jsonEncoder.Encode(p.Contents()); err != nil {
		return zerr.Wrap(err, "failed to encode project contents")
	}
	if _, err := writer.Write(buffer.Bytes()); err != nil {
		return zerr.Wrap(err, "failed to write project dump")
	}
	return nil
}

func (p *PbxProject) initSections() error {
	p.topProjectSection = p.pbxContents.GetObject("project")
	if !p.topProjectSection.Has("objects") {
		return zerr.With(zerr.Wrap(ErrMalformedProject, "missing objects dictionary"), "path", p.filePath)
	}
	p.pbxObjectSection = p.topProjectSection.GetObject("objects")
	p.pbxProjectSection = p.section("PBXProject")
	p.pbxGroupSection = p.section("PBXGroup")
	p.pbxBuildFileSection = p.section("PBXBuildFile")
	p.pbxXCBuildConfigurationSection = p.section("XCBuildConfiguration")
	p.pbxFileReferenceSection = p.section("PBXFileReference")
	p.pbxNativeTargetSection = p.section("PBXNativeTarget")
	return nil
}

// section returns the named objects section, attaching an empty one when
// the file has none so additions land in the document.
func (p *PbxProject) section(name string) pegparser.Object {
	if !p.pbxObjectSection.Has(name) {
		p.pbxObjectSection.Set(name, pegparser.NewObject())
	}
	return p.pbxObjectSection.GetObject(name)
}

var uuidPattern = regexp.MustCompile(`^[0-9A-Fa-f]{24}$`)

func (p *PbxProject) buildExistUuids() {
	uuids := make(map[string]struct{})
	p.pbxObjectSection.Foreach(func(_ string, v interface{}) pegparser.IterateActionType {
		fileSection, ok := v.(pegparser.Object)
		if !ok {
			return pegparser.IterateActionContinue
		}
		fileSection.ForeachWithFilter(func(key string, value interface{}) pegparser.IterateActionType {
			if uuidPattern.MatchString(key) {
				uuids[strings.ToUpper(key)] = struct{}{}
			}
			return pegparser.IterateActionContinue
		}, nonCommentsFilter)
		return pegparser.IterateActionContinue
	})

	p.uuids = uuids
}

func randomUuid() string {
	u, _ := uuid.NewV4()
	return strings.ToUpper(strings.ReplaceAll(u.String(), "-", "")[0:24])
}

func (p *PbxProject) generateUuid() string {
	for {
		newUUID := p.newUuid()
		if _, found := p.uuids[strings.ToUpper(newUUID)]; !found {
			p.uuids[strings.ToUpper(newUUID)] = struct{}{}
			return newUUID
		}
	}
}

// AddFramework makes sure a framework reference for filePath exists and is
// linked. It reports whether anything was added: a reference with the same
// path already present leaves the project untouched and returns false.
func (p *PbxProject) AddFramework(filePath string, options PbxFileOptions) (bool, error) {
	if p.pbxObjectSection.IsEmpty() {
		return false, ErrNotParsed
	}

	pbxfile := newPbxFile(filePath, options)
	if p.HasFile(pbxfile.Path) {
		return false, nil
	}

	targets, err := p.nativeTargets(options.Target)
	if err != nil {
		return false, err
	}
	group, err := p.frameworksPbxGroup()
	if err != nil {
		return false, err
	}

	pbxfile.FileRef = p.generateUuid()
	p.addToPbxFileReferenceSection(pbxfile) // PBXFileReference
	addToObjectList(group, "children", pbxGroupChild(pbxfile).ToObject())

	// one PBXBuildFile per target Frameworks phase
	for _, target := range targets {
		phase := p.frameworksBuildPhase(target)
		buildFile := *pbxfile
		buildFile.Uuid = p.generateUuid()
		p.addToPbxBuildFileSection(&buildFile)
		addToObjectList(phase, "files", pbxBuildPhaseObj(&buildFile))
	}

	if pbxfile.CustomFramework {
		p.addToFrameworkSearchPaths(pbxfile)
	}

	p.modified = true
	return true, nil
}

// HasFile reports whether a PBXFileReference with filePath exists. Quoted
// and unquoted spellings are treated the same.
func (p *PbxProject) HasFile(filePath string) bool {
	return p.fileReferenceKey(filePath) != ""
}

func (p *PbxProject) fileReferenceKey(filePath string) (fileRef string) {
	want := unquoted(filePath)
	p.pbxFileReferenceSection.ForeachWithFilter(func(key string, val interface{}) pegparser.IterateActionType {
		ref, ok := val.(pegparser.Object)
		if ok && unquoted(ref.GetString("path")) == want {
			fileRef = key
			return pegparser.IterateActionBreak
		}
		return pegparser.IterateActionContinue
	}, nonCommentsFilter)
	return
}

// helper addition functions
func (p *PbxProject) addToPbxBuildFileSection(pbxfile *PbxFile) {
	p.pbxBuildFileSection.Set(pbxfile.Uuid, pbxBuildFileObj(pbxfile))
	p.pbxBuildFileSection.Set(toCommentKey(pbxfile.Uuid), pbxBuildFileComment(pbxfile))
}

func (p *PbxProject) addToPbxFileReferenceSection(pbxfile *PbxFile) {
	p.pbxFileReferenceSection.Set(pbxfile.FileRef, newPbxFileReferenceObj(pbxfile))
	p.pbxFileReferenceSection.Set(toCommentKey(pbxfile.FileRef), pbxFileReferenceComment(pbxfile))
}

// frameworksPbxGroup returns the "Frameworks" group, creating it under the
// main group when the project has none.
func (p *PbxProject) frameworksPbxGroup() (pegparser.Object, error) {
	const name = "Frameworks"
	if group := p.pbxGroupByName(name); !group.IsEmpty() {
		return group, nil
	}

	mainGroup := p.pbxGroupSection.GetObject(p.getFirstProject().GetString("mainGroup"))
	if mainGroup.IsEmpty() {
		return pegparser.Object{}, zerr.With(zerr.Wrap(ErrMalformedProject, "main group not found"), "path", p.filePath)
	}

	groupUuid := p.generateUuid()
	group := pegparser.NewObjectWithData([]pegparser.SliceItem{
		pegparser.NewObjectItem("isa", "PBXGroup"),
		pegparser.NewObjectItem("children", []interface{}{}),
		pegparser.NewObjectItem("name", name),
		pegparser.NewObjectItem("sourceTree", DEFAULT_SOURCETREE),
	})
	p.pbxGroupSection.Set(groupUuid, group)
	p.pbxGroupSection.Set(toCommentKey(groupUuid), name)
	addToObjectList(mainGroup, "children", CommentValue{Value: groupUuid, Comment: name}.ToObject())
	p.modified = true
	return group, nil
}

func (p *PbxProject) pbxGroupByName(name string) (obj pegparser.Object) {
	obj = pegparser.NewObject()
	p.pbxGroupSection.ForeachWithFilter(func(key string, value interface{}) pegparser.IterateActionType {
		group, ok := value.(pegparser.Object)
		if !ok {
			return pegparser.IterateActionContinue
		}
		groupName := group.GetString("name")
		if groupName == "" {
			groupName = group.GetString("path")
		}
		if unquoted(groupName) == name {
			obj = group
			return pegparser.IterateActionBreak
		}
		return pegparser.IterateActionContinue
	}, nonCommentsFilter)
	return
}

// nativeTargets lists native targets in project order, or only the one
// named name when it is not empty.
func (p *PbxProject) nativeTargets(name string) ([]pegparser.ObjectWithUUID, error) {
	var targets []pegparser.ObjectWithUUID
	p.pbxNativeTargetSection.ForeachWithFilter(func(key string, value interface{}) pegparser.IterateActionType {
		target, ok := value.(pegparser.Object)
		if !ok {
			return pegparser.IterateActionContinue
		}
		if name == "" || unquoted(target.GetString("name")) == name {
			targets = append(targets, pegparser.ObjectWithUUID{Object: target, UUID: key})
		}
		return pegparser.IterateActionContinue
	}, nonCommentsFilter)

	if name != "" && len(targets) == 0 {
		return nil, zerr.With(ErrTargetNotFound, "target", name)
	}
	return targets, nil
}

// frameworksBuildPhase finds the PBXFrameworksBuildPhase of target, adding
// an empty one to the target when it has none.
func (p *PbxProject) frameworksBuildPhase(target pegparser.ObjectWithUUID) pegparser.Object {
	const isa = "PBXFrameworksBuildPhase"
	section := p.section(isa)
	for _, phase := range target.GetArray("buildPhases") {
		ref, ok := phase.(pegparser.Object)
		if !ok {
			continue
		}
		if obj := section.GetObject(ref.GetString("value")); !obj.IsEmpty() {
			return obj
		}
	}

	logger.Warn("target %s has no Frameworks build phase, adding one\n", unquoted(target.GetString("name")))
	phaseUuid := p.generateUuid()
	phase := pegparser.NewObjectWithData([]pegparser.SliceItem{
		pegparser.NewObjectItem("isa", isa),
		pegparser.NewObjectItem("buildActionMask", "2147483647"),
		pegparser.NewObjectItem("files", []interface{}{}),
		pegparser.NewObjectItem("runOnlyForDeploymentPostprocessing", "0"),
	})
	comment := buildPhaseNameForIsa(isa)
	section.Set(phaseUuid, phase)
	section.Set(toCommentKey(phaseUuid), comment)
	addToObjectList(target.Object, "buildPhases", CommentValue{Value: phaseUuid, Comment: comment}.ToObject())
	return phase
}

func (p *PbxProject) getFirstProject() pegparser.ObjectWithUUID {
	rootObject := p.topProjectSection.GetString("rootObject")
	if project := p.pbxProjectSection.GetObject(rootObject); !project.IsEmpty() {
		return pegparser.ObjectWithUUID{Object: project, UUID: rootObject}
	}

	first := pegparser.ObjectWithUUID{Object: pegparser.NewObject()}
	p.pbxProjectSection.ForeachWithFilter(func(key string, value interface{}) pegparser.IterateActionType {
		if project, ok := value.(pegparser.Object); ok {
			first = pegparser.ObjectWithUUID{Object: project, UUID: key}
			return pegparser.IterateActionBreak
		}
		return pegparser.IterateActionContinue
	}, nonCommentsFilter)
	return first
}

func (p *PbxProject) addToSearchPaths(searchPath string, pbxfile *PbxFile) {
	const INHERITED = `"$(inherited)"`
	productName := p.productName()
	newPath := p.searchPathForFile(pbxfile)

	p.pbxXCBuildConfigurationSection.ForeachWithFilter(func(key string, val interface{}) pegparser.IterateActionType {
		config, ok := val.(pegparser.Object)
		if !ok {
			return pegparser.IterateActionContinue
		}
		buildSettings := config.GetObject("buildSettings")
		if unquoted(buildSettings.GetString("PRODUCT_NAME")) != productName {
			return pegparser.IterateActionContinue
		}

		switch current := buildSettings.ForceGet(searchPath).(type) {
		case nil:
			buildSettings.Set(searchPath, []interface{}{INHERITED})
		case string:
			buildSettings.Set(searchPath, []interface{}{current})
		}

		addToObjectListOnlyNotExist(buildSettings, searchPath, newPath, func(v1, v2 interface{}) bool {
			s1, _ := v1.(string)
			s2, _ := v2.(string)
			return s1 == s2
		})
		return pegparser.IterateActionContinue
	}, nonCommentsFilter)
}

func (p *PbxProject) addToFrameworkSearchPaths(pbxfile *PbxFile) {
	p.addToSearchPaths("FRAMEWORK_SEARCH_PATHS", pbxfile)
}

func (p *PbxProject) productName() (name string) {
	p.pbxXCBuildConfigurationSection.ForeachWithFilter(func(key string, val interface{}) pegparser.IterateActionType {
		config, ok := val.(pegparser.Object)
		if !ok {
			return pegparser.IterateActionContinue
		}
		productName := config.GetObject("buildSettings").GetString("PRODUCT_NAME")
		if productName != "" {
			name = unquoted(productName)
			return pegparser.IterateActionBreak
		}
		return pegparser.IterateActionContinue
	}, nonCommentsFilter)
	return
}

func (p *PbxProject) searchPathForFile(pbxfile *PbxFile) string {
	if pbxfile.CustomFramework && pbxfile.Dirname != "" && pbxfile.Dirname != "." {
		return `"\"` + pbxfile.Dirname + `\""`
	}
	return `"\"$(SRCROOT)/` + p.productName() + `\""`
}

// helper object creation functions
func pbxBuildFileObj(pbxfile *PbxFile) pegparser.Object {
	obj := pegparser.NewObject()
	obj.Set("isa", "PBXBuildFile")
	obj.Set("fileRef", pbxfile.FileRef)
	obj.Set(toCommentKey("fileRef"), pbxFileReferenceComment(pbxfile))
	if !pbxfile.Settings.IsEmpty() {
		obj.Set("settings", pbxfile.Settings)
	}
	return obj
}

func newPbxFileReferenceObj(pbxfile *PbxFile) pegparser.Object {
	obj := pegparser.NewObject()
	obj.Set("isa", "PBXFileReference")
	if pbxfile.FileEncoding != 0 {
		obj.Set("fileEncoding", pbxfile.FileEncoding)
	}
	obj.Set("lastKnownFileType", quoted(pbxfile.LastKnownFileType))
	obj.Set("name", quoted(pbxfile.Basename))
	obj.Set("path", quoted(pbxfile.Path))
	obj.Set("sourceTree", quoted(pbxfile.SourceTree))
	return obj
}

func pbxGroupChild(pbxfile *PbxFile) CommentValue {
	return CommentValue{
		Value:   pbxfile.FileRef,
		Comment: pbxFileReferenceComment(pbxfile),
	}
}

func pbxBuildPhaseObj(pbxfile *PbxFile) pegparser.Object {
	return CommentValue{
		Value:   pbxfile.Uuid,
		Comment: longComment(pbxfile),
	}.ToObject()
}

func pbxBuildFileComment(pbxfile *PbxFile) string {
	return longComment(pbxfile)
}

func pbxFileReferenceComment(pbxfile *PbxFile) string {
	return pbxfile.Basename
}

func longComment(pbxfile *PbxFile) string {
	return fmt.Sprintf("%s in %s", pbxfile.Basename, pbxfile.Group)
}

func buildPhaseNameForIsa(isa string) string {
	switch isa {
	case "PBXCopyFilesBuildPhase":
		return "Copy Files"
	case "PBXResourcesBuildPhase":
		return "Resources"
	case "PBXSourcesBuildPhase":
		return "Sources"
	case "PBXFrameworksBuildPhase":
		return "Frameworks"
	default:
		return ""
	}
}
