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
	"path"
	"strings"

	"github.com/countly/xcode-postprocessor/pegparser"
)

const (
	DEFAULT_SOURCETREE = "\"<group>\""
	DEFAULT_GROUP      = "Resources"
	DEFAULT_FILETYPE   = "unknown"
	SDKROOT_SOURCETREE = "SDKROOT"
)

var FILETYPE_BY_EXTENSION = map[string]string{
	"a":           "archive.ar",
	"app":         "wrapper.application",
	"appex":       "wrapper.app-extension",
	"bundle":      "wrapper.plug-in",
	"dylib":       "compiled.mach-o.dylib",
	"framework":   "wrapper.framework",
	"h":           "sourcecode.c.h",
	"m":           "sourcecode.c.objc",
	"mm":          "sourcecode.cpp.objcpp",
	"markdown":    "text",
	"pch":         "sourcecode.c.h",
	"plist":       "text.plist.xml",
	"sh":          "text.script.sh",
	"swift":       "sourcecode.swift",
	"tbd":         "sourcecode.text-based-dylib-definition",
	"xcassets":    "folder.assetcatalog",
	"xcconfig":    "text.xcconfig",
	"xcframework": "wrapper.xcframework",
	"xib":         "file.xib",
	"strings":     "text.plist.strings",
}

var GROUP_BY_FILETYPE = map[string]string{
	"archive.ar":                             "Frameworks",
	"compiled.mach-o.dylib":                  "Frameworks",
	"sourcecode.text-based-dylib-definition": "Frameworks",
	"wrapper.framework":                      "Frameworks",
	"wrapper.xcframework":                    "Frameworks",
	"sourcecode.c.h":                         "Resources",
	"sourcecode.c.objc":                      "Sources",
	"sourcecode.cpp.objcpp":                  "Sources",
	"sourcecode.swift":                       "Sources",
}

var PATH_BY_FILETYPE = map[string]string{
	"compiled.mach-o.dylib":                  "usr/lib/",
	"sourcecode.text-based-dylib-definition": "usr/lib/",
	"wrapper.framework":                      "System/Library/Frameworks/",
}

var SOURCETREE_BY_FILETYPE = map[string]string{
	"compiled.mach-o.dylib":                  SDKROOT_SOURCETREE,
	"sourcecode.text-based-dylib-definition": SDKROOT_SOURCETREE,
	"wrapper.framework":                      SDKROOT_SOURCETREE,
}

const DEFAULT_ENCODING_VALUE = 4

var ENCODING_BY_FILETYPE = map[string]int{
	"sourcecode.c.h":        DEFAULT_ENCODING_VALUE,
	"sourcecode.c.objc":     DEFAULT_ENCODING_VALUE,
	"sourcecode.cpp.objcpp": DEFAULT_ENCODING_VALUE,
	"sourcecode.swift":      DEFAULT_ENCODING_VALUE,
	"text":                  DEFAULT_ENCODING_VALUE,
	"text.plist.xml":        DEFAULT_ENCODING_VALUE,
	"text.script.sh":        DEFAULT_ENCODING_VALUE,
	"text.xcconfig":         DEFAULT_ENCODING_VALUE,
	"text.plist.strings":    DEFAULT_ENCODING_VALUE,
}

// PbxFileOptions tunes how a file reference is created.
type PbxFileOptions struct {
	// LastKnownFileType overrides the type guessed from the extension.
	LastKnownFileType string
	// CustomFramework marks a framework shipped inside the project rather
	// than the SDK: its path is kept relative to the group and its directory
	// is added to FRAMEWORK_SEARCH_PATHS.
	CustomFramework bool
	// SourceTree overrides the guessed source tree, e.g. SDKROOT.
	SourceTree string
	// Weak links the framework optionally.
	Weak bool
	// Target restricts linking to the native target with that name. Empty
	// means every native target.
	Target string
}

type PbxFile struct {
	Basename          string
	FileRef           string
	LastKnownFileType string
	Group             string
	CustomFramework   bool
	Dirname           string
	Path              string
	FileEncoding      int
	SourceTree        string
	Settings          pegparser.Object
	Uuid              string
}

func newPbxFile(filePath string, options PbxFileOptions) *PbxFile {
	filePath = path.Clean(strings.ReplaceAll(filePath, `\`, "/"))
	pbxfile := PbxFile{
		Basename: path.Base(filePath),
	}
	if options.LastKnownFileType != "" {
		pbxfile.LastKnownFileType = options.LastKnownFileType
	} else {
		pbxfile.LastKnownFileType = detectType(filePath)
	}
	// for custom frameworks
	if options.CustomFramework {
		pbxfile.CustomFramework = true
		pbxfile.Dirname = path.Dir(filePath)
	}

	pbxfile.FileEncoding = ENCODING_BY_FILETYPE[unquoted(pbxfile.LastKnownFileType)]
	pbxfile.Group = pbxfile.detectGroup()
	pbxfile.Path = pbxfile.defaultPath(filePath)

	if options.SourceTree != "" {
		pbxfile.SourceTree = options.SourceTree
	} else {
		pbxfile.SourceTree = pbxfile.detectSourcetree()
	}

	if options.Weak {
		pbxfile.Settings = pegparser.NewObject()
		addToObjectList(pbxfile.Settings, "ATTRIBUTES", "Weak")
	}
	return &pbxfile
}

func detectType(filePath string) string {
	extension := strings.TrimPrefix(path.Ext(filePath), ".")
	filetype, found := FILETYPE_BY_EXTENSION[unquoted(extension)]
	if !found {
		return DEFAULT_FILETYPE
	}
	return filetype
}

func (pbxfile *PbxFile) detectGroup() string {
	groupName, ok := GROUP_BY_FILETYPE[unquoted(pbxfile.LastKnownFileType)]
	if !ok {
		groupName = DEFAULT_GROUP
	}
	return groupName
}

func (pbxfile *PbxFile) detectSourcetree() string {
	if pbxfile.CustomFramework {
		return DEFAULT_SOURCETREE
	}

	sourcetree, ok := SOURCETREE_BY_FILETYPE[unquoted(pbxfile.LastKnownFileType)]
	if !ok {
		sourcetree = DEFAULT_SOURCETREE
	}
	return sourcetree
}

// defaultPath places bare SDK names like "CoreTelephony.framework" under
// the SDK directory for their type. Paths with a directory are kept.
func (pbxfile *PbxFile) defaultPath(filePath string) string {
	if pbxfile.CustomFramework || strings.Contains(filePath, "/") {
		return filePath
	}

	defaultPath, ok := PATH_BY_FILETYPE[unquoted(pbxfile.LastKnownFileType)]
	if !ok {
		return filePath
	}
	return path.Join(defaultPath, pbxfile.Basename)
}
