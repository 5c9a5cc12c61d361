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
	"github.com/google/renameio/v2"
	cp "github.com/otiai10/copy"
	"go.trai.ch/zerr"
	"howett.net/plist"
)

// SaveFormat names an on-disk project layout.
type SaveFormat string

// Format3_2 is the commented, sectioned text layout introduced with
// Xcode 3.2 and still read by every later version.
const Format3_2 SaveFormat = "3.2"

const backupTimeLayout = "020106-150405"

var (
	// ErrUnsupportedFormat is returned by Save for formats other than Format3_2.
	ErrUnsupportedFormat = zerr.New("unsupported save format")

	// ErrInvalidOutput is returned when the serialized project is not a readable property list.
	ErrInvalidOutput = zerr.New("serialized project is not a valid property list")
)

// ParseSaveFormat validates a configured format name.
func ParseSaveFormat(name string) (SaveFormat, error) {
	if SaveFormat(name) != Format3_2 {
		return "", zerr.With(ErrUnsupportedFormat, "format", name)
	}
	return Format3_2, nil
}

// Backup copies the project file as it is on disk to
// <path>.<ddmmyy-HHMMSS>.backup next to it, keeping its mode and
// modification time, and returns the copy's path.
func (p *PbxProject) Backup() (string, error) {
	backupPath := p.filePath + "." + p.now().Format(backupTimeLayout) + ".backup"

	if err := cp.Copy(p.filePath, backupPath, cp.Options{PreserveTimes: true}); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to back up project file"), "path", backupPath)
	}
	return backupPath, nil
}

// Save serializes the project in format and replaces the file on disk. The
// new contents go to a temporary file in the same directory first, so a
// failure never leaves a truncated project behind.
func (p *PbxProject) Save(format SaveFormat) error {
	if format != Format3_2 {
		return zerr.With(ErrUnsupportedFormat, "format", string(format))
	}
	if p.pbxContents.IsEmpty() {
		return ErrNotParsed
	}

	data := NewPbxWriter(p).Bytes()
	if p.verifyOutput {
		if err := verifyPropertyList(data); err != nil {
			return zerr.With(err, "path", p.filePath)
		}
	}

	if err := writeFileAtomic(p.filePath, data); err != nil {
		return err
	}
	p.modified = false
	return nil
}

func verifyPropertyList(data []byte) error {
	var doc map[string]interface{}
	format, err := plist.Unmarshal(data, &doc)
	if err != nil {
		return zerr.Wrap(err, ErrInvalidOutput.Error())
	}
	if format != plist.OpenStepFormat && format != plist.GNUStepFormat {
		return zerr.With(ErrInvalidOutput, "format", plist.FormatNames[format])
	}
	if _, ok := doc["objects"].(map[string]interface{}); !ok {
		return zerr.Wrap(ErrInvalidOutput, "missing objects dictionary")
	}
	return nil
}

// writeFileAtomic replaces filePath through a rename, keeping the mode of
// the file it replaces.
func writeFileAtomic(filePath string, data []byte) error {
	if err := renameio.WriteFile(filePath, data, 0644, renameio.WithExistingPermissions()); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to replace project file"), "path", filePath)
	}
	return nil
}
