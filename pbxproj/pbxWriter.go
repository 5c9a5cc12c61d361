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
	"fmt"
	"sort"
	"strings"

	"github.com/countly/xcode-postprocessor/pegparser"
)

const (
	INDENT = "\t"
)

// PbxWriter serializes project contents in the Xcode 3.2 text layout.
type PbxWriter struct {
	buf         strings.Builder
	contents    pegparser.Object
	indentLevel int
}

func NewPbxWriter(project *PbxProject) *PbxWriter {
	return &PbxWriter{
		contents: project.Contents(),
	}
}

func indent(x int) string {
	if x <= 0 {
		return ""
	}
	return strings.Repeat(INDENT, x)
}

func getComment(key string, parent pegparser.Object) string {
	return parent.GetString(toCommentKey(key))
}

func (w *PbxWriter) writeFormatString(format string, str ...string) {
	w.buf.WriteString(fmt.Sprintf(format, stringToInterfaceSlice(str)...))
}

func (w *PbxWriter) write(format string, str ...string) {
	fmtStr := fmt.Sprintf(format, stringToInterfaceSlice(str)...)
	w.writeFormatString("%s%s", indent(w.indentLevel), fmtStr)
}

func (w *PbxWriter) writeNoIndent(format string, str ...string) {
	w.writeFormatString(format, str...)
}

// Bytes renders the whole document.
func (w *PbxWriter) Bytes() []byte {
	w.writeHeadComment()
	w.writeProject()
	return []byte(w.buf.String())
}

func (w *PbxWriter) writeHeadComment() {
	comment := w.contents.GetString("headComment")
	if comment != "" {
		w.writeNoIndent("// %s\n", comment)
	}
}

func (w *PbxWriter) writeProject() {
	proj := w.contents.GetObject("project")

	w.write("{\n")
	w.indentLevel++
	w.writeEntries(proj, true)
	w.indentLevel--
	w.write("}\n")
}

func (w *PbxWriter) writeObject(obj pegparser.Object) {
	w.writeEntries(obj, false)
}

func (w *PbxWriter) writeEntries(obj pegparser.Object, root bool) {
	obj.ForeachWithFilter(func(key string, val interface{}) pegparser.IterateActionType {
		cmt := getComment(key, obj)
		switch {
		case isArray(val):
			w.writeArray(toArray(val), key)
		case isObject(val):
			if cmt != "" {
				w.write("%s /* %s */ = {\n", key, cmt)
			} else {
				w.write("%s = {\n", key)
			}
			w.indentLevel++
			if root && key == "objects" {
				w.writeObjectsSections(toObject(val))
			} else {
				w.writeObject(toObject(val))
			}
			w.indentLevel--
			w.write("};\n")
		case isString(val) || isInt(val):
			str := scalarString(val)
			if cmt != "" {
				w.write("%s = %s /* %s */;\n", key, str, cmt)
			} else {
				w.write("%s = %s;\n", key, str)
			}
		}
		return pegparser.IterateActionContinue
	}, nonCommentsFilter)
}

// scalarString writes parsed strings back verbatim; values created by
// mutations are quoted when they are built.
func scalarString(val interface{}) string {
	if isInt(val) {
		return toIntString(val)
	}
	return toString(val)
}

// writeObjectsSections emits sections sorted by isa, the order Xcode uses,
// so sections created by mutations land where Xcode would put them.
func (w *PbxWriter) writeObjectsSections(obj pegparser.Object) {
	var names []string
	obj.Foreach(func(key string, val interface{}) pegparser.IterateActionType {
		if isObject(val) && !toObject(val).IsEmpty() {
			names = append(names, key)
		}
		return pegparser.IterateActionContinue
	})
	sort.Strings(names)

	for _, name := range names {
		w.writeNoIndent("\n")
		w.writeSectionComment(name, true)
		w.writeSection(obj.GetObject(name))
		w.writeSectionComment(name, false)
	}
}

func (w *PbxWriter) writeArray(arr []interface{}, name string) {
	w.write("%s = (\n", name)
	w.indentLevel++

	for _, obj := range arr {
		switch {
		case isObject(obj):
			val := toObject(obj)
			value := val.GetString("value")
			comment := val.GetString("comment")
			if value != "" && comment != "" {
				w.write("%s /* %s */,\n", value, comment)
			} else {
				w.write("{\n")
				w.indentLevel++
				w.writeObject(val)
				w.indentLevel--
				w.write("},\n")
			}
		case isString(obj) || isInt(obj):
			w.write("%s,\n", scalarString(obj))
		}
	}
	w.indentLevel--
	w.write(");\n")
}

func (w *PbxWriter) writeSectionComment(name string, begin bool) {
	if begin {
		w.writeNoIndent("/* Begin %s section */\n", name)
	} else { // end
		w.writeNoIndent("/* End %s section */\n", name)
	}
}

func (w *PbxWriter) writeSection(section pegparser.Object) {
	section.ForeachWithFilter(func(key string, val interface{}) pegparser.IterateActionType {
		cmt := getComment(key, section)
		if !isObject(val) {
			return pegparser.IterateActionContinue
		}
		obj := toObject(val)
		isa := obj.GetString("isa")
		if isa == "PBXBuildFile" || isa == "PBXFileReference" {
			w.writeInlineObject(key, cmt, obj)
			return pegparser.IterateActionContinue
		}

		if cmt != "" {
			w.write("%s /* %s */ = {\n", key, cmt)
		} else {
			w.write("%s = {\n", key)
		}
		w.indentLevel++
		w.writeObject(obj)
		w.indentLevel--
		w.write("};\n")
		return pegparser.IterateActionContinue
	}, nonCommentsFilter)
}

// inlineValue renders val the way Xcode does inside a one-line object.
func (w *PbxWriter) inlineValue(val interface{}) string {
	switch {
	case isArray(val):
		var b strings.Builder
		b.WriteString("(")
		for _, item := range toArray(val) {
			b.WriteString(w.inlineValue(item))
			b.WriteString(", ")
		}
		b.WriteString(")")
		return b.String()
	case isObject(val):
		obj := toObject(val)
		value := obj.GetString("value")
		comment := obj.GetString("comment")
		if value != "" && comment != "" {
			return fmt.Sprintf("%s /* %s */", value, comment)
		}
		var output []string
		w.writeInlineObjectHelp(&output, "", "", obj)
		return strings.Join(output, "")
	default:
		return scalarString(val)
	}
}

func (w *PbxWriter) writeInlineObjectHelp(buffer *[]string, name string, desc string, ref pegparser.Object) {
	output := *buffer
	switch {
	case name == "":
		output = append(output, "{")
	case desc != "":
		output = append(output, fmt.Sprintf("%s /* %s */ = {", name, desc))
	default:
		output = append(output, fmt.Sprintf("%s = {", name))
	}

	ref.ForeachWithFilter(func(key string, val interface{}) pegparser.IterateActionType {
		cmt := getComment(key, ref)
		if cmt != "" && !isObject(val) && !isArray(val) {
			output = append(output, fmt.Sprintf("%s = %s /* %s */; ", key, w.inlineValue(val), cmt))
		} else {
			output = append(output, fmt.Sprintf("%s = %s; ", key, w.inlineValue(val)))
		}
		return pegparser.IterateActionContinue
	}, nonCommentsFilter)

	output = append(output, "}")
	*buffer = output
}

func (w *PbxWriter) writeInlineObject(name string, desc string, ref pegparser.Object) {
	output := []string{}
	w.writeInlineObjectHelp(&output, name, desc, ref)
	w.write("%s;\n", strings.Join(output, ""))
}
