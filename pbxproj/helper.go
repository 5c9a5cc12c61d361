package pbxproj

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/countly/xcode-postprocessor/pegparser"
)

func isObject(obj interface{}) bool {
	_, ok := obj.(pegparser.Object)
	return ok
}
func toObject(obj interface{}) pegparser.Object {
	return obj.(pegparser.Object)
}

func isArray(obj interface{}) bool {
	_, ok := obj.([]interface{})
	return ok
}

func toArray(obj interface{}) []interface{} {
	return obj.([]interface{})
}

func isString(obj interface{}) bool {
	_, ok := obj.(string)
	return ok
}
func toString(obj interface{}) string {
	return obj.(string)
}

func isInt(obj interface{}) bool {
	switch obj.(type) {
	case int, int8, int16, int32, int64:
		return true
	}
	return false
}
func toIntString(obj interface{}) string {
	switch obj.(type) {
	case int, int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(obj).Int(), 10)
	}

	return ""
}

func toCommentKey(key string) string {
	return pegparser.CommentKey(key)
}

func isCommentKey(key string) bool {
	return pegparser.IsCommentKey(key)
}

func nonCommentsFilter(key string, v interface{}) bool {
	return !onlyCommentsFilter(key, v)
}

func onlyCommentsFilter(key string, _ interface{}) bool {
	return isCommentKey(key)
}

func stringToInterfaceSlice(val []string) []interface{} {
	if val == nil {
		return nil
	}
	result := make([]interface{}, len(val))
	for i, v := range val {
		result[i] = v
	}
	return result
}

func addToObjectList(obj pegparser.Object, key string, val interface{}) {
	if obj.SliceMap == nil {
		return
	}
	list, _ := obj.ForceGet(key).([]interface{})
	obj.Set(key, append(list, val))
}

func addToObjectListOnlyNotExist(obj pegparser.Object, key string, val interface{}, equal func(v1, v2 interface{}) bool) bool {
	if obj.SliceMap == nil {
		return false
	}
	list, _ := obj.ForceGet(key).([]interface{})
	for _, v := range list {
		if equal(v, val) {
			return false
		}
	}
	obj.Set(key, append(list, val))
	return true
}

var unescapeReplacer = strings.NewReplacer(`\"`, `"`, `\\`, `\`)

func unquoted(text string) string {
	if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
		return unescapeReplacer.Replace(text[1 : len(text)-1])
	}
	return text
}

// quoted returns text the way Xcode would spell it: bare when every
// character is safe in an unquoted string, quoted and escaped otherwise.
// Already quoted text is returned as is.
func quoted(text string) string {
	if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
		return text
	}
	if text != "" && strings.IndexFunc(text, func(r rune) bool { return !isBareRune(r) }) < 0 {
		return text
	}
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(text) + `"`
}

func isBareRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("_$/:.", r)
}
