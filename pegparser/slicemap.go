package pegparser

type SliceItem struct {
	key  interface{}
	data interface{}
}

func (item *SliceItem) Key() interface{} {
	return item.key
}

func (item *SliceItem) Data() interface{} {
	return item.data
}

// SliceMap is a map that remembers insertion order. Re-setting an existing
// key keeps its position.
type SliceMap struct {
	mp map[interface{}]int
	sl []*SliceItem
}

func NewSliceMap() *SliceMap {
	return &SliceMap{
		mp: make(map[interface{}]int),
		sl: make([]*SliceItem, 0),
	}
}

func (m *SliceMap) ForceGet(key interface{}) interface{} {
	v, _ := m.Get(key)
	return v
}

func (m *SliceMap) Get(key interface{}) (interface{}, bool) {
	idx, found := m.mp[key]
	if !found {
		return nil, false
	}
	return m.sl[idx].data, true
}

func (m *SliceMap) Set(key, v interface{}) {
	if idx, found := m.mp[key]; found {
		m.sl[idx] = &SliceItem{key: key, data: v}
		return
	}
	m.sl = append(m.sl, &SliceItem{key: key, data: v})
	m.mp[key] = len(m.sl) - 1
}

func (m *SliceMap) Has(key interface{}) bool {
	_, found := m.mp[key]
	return found
}

func (m *SliceMap) Size() int {
	return len(m.sl)
}

func (m *SliceMap) Items() []*SliceItem {
	return m.sl
}
