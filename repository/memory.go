package repository

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore 内存记录存储，用于mock模式和测试。
// 文档统一经过bson序列化往返，保证和MongoDB实现看到相同的字段形态。
type MemoryStore struct {
	mu    sync.RWMutex
	colls map[string]map[string]bson.M
}

// NewMemoryStore 创建空的内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		colls: make(map[string]map[string]bson.M),
	}
}

func (s *MemoryStore) coll(name string) map[string]bson.M {
	if s.colls[name] == nil {
		s.colls[name] = make(map[string]bson.M)
	}
	return s.colls[name]
}

// toDoc 将任意结构降为bson.M
func toDoc(doc interface{}) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("序列化文档失败: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("反序列化文档失败: %w", err)
	}
	return m, nil
}

// copyDoc 深拷贝文档。读路径只返回副本，
// 解码发生在锁外时不会和Update的原地写入相互干扰。
func copyDoc(m bson.M) bson.M {
	out := make(bson.M, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case bson.M:
		return copyDoc(t)
	case map[string]interface{}:
		return copyDoc(bson.M(t))
	case primitive.A:
		out := make(primitive.A, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}

// decodeDoc 将bson.M解码到目标结构
func decodeDoc(m bson.M, out interface{}) error {
	raw, err := bson.Marshal(m)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

// decodeDocs 将文档列表解码到*[]T
func decodeDocs(docs []bson.M, out interface{}) error {
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("out必须是切片指针，实际类型: %T", out)
	}
	sliceVal := v.Elem()
	elemType := sliceVal.Type().Elem()

	result := reflect.MakeSlice(sliceVal.Type(), 0, len(docs))
	for _, d := range docs {
		elem := reflect.New(elemType)
		if err := decodeDoc(d, elem.Interface()); err != nil {
			return err
		}
		result = reflect.Append(result, elem.Elem())
	}
	sliceVal.Set(result)
	return nil
}

// Create 插入一条记录，以uuid作为记录ID
func (s *MemoryStore) Create(ctx context.Context, collection string, doc interface{}) (string, error) {
	m, err := toDoc(doc)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	m["_id"] = id

	s.mu.Lock()
	defer s.mu.Unlock()
	s.coll(collection)[id] = m
	return id, nil
}

// Update 部分字段合并
func (s *MemoryStore) Update(ctx context.Context, collection, id string, set bson.M) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.coll(collection)[id]
	if !ok {
		return ErrNotFound
	}

	// set里的值同样做bson往返，保持类型形态一致
	norm, err := toDoc(set)
	if err != nil {
		return err
	}
	for k, v := range norm {
		doc[k] = v
	}
	return nil
}

// Delete 删除指定记录
func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.coll(collection)[id]; !ok {
		return ErrNotFound
	}
	delete(s.coll(collection), id)
	return nil
}

// GetOne 按ID取单条记录
func (s *MemoryStore) GetOne(ctx context.Context, collection, id string, out interface{}) error {
	s.mu.RLock()
	doc, ok := s.coll(collection)[id]
	if ok {
		doc = copyDoc(doc)
	}
	s.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	return decodeDoc(doc, out)
}

// GetFullList 取满足过滤条件的全部记录
func (s *MemoryStore) GetFullList(ctx context.Context, collection string, filter bson.M, sort string, out interface{}) error {
	docs := s.match(collection, filter)
	sortDocs(docs, sort)
	return decodeDocs(docs, out)
}

// GetList 分页查询
func (s *MemoryStore) GetList(ctx context.Context, collection string, filter bson.M, sort string, page, perPage int, out interface{}) (int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	docs := s.match(collection, filter)
	sortDocs(docs, sort)
	total := int64(len(docs))

	start := (page - 1) * perPage
	if start > len(docs) {
		start = len(docs)
	}
	end := start + perPage
	if end > len(docs) {
		end = len(docs)
	}

	if err := decodeDocs(docs[start:end], out); err != nil {
		return 0, err
	}
	return total, nil
}

// Count 统计满足条件的记录数
func (s *MemoryStore) Count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	return int64(len(s.match(collection, filter))), nil
}

// match 返回满足过滤条件的文档副本列表
func (s *MemoryStore) match(collection string, filter bson.M) []bson.M {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []bson.M
	for _, doc := range s.coll(collection) {
		if matchFilter(doc, filter) {
			docs = append(docs, copyDoc(doc))
		}
	}
	return docs
}

// matchFilter 评估bson.M过滤条件子集，顶层key之间为AND
func matchFilter(doc bson.M, filter bson.M) bool {
	if len(filter) == 0 {
		return true
	}

	for key, cond := range filter {
		if key == "$or" {
			if !matchOr(doc, cond) {
				return false
			}
			continue
		}

		value, exists := doc[key]
		switch c := cond.(type) {
		case bson.M:
			if !matchOperators(value, exists, c) {
				return false
			}
		default:
			if !exists || !valuesEqual(value, cond) {
				return false
			}
		}
	}
	return true
}

// matchOr $or分支，任一子条件满足即可
func matchOr(doc bson.M, cond interface{}) bool {
	var branches []bson.M
	switch v := cond.(type) {
	case []bson.M:
		branches = v
	case primitive.A:
		for _, b := range v {
			if m, ok := b.(bson.M); ok {
				branches = append(branches, m)
			}
		}
	}

	for _, branch := range branches {
		if matchFilter(doc, branch) {
			return true
		}
	}
	return false
}

// matchOperators 评估单个字段上的操作符条件
func matchOperators(value interface{}, exists bool, ops bson.M) bool {
	for op, arg := range ops {
		switch op {
		case "$exists":
			want, _ := arg.(bool)
			if exists != want {
				return false
			}
		case "$regex":
			pattern, _ := arg.(string)
			if opts, ok := ops["$options"].(string); ok && strings.Contains(opts, "i") {
				pattern = "(?i)" + pattern
			}
			str, ok := value.(string)
			if !ok {
				return false
			}
			re, err := regexp.Compile(pattern)
			if err != nil || !re.MatchString(str) {
				return false
			}
		case "$options":
			// 随$regex一起处理
		case "$ne":
			if exists && valuesEqual(value, arg) {
				return false
			}
		case "$in":
			if !exists || !inList(value, arg) {
				return false
			}
		case "$gte":
			if !exists || compareValues(value, arg) < 0 {
				return false
			}
		case "$lte":
			if !exists || compareValues(value, arg) > 0 {
				return false
			}
		case "$gt":
			if !exists || compareValues(value, arg) <= 0 {
				return false
			}
		case "$lt":
			if !exists || compareValues(value, arg) >= 0 {
				return false
			}
		default:
			// 不支持的操作符一律不匹配
			return false
		}
	}
	return true
}

// inList $in成员判断
func inList(value interface{}, arg interface{}) bool {
	rv := reflect.ValueOf(arg)
	if rv.Kind() != reflect.Slice {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if valuesEqual(value, rv.Index(i).Interface()) {
			return true
		}
	}
	return false
}

// valuesEqual 等值比较，数字按数值比较
func valuesEqual(a, b interface{}) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
		return false
	}
	// 时间在bson往返后是primitive.DateTime
	if at, aok := a.(primitive.DateTime); aok {
		if bt, bok := toDateTime(b); bok {
			return at == bt
		}
		return false
	}
	// 字符串类枚举（ContactStatus等）按底层字符串比较
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Kind() == reflect.String && bv.Kind() == reflect.String {
		return av.String() == bv.String()
	}
	return reflect.DeepEqual(a, b)
}

// compareValues 排序比较：-1/0/1
func compareValues(a, b interface{}) int {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	if at, aok := toDateTime(a); aok {
		if bt, bok := toDateTime(b); bok {
			switch {
			case at < bt:
				return -1
			case at > bt:
				return 1
			default:
				return 0
			}
		}
	}
	as := fmt.Sprintf("%v", a)
	bs := fmt.Sprintf("%v", b)
	return strings.Compare(as, bs)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// toDateTime 文档侧是bson往返后的primitive.DateTime，过滤条件侧是原生time.Time
func toDateTime(v interface{}) (primitive.DateTime, bool) {
	switch t := v.(type) {
	case primitive.DateTime:
		return t, true
	case time.Time:
		return primitive.NewDateTimeFromTime(t), true
	case *time.Time:
		if t != nil {
			return primitive.NewDateTimeFromTime(*t), true
		}
	}
	return 0, false
}

// sortDocs 按"-field"风格排序串排序
func sortDocs(docs []bson.M, sortKey string) {
	if sortKey == "" {
		return
	}
	desc := strings.HasPrefix(sortKey, "-")
	field := strings.TrimPrefix(sortKey, "-")

	sort.SliceStable(docs, func(i, j int) bool {
		cmp := compareValues(docs[i][field], docs[j][field])
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}
