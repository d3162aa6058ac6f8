// ABOUTME: On-disk record format, field merging, and query ordering.
// ABOUTME: Records are JSON with create/update times and raw field values.

package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

type record struct {
	CreateTime time.Time                  `json:"createTime"`
	UpdateTime time.Time                  `json:"updateTime"`
	Fields     map[string]json.RawMessage `json:"fields"`
}

func decodeRecord(key string, data []byte) (*Document, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", key, err)
	}
	if rec.Fields == nil {
		rec.Fields = map[string]json.RawMessage{}
	}
	_, id := Parent(key)
	return &Document{
		ID:         id,
		Path:       key,
		CreateTime: rec.CreateTime,
		UpdateTime: rec.UpdateTime,
		Fields:     rec.Fields,
	}, nil
}

func encodeRecord(doc *Document) ([]byte, error) {
	return json.Marshal(record{
		CreateTime: doc.CreateTime,
		UpdateTime: doc.UpdateTime,
		Fields:     doc.Fields,
	})
}

// mergeFields applies fields onto dst, resolving sentinels against now.
func mergeFields(dst map[string]json.RawMessage, fields Fields, now time.Time) error {
	for name, value := range fields {
		if name == "" || strings.Contains(name, "/") {
			return fmt.Errorf("%w: field name %q", ErrInvalidPath, name)
		}
		switch value {
		case DeleteField:
			delete(dst, name)
			continue
		case ServerTimestamp:
			value = now
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode field %s: %w", name, err)
		}
		dst[name] = raw
	}
	return nil
}

func sortDocuments(docs []*Document, q Query) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i], docs[j]
		if q.OrderBy != "" {
			c := compareRaw(a.Fields[q.OrderBy], b.Fields[q.OrderBy])
			if q.Direction == Desc {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		if !a.CreateTime.Equal(b.CreateTime) {
			return a.CreateTime.Before(b.CreateTime)
		}
		return a.ID < b.ID
	})
}

// Value ranks for mixed-type ordering: missing < bool < number < time < string.
const (
	rankMissing = iota
	rankBool
	rankNumber
	rankTime
	rankString
)

type sortValue struct {
	rank int
	b    bool
	n    float64
	t    time.Time
	s    string
}

func parseSortValue(raw json.RawMessage) sortValue {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return sortValue{rank: rankMissing}
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return sortValue{rank: rankMissing}
	}
	switch x := v.(type) {
	case bool:
		return sortValue{rank: rankBool, b: x}
	case float64:
		return sortValue{rank: rankNumber, n: x}
	case string:
		if t, err := time.Parse(time.RFC3339Nano, x); err == nil {
			return sortValue{rank: rankTime, t: t}
		}
		return sortValue{rank: rankString, s: x}
	default:
		// Objects and arrays order by their encoding.
		return sortValue{rank: rankString, s: string(raw)}
	}
}

func compareRaw(a, b json.RawMessage) int {
	va, vb := parseSortValue(a), parseSortValue(b)
	if va.rank != vb.rank {
		if va.rank < vb.rank {
			return -1
		}
		return 1
	}
	switch va.rank {
	case rankBool:
		switch {
		case va.b == vb.b:
			return 0
		case !va.b:
			return -1
		default:
			return 1
		}
	case rankNumber:
		switch {
		case va.n < vb.n:
			return -1
		case va.n > vb.n:
			return 1
		}
	case rankTime:
		return va.t.Compare(vb.t)
	case rankString:
		return strings.Compare(va.s, vb.s)
	}
	return 0
}
