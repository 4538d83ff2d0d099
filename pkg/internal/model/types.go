package model

import (
	"database/sql/driver"
	"fmt"

	"github.com/bytedance/sonic"
)

// StringList 以 JSON 数组文本落库的字符串列表.
type StringList []string

// Value 实现 driver.Valuer，nil 存为 "[]".
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}

	b, err := sonic.Marshal([]string(s))
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

// Scan 实现 sql.Scanner.
func (s *StringList) Scan(src any) error {
	b, err := scanBytes(src)
	if err != nil || len(b) == 0 {
		*s = StringList{}
		return err
	}

	var out []string
	if err := sonic.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}

	*s = out

	return nil
}

// Contains 判断是否包含 tag.
func (s StringList) Contains(tag string) bool {
	for _, v := range s {
		if v == tag {
			return true
		}
	}

	return false
}

// JSONMap 以 JSON 对象文本落库的详情字段.
type JSONMap map[string]any

// Value 实现 driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}

	b, err := sonic.Marshal(map[string]any(m))
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

// Scan 实现 sql.Scanner.
func (m *JSONMap) Scan(src any) error {
	b, err := scanBytes(src)
	if err != nil || len(b) == 0 {
		*m = JSONMap{}
		return err
	}

	out := map[string]any{}
	if err := sonic.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("scan json map: %w", err)
	}

	*m = out

	return nil
}

func scanBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", src)
	}
}
