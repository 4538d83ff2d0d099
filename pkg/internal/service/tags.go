package service

import (
	"strings"

	"github.com/bytedance/sonic"
)

// Tags 标签输入，JSON 中既可以是数组也可以是以 , ; 或换行分隔的文本.
type Tags []string

// UnmarshalJSON 接受字符串或字符串数组，结果已规范化.
func (t *Tags) UnmarshalJSON(b []byte) error {
	var list []string
	if err := sonic.Unmarshal(b, &list); err == nil {
		*t = NormalizeTags(list...)
		return nil
	}

	var text string
	if err := sonic.Unmarshal(b, &text); err != nil {
		return err
	}

	*t = NormalizeTags(text)

	return nil
}

// NormalizeTags 拆分、去空白、去重（保留首次出现顺序）并丢弃空项.
func NormalizeTags(raw ...string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, r := range raw {
		parts := strings.FieldsFunc(r, func(c rune) bool {
			return c == ',' || c == ';' || c == '\n' || c == '\r'
		})

		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}

			if _, ok := seen[p]; ok {
				continue
			}

			seen[p] = struct{}{}
			out = append(out, p)
		}
	}

	return out
}
