package pgraster

import (
	"strconv"
	"strings"
)

// QuoteIdent 双引号包裹标识符，内部双引号翻倍
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// QuoteTable 表名加引号，支持schema.table形式
func QuoteTable(name string) string {
	if i := strings.Index(name, "."); i >= 0 {
		return QuoteIdent(name[:i]) + "." + QuoteIdent(name[i+1:])
	}
	return QuoteIdent(name)
}

// QuoteLiteral 单引号包裹字符串字面量，内部单引号翻倍
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// LiteralOrNull nil输出SQL关键字NULL，非nil按字面量处理。
// 字符串"NULL"仍会被引号包裹，与SQL NULL严格区分
func LiteralOrNull(s *string) string {
	if s == nil {
		return "NULL"
	}
	return QuoteLiteral(*s)
}

// FormatFloat 以最短完整精度序列化浮点值
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// TextArrayLiteral 构造text[]数组表达式
func TextArrayLiteral(items []string) string {
	if len(items) == 0 {
		return "ARRAY[]::text[]"
	}
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = QuoteLiteral(item)
	}
	return "ARRAY[" + strings.Join(quoted, ",") + "]::text[]"
}

// splitTable 拆分schema限定的表名，无schema时返回空串
func splitTable(name string) (schema, table string) {
	if i := strings.Index(name, "."); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}
