package logger

import (
	"strings"
)

// MaskToken 脱敏token字符串
// 规则:
//   - 空字符串返回空
//   - 长度<8: 返回 "***"
//   - 长度>=8: 保留前4后4,中间用星号替换
func MaskToken(token string) string {
	if token == "" {
		return ""
	}

	length := len(token)
	if length < 8 {
		return "***"
	}

	// 保留前4位和后4位
	maskedLength := length - 8
	return token[:4] + strings.Repeat("*", maskedLength) + token[length-4:]
}

// sensitiveKeys 需要脱敏的字段关键字
// cookie相关字段会携带平台登录凭证(下载器通过cookies文件访问需登录的平台)
var sensitiveKeys = []string{
	"token",
	"password",
	"passwd",
	"pwd",
	"secret",
	"api_key",
	"apikey",
	"api-key",
	"authorization",
	"auth",
	"cookie",
	"cookies",
}

// IsSensitiveKey 判断键名是否为敏感字段
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, sk := range sensitiveKeys {
		if strings.Contains(keyLower, sk) {
			return true
		}
	}
	return false
}

// SanitizeValue 智能脱敏:根据键名判断是否需要脱敏
func SanitizeValue(key string, value interface{}) interface{} {
	if !IsSensitiveKey(key) {
		return value
	}

	// 字符串类型使用MaskToken脱敏,其他类型统一返回掩码
	if strVal, ok := value.(string); ok {
		return MaskToken(strVal)
	}
	return "***MASKED***"
}

// SanitizeArgs 批量脱敏slog日志参数
// slog使用键值对格式: key1, value1, key2, value2, ...
// 此函数会检查每个key,如果是敏感字段则脱敏对应的value
func SanitizeArgs(args ...any) []any {
	if len(args) == 0 {
		return args
	}

	result := make([]any, len(args))

	for i := 0; i < len(args); i += 2 {
		result[i] = args[i]

		if i+1 < len(args) {
			if key, ok := args[i].(string); ok {
				result[i+1] = SanitizeValue(key, args[i+1])
			} else {
				result[i+1] = args[i+1]
			}
		}
	}

	return result
}
