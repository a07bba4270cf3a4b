package util

import (
	"regexp"
)

// MenuNameMaxLength maximum length of a menu machine name
// MenuNameMaxLength 菜单机器名最大长度
const MenuNameMaxLength = 32

var menuNamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// IsValidMenuName verifies a menu machine name: lowercase letters, digits, hyphens and underscores, at most 32 characters
// IsValidMenuName 验证菜单机器名：小写字母、数字、连字符和下划线，最长 32 个字符
func IsValidMenuName(name string) bool {
	return name != "" && len(name) <= MenuNameMaxLength && menuNamePattern.MatchString(name)
}

// IsExternalURL reports whether uri starts with an http(s) scheme
// IsExternalURL 判断 uri 是否以 http(s) 协议开头
func IsExternalURL(uri string) bool {
	return externalURLPattern.MatchString(uri)
}

var externalURLPattern = regexp.MustCompile(`^(?i)https?://`)
