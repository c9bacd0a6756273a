package utils

import (
	"net/url"
	"strings"
)

// DefaultAvatar 用户未设置头像时按种子生成一个
func DefaultAvatar(seed string) string {
	return "https://api.dicebear.com/7.x/avataaars/svg?seed=" + url.QueryEscape(seed)
}

// AvatarOr returns avatar when set, otherwise a generated one for seed.
func AvatarOr(avatar, seed string) string {
	if strings.TrimSpace(avatar) != "" {
		return avatar
	}
	return DefaultAvatar(seed)
}
