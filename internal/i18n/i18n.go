package i18n

import (
	"fmt"
	"strings"

	"github.com/Eric920418/shoe-sub000/internal/constants"

	"github.com/gin-gonic/gin"
)

// ResolveLocale 按 query、上下文、Accept-Language 依次解析语言
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return constants.LocaleZhCN
	}
	if locale := normalizeLocale(c.Query("locale")); locale != "" {
		return locale
	}
	if value, ok := c.Get("locale"); ok {
		if locale, ok := value.(string); ok {
			if normalized := normalizeLocale(locale); normalized != "" {
				return normalized
			}
		}
	}
	header := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		lang := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if locale := normalizeLocale(lang); locale != "" {
			return locale
		}
	}
	return constants.LocaleZhCN
}

func normalizeLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return ""
	}
	lower := strings.ToLower(locale)
	switch {
	case strings.HasPrefix(lower, "zh"):
		return constants.LocaleZhCN
	case strings.HasPrefix(lower, "en"):
		return constants.LocaleEnUS
	}
	return ""
}

// Sprintf 翻译消息键并按参数格式化
func Sprintf(locale, key string, args ...interface{}) string {
	return T(locale, key, args...)
}

// T 按语言翻译消息键，未命中时回退 zh-CN，再回退键本身
func T(locale, key string, args ...interface{}) string {
	catalog, ok := catalogs[locale]
	if !ok {
		catalog = catalogs[constants.LocaleZhCN]
	}
	msg, ok := catalog[key]
	if !ok {
		if fallback, hit := catalogs[constants.LocaleZhCN][key]; hit {
			msg = fallback
		} else {
			msg = key
		}
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
