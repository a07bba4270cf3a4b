package code

import (
	"errors"
	"reflect"
)

// lang type, used to store English and Chinese text
// lang 类型，用来存储英文和中文文本
type lang struct {
	en    string // English // 英文
	zh_cn string // Chinese // 中文
}

// Default language is English // 默认语言为英文
var lng = "en"

const FALLBACK_LNG = "en"

// GetMessage returns the message in the global language, falling back to English.
// GetMessage 根据全局语言返回消息，缺失时回退到英文
func (l lang) GetMessage() string {
	val := reflect.ValueOf(l)
	if field := val.FieldByName(lng); field.IsValid() && field.String() != "" {
		return field.String()
	}
	return val.FieldByName(FALLBACK_LNG).String()
}

// GetSupportedLanguages returns the field names of lang.
// GetSupportedLanguages 返回 lang 支持的语言
func GetSupportedLanguages() []string {
	typ := reflect.TypeOf(lang{})
	languages := make([]string, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		languages = append(languages, typ.Field(i).Name)
	}
	return languages
}

// SetGlobalDefaultLang sets the global default language
// 设置全局默认语言
func SetGlobalDefaultLang(language string) error {
	for _, l := range GetSupportedLanguages() {
		if language == l {
			lng = language
			return nil
		}
	}
	lng = FALLBACK_LNG
	return errors.New("unsupported language type, set defaulting to " + FALLBACK_LNG)
}

// GetGlobalDefaultLang gets the global default language
// 获取全局默认语言
func GetGlobalDefaultLang() string {
	return lng
}
