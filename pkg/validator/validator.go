// Package validator provides the gin binding validator with custom tags
// Package validator 提供带自定义标签的 gin 绑定验证器
package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/haierkeys/menu-tree-service/pkg/util"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// CustomValidator implements binding.StructValidator
// CustomValidator 实现 binding.StructValidator
type CustomValidator struct {
	Once     sync.Once
	Validate *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

// ValidateStruct validates structs and pointers to structs, other kinds are ignored
// ValidateStruct 校验结构体及其指针，其他类型直接跳过
func (v *CustomValidator) ValidateStruct(obj interface{}) error {
	if obj == nil {
		return nil
	}
	value := reflect.ValueOf(obj)
	switch value.Kind() {
	case reflect.Ptr:
		if value.IsNil() {
			return nil
		}
		if value.Elem().Kind() != reflect.Struct {
			return nil
		}
	case reflect.Struct:
	default:
		return nil
	}

	v.lazyInit()
	return v.Validate.Struct(obj)
}

func (v *CustomValidator) Engine() interface{} {
	v.lazyInit()
	return v.Validate
}

func (v *CustomValidator) lazyInit() {
	v.Once.Do(func() {
		v.Validate = validator.New()
		v.Validate.SetTagName("binding")
	})
}

// Register registers custom tags on validate
// Register 在 validate 上注册自定义标签
//   - menuname: menu machine name, see util.IsValidMenuName // 菜单机器名
func Register(validate *validator.Validate) error {
	return validate.RegisterValidation("menuname", func(fl validator.FieldLevel) bool {
		return util.IsValidMenuName(fl.Field().String())
	})
}

// Init installs CustomValidator as the gin binding validator with custom tags,
// json field names in messages, and en/zh translations
// Init 将 CustomValidator 设为 gin 绑定验证器，注册自定义标签、json 字段名与中英文翻译
func Init() (*ut.UniversalTranslator, error) {
	customValidator := NewCustomValidator()
	binding.Validator = customValidator

	validate := customValidator.Engine().(*validator.Validate)
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := Register(validate); err != nil {
		return nil, err
	}

	uni := ut.New(en.New(), en.New(), zh.New())

	zhTran, _ := uni.GetTranslator("zh")
	enTran, _ := uni.GetTranslator("en")

	if err := zh_translations.RegisterDefaultTranslations(validate, zhTran); err != nil {
		return nil, err
	}
	if err := en_translations.RegisterDefaultTranslations(validate, enTran); err != nil {
		return nil, err
	}

	return uni, nil
}
