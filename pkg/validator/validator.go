package validator

import (
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/haierkeys/agent-scrum-service/pkg/util"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// CustomValidator 替换 gin 默认的 binding.Validator，懒加载 validator/v10
type CustomValidator struct {
	Once     sync.Once
	Validate *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{}
}

// ValidateStruct 实现 binding.StructValidator
func (v *CustomValidator) ValidateStruct(obj interface{}) error {
	if kindOfData(obj) != reflect.Struct {
		return nil
	}
	v.lazyinit()
	return v.Validate.Struct(obj)
}

// Engine 实现 binding.StructValidator
func (v *CustomValidator) Engine() interface{} {
	v.lazyinit()
	return v.Validate
}

func (v *CustomValidator) lazyinit() {
	v.Once.Do(func() {
		v.Validate = validator.New()
		v.Validate.SetTagName("binding")
	})
}

func kindOfData(data interface{}) reflect.Kind {
	value := reflect.ValueOf(data)
	valueType := value.Kind()

	if valueType == reflect.Ptr {
		valueType = value.Elem().Kind()
	}
	return valueType
}

// RegisterCustom 注册自定义校验规则
//
//	username: 字母、数字、下划线，长度 3-20
//	runemax=N: 按字符（而非字节）计算的最大长度
func RegisterCustom() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return util.IsValidUsername(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("runemax", func(fl validator.FieldLevel) bool {
		param := strings.TrimSpace(fl.Param())
		max := 0
		for _, r := range param {
			if r < '0' || r > '9' {
				return false
			}
			max = max*10 + int(r-'0')
		}
		return utf8.RuneCountInString(fl.Field().String()) <= max
	})
}

var _ binding.StructValidator = (*CustomValidator)(nil)
