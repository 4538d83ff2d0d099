// Package rule 封装 go-playground/validator，结构体使用 rule 标签声明校验规则.
// gin 的绑定校验与业务代码共用同一个引擎，文档相关的自定义规则在初始化时注册.
package rule

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const tagName = "rule"

var (
	inst *validator.Validate
	once sync.Once
)

// get 返回全局引擎，首次调用时优先接管 gin 的引擎.
func get() *validator.Validate {
	once.Do(func() {
		inst = validator.New()
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok && v != nil {
			inst = v
		}

		inst.SetTagName(tagName)
		registerDocumentRules(inst)
	})

	return inst
}

// Engine 返回全局 *validator.Validate.
func Engine() *validator.Validate { return get() }

// RegisterValidation 注册自定义规则.
func RegisterValidation(tag string, fn validator.Func, opts ...bool) error {
	return get().RegisterValidation(tag, fn, opts...)
}

// RegisterAlias 注册规则别名，如 RegisterAlias("doc_title", "required,max=255").
func RegisterAlias(alias, rules string) {
	get().RegisterAlias(alias, rules)
}

// ValidationErrors 字段名到失败规则的映射，见 Messages.
type ValidationErrors map[string]string

// ValidateStruct 按 rule 标签校验结构体，返回原始错误.
func ValidateStruct(s any) error {
	return get().Struct(s)
}

// ValidateVar 按规则校验单个值，例如 ValidateVar(category, "doc_category").
func ValidateVar(field any, tag string) error {
	return get().Var(field, tag)
}
