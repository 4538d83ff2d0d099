package rule

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yeisme/casefile/pkg/internal/model"
)

// 文档领域规则：
//
//	doc_category    合法分类
//	doc_domain      合法业务域
//	doc_status      合法状态
//	signature_type  合法签名方式
//	access_role     合法最低角色（空值合法）
//	doc_filter      列表过滤值，额外接受 all / Todos
func registerDocumentRules(v *validator.Validate) {
	rules := map[string]func(string) bool{
		"doc_category":   func(s string) bool { return model.Category(s).Valid() },
		"doc_domain":     func(s string) bool { return model.Domain(s).Valid() },
		"doc_status":     func(s string) bool { return model.Status(s).Valid() },
		"signature_type": func(s string) bool { return model.SignatureType(s).Valid() },
		"access_role":    func(s string) bool { return model.AccessRole(s).Valid() },
	}

	for tag, ok := range rules {
		_ = v.RegisterValidation(tag, stringRule(ok))
	}

	_ = v.RegisterValidation("doc_filter", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		if s == "" || strings.EqualFold(s, "all") || strings.EqualFold(s, "todos") {
			return true
		}

		return model.Category(s).Valid() || model.Domain(s).Valid() || model.Status(s).Valid()
	})
}

func stringRule(ok func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return ok(fl.Field().String())
	}
}

// Messages 将校验错误转为 字段 -> 规则 的映射，便于接口返回.
func Messages(err error) ValidationErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(ValidationErrors, len(verrs))
	for _, fe := range verrs {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}

		out[fe.Field()] = msg
	}

	return out
}
