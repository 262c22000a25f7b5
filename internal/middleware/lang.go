package middleware

import (
	"strings"

	"github.com/haierkeys/agent-scrum-service/pkg/app"
	"github.com/haierkeys/agent-scrum-service/pkg/code"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// LangWithTranslator 创建带翻译器的语言中间件（支持依赖注入）
// 语言只写入当前请求的上下文，不修改全局默认语言
func LangWithTranslator(uni *ut.UniversalTranslator) gin.HandlerFunc {

	return func(c *gin.Context) {

		var lang string

		if s, exist := c.GetQuery("lang"); exist {
			lang = s
		} else if s = c.GetHeader("lang"); len(s) != 0 {
			lang = s
		} else if s = c.GetHeader("Accept-Language"); len(s) != 0 {
			lang = strings.Split(strings.Split(s, ",")[0], ";")[0]
		}

		lang = strings.ToLower(strings.TrimSpace(strings.ReplaceAll(lang, "-", "_")))

		// 翻译器使用 zh，错误码消息使用 zh_cn
		transLang, codeLang := "en", "en"
		if lang == "zh" || strings.HasPrefix(lang, "zh_") {
			transLang, codeLang = "zh", "zh_cn"
		} else if !code.IsSupportedLanguage(lang) {
			codeLang = code.GetGlobalDefaultLang()
		}

		trans, found := uni.GetTranslator(transLang)
		if !found {
			trans, _ = uni.GetTranslator("en")
		}

		c.Set(app.TransKey, trans)
		c.Set(app.LangKey, codeLang)

		c.Next()
	}
}
