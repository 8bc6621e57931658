// Package validator wires go-playground/validator into Gin binding with
// English messages keyed by JSON field names, so a failed exam-creation or
// login payload comes back as {"duration_minutes": "duration_minutes must
// be 1 or greater"} rather than Go struct paths.
package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// trans translates validator errors to English. Set once by Setup.
var trans ut.Translator

// Setup hooks the translator into Gin's binding engine. Call once at
// startup, before any route handles traffic.
func Setup() {
	v, ok := binding.Validator.Engine().(*govalidator.Validate)
	if !ok {
		return
	}

	// Report JSON tag names, not Go field names.
	v.RegisterTagNameFunc(jsonFieldName)

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	en_translations.RegisterDefaultTranslations(v, trans)
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// Bind decodes the JSON body into dst and validates it. On success it
// returns nil; on failure, a field -> message map ready for
// response.FailWithFields.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// TranslateErrors flattens a binding error into field messages. Errors
// that are not validation failures (malformed JSON, wrong types) come back
// under the single key "body".
func TranslateErrors(err error) map[string]string {
	var ve govalidator.ValidationErrors
	if !errors.As(err, &ve) {
		return map[string]string{"body": err.Error()}
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Translate(trans)
	}
	return fields
}
