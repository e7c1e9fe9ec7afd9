package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"querywise/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// DateLayout 是 fecha 唯一接受的格式。
const DateLayout = "2006-01-02"

// 请求正文中的字段名，区分大小写。
const (
	fieldQuestion = "question"
	fieldFecha    = "fecha"
)

// questionPayload 是解码后的请求正文，字段按线上名称逐个取出。
type questionPayload struct {
	Question string `validate:"required,notblank"`
	Fecha    string `validate:"omitempty,datetime=2006-01-02"`
}

// validate 只缓存结构体元数据，可以并发使用。
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// ParseRequest 校验原始请求正文。检查顺序：正文必须是 JSON 对象，question 不能为空白，
// fecha (如果提供) 必须是 YYYY-MM-DD 格式的有效日期。
func ParseRequest(body []byte) (models.IncomingRequest, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return models.IncomingRequest{}, Fail(KindMalformedInput, errors.New("body is not a JSON object"))
	}

	// 先解码为原始字段表：encoding/json 对结构体字段名不区分大小写，
	// 而 "QUESTION" 不是 question。重复的键以最后一个为准。
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return models.IncomingRequest{}, Fail(KindMalformedInput, fmt.Errorf("decode body: %w", err))
	}

	var payload questionPayload
	if err := decodeField(fields, fieldQuestion, &payload.Question); err != nil {
		return models.IncomingRequest{}, Fail(KindMalformedInput, err)
	}
	if err := decodeField(fields, fieldFecha, &payload.Fecha); err != nil {
		return models.IncomingRequest{}, Fail(KindMalformedInput, err)
	}

	if err := validate.Struct(payload); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return models.IncomingRequest{}, Fail(KindInternal, err)
		}
		for _, fe := range verrs {
			if fe.StructField() == "Question" {
				return models.IncomingRequest{}, Fail(KindMissingQuestion, fe)
			}
		}
		return models.IncomingRequest{}, Fail(KindInvalidDateFormat, verrs[0])
	}

	return models.IncomingRequest{
		Question:   payload.Question,
		DateFilter: payload.Fecha,
	}, nil
}

// decodeField 把 name 对应的值解码为字符串。字段缺失或为 null 时保持空字符串。
func decodeField(fields map[string]json.RawMessage, name string, dst *string) error {
	raw, ok := fields[name]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}
