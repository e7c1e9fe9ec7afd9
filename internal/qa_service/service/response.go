package service

import "net/http"

// 返回给调用方的提示信息，不包含任何底层错误文本。
const (
	MsgMalformedInput    = "Por favor, envía una pregunta en formato JSON."
	MsgMissingQuestion   = "La pregunta no puede estar vacía."
	MsgInvalidDateFormat = "Formato de fecha inválido. Usa el formato YYYY-MM-DD."
	MsgNoContextFound    = "No se encontraron datos para la fecha indicada ni registros recientes."
	MsgStoreUnavailable  = "Error de conexión con la base de datos."
	MsgCompletionFailed  = "Error al obtener respuesta del modelo."
	MsgInternal          = "Error interno del servidor."
)

type response struct {
	status int
	body   string
}

var responses = map[Kind]response{
	KindMalformedInput:          {http.StatusBadRequest, MsgMalformedInput},
	KindMissingQuestion:         {http.StatusBadRequest, MsgMissingQuestion},
	KindInvalidDateFormat:       {http.StatusBadRequest, MsgInvalidDateFormat},
	KindNoContextFound:          {http.StatusNotFound, MsgNoContextFound},
	KindStoreUnavailable:        {http.StatusInternalServerError, MsgStoreUnavailable},
	KindCompletionProviderError: {http.StatusInternalServerError, MsgCompletionFailed},
	KindInternal:                {http.StatusInternalServerError, MsgInternal},
}

// Respond 把流程结果映射为 HTTP 状态码和正文。
// 未知类别的错误一律映射为内部错误响应。
func Respond(answer string, err error) (int, string) {
	if err == nil {
		return http.StatusOK, answer
	}
	if r, ok := responses[KindOf(err)]; ok {
		return r.status, r.body
	}
	return http.StatusInternalServerError, MsgInternal
}
