package response

import (
	"github.com/gin-gonic/gin"

	"github.com/JasjusSirsak/bolususu/internal/domain"
)

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New never leaves data as null.
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error builds a failure envelope; an empty customMsg falls back to the code's text.
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// FromError returns the status and envelope for err. Storage failures only
// expose their public message.
func FromError(err error) (int, Resp) {
	status := StatusOf(domain.KindOf(err))
	return status, Error(status, domain.PublicMessage(err))
}

// JSON writes data with status and the OK envelope.
func JSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, OK(data))
}

// Abort writes a failure envelope with status as both HTTP status and code.
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Error(status, msg))
}
