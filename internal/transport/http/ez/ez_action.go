package ez

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"go.uber.org/zap"

	"github.com/JasjusSirsak/bolususu/internal/domain"
	mdw "github.com/JasjusSirsak/bolususu/internal/transport/http/middleware"
	resp "github.com/JasjusSirsak/bolususu/internal/transport/http/response"
)

// EZ registers actions on a router group and logs their failures.
type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

// Group returns an EZ on a sub group sharing the logger.
func (e EZ) Group(path string, mw ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, mw...), log: e.log}
}

type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none" // handler reads c.Param / c.PostForm itself
)

// Action is one endpoint. I is the bound input, O the envelope data.
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Status  int // success status, default 200
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			e.abortBind(c, bindErr)
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			e.Fail(c, err)
			return
		}
		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		resp.JSON(c, status, out)
	}
	e.handle(a.Method, a.Path, h)
}

// POSTFILES handles a multipart/form-data upload carrying files under fieldName.
func POSTFILES[O any](e EZ, path, fieldName string, status int, h func(c *gin.Context, files []*multipart.FileHeader) (O, error)) {
	if status == 0 {
		status = http.StatusOK
	}
	e.g.POST(path, func(c *gin.Context) {
		form, err := c.MultipartForm()
		if err != nil {
			if mdw.IsBodyTooLarge(err) {
				resp.Abort(c, resp.CodeTooLarge, "request body too large")
				return
			}
			resp.Abort(c, resp.CodeBadRequest, "invalid multipart form")
			return
		}
		files := form.File[fieldName]
		if len(files) == 0 {
			resp.Abort(c, resp.CodeBadRequest, "no file uploaded")
			return
		}
		out, err := h(c, files)
		if err != nil {
			e.Fail(c, err)
			return
		}
		resp.JSON(c, status, out)
	})
}

// Fail writes the envelope for err. Causes of storage errors are logged and
// never sent to the client.
func (e EZ) Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	status, body := resp.FromError(err)
	if status >= http.StatusInternalServerError {
		e.log.Error("request failed",
			zap.String("rid", c.GetString(mdw.KeyRequestID)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Uint("uid", mdw.UserID(c)),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, body)
}

func (e EZ) abortBind(c *gin.Context, err error) {
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
	if mdw.IsBodyTooLarge(err) {
		resp.Abort(c, resp.CodeTooLarge, "request body too large")
		return
	}
	resp.Abort(c, resp.CodeBadRequest, BindMessage(err))
}

func (e EZ) handle(method, path string, h gin.HandlerFunc) {
	switch strings.ToUpper(method) {
	case http.MethodGet:
		e.g.GET(path, h)
	case http.MethodPut:
		e.g.PUT(path, h)
	case http.MethodDelete:
		e.g.DELETE(path, h)
	case http.MethodPatch:
		e.g.PATCH(path, h)
	default:
		e.g.POST(path, h)
	}
}

// BindMessage renders a binding failure as a short client message.
func BindMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		field := fe.Field()
		switch fe.Tag() {
		case "required", "notblank":
			return field + " is required"
		case "email":
			return field + " must be a valid email address"
		case "max":
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		case "min":
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		default:
			return fmt.Sprintf("%s is invalid", field)
		}
	}
	if errors.Is(err, domain.ErrInvalidRow) {
		return err.Error()
	}
	var (
		syn *json.SyntaxError
		typ *json.UnmarshalTypeError
	)
	switch {
	case errors.Is(err, io.EOF):
		return "request body is empty"
	case errors.As(err, &syn), errors.Is(err, io.ErrUnexpectedEOF):
		return "invalid JSON body"
	case errors.As(err, &typ):
		return fmt.Sprintf("%s has the wrong type", typ.Field)
	}
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return "invalid number in request"
	}
	return "invalid request"
}

// PathID reads a positive numeric path parameter.
func PathID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, domain.Invalidf("invalid %s", name)
	}
	return uint(n), nil
}

var registerOnce sync.Once

// RegisterValidators adds the custom tags used by request structs to gin's
// validator. Safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
}
