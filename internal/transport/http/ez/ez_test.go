package ez

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JasjusSirsak/bolususu/internal/domain"
	resp "github.com/JasjusSirsak/bolususu/internal/transport/http/response"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

type greetIn struct {
	Name  string `json:"name"  binding:"required,notblank,max=8"`
	Email string `json:"email" binding:"omitempty,email"`
}

func newEngine() *gin.Engine {
	r := gin.New()
	e := New(r.Group("/"), nil)
	RegisterAction(e, Action[greetIn, gin.H]{
		Method: http.MethodPost,
		Path:   "/greet",
		Binder: BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *greetIn) (gin.H, error) {
			switch in.Name {
			case "taken":
				return nil, domain.Conflict("name already taken")
			case "db":
				return nil, domain.Storage("failed to greet", errors.New("connection reset"))
			}
			return gin.H{"hello": in.Name}, nil
		},
	})
	RegisterAction(e, Action[struct{}, gin.H]{
		Method: http.MethodGet,
		Path:   "/items/:itemId",
		Binder: BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (gin.H, error) {
			id, err := PathID(c, "itemId")
			if err != nil {
				return nil, err
			}
			return gin.H{"id": id}, nil
		},
	})
	POSTFILES(e, "/files", "file", 0, func(c *gin.Context, files []*multipart.FileHeader) (gin.H, error) {
		return gin.H{"name": files[0].Filename}, nil
	})
	return r
}

func do(r *gin.Engine, method, path, body string) (int, resp.Resp) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out resp.Resp
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func TestRegisterAction(t *testing.T) {
	r := newEngine()

	code, body := do(r, http.MethodPost, "/greet", `{"name":"ann"}`)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, resp.CodeOK, body.Code)
	assert.Equal(t, map[string]any{"hello": "ann"}, body.Data)

	code, body = do(r, http.MethodPost, "/greet", `{"name":"   "}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "name is required", body.Msg)

	code, body = do(r, http.MethodPost, "/greet", `{"name":"a","email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "email must be a valid email address", body.Msg)

	code, body = do(r, http.MethodPost, "/greet", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid JSON body", body.Msg)

	code, body = do(r, http.MethodPost, "/greet", `{"name":"taken"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, resp.CodeConflict, body.Code)

	code, body = do(r, http.MethodPost, "/greet", `{"name":"db"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "failed to greet", body.Msg)
	assert.NotContains(t, body.Msg, "connection reset")
}

func TestPathID(t *testing.T) {
	r := newEngine()

	code, body := do(r, http.MethodGet, "/items/42", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"id": float64(42)}, body.Data)

	for _, bad := range []string{"0", "-1", "abc"} {
		code, _ = do(r, http.MethodGet, "/items/"+bad, "")
		assert.Equal(t, http.StatusBadRequest, code, bad)
	}
}

func TestPOSTFILES(t *testing.T) {
	r := newEngine()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "data.csv")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("a,b\n1,2\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "data.csv")

	var empty bytes.Buffer
	mw = multipart.NewWriter(&empty)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())
	req = httptest.NewRequest(http.MethodPost, "/files", &empty)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBindMessage_RowErrors(t *testing.T) {
	var in struct {
		Data []domain.Row `json:"data"`
	}
	err := json.Unmarshal([]byte(`{"data":[{"a":{"b":1}}]}`), &in)
	require.Error(t, err)
	assert.Contains(t, BindMessage(err), "invalid row")
}
