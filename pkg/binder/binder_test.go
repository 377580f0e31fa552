package binder

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type params struct {
	Title string `json:"title" mod:"trim" validate:"required,max=100"`
	Type  string `json:"type" validate:"omitempty,oneof=comics story novel high-content"`
}

type queryParams struct {
	Search string `query:"search"`
	Limit  int    `query:"limit" default:"50"`
}

func bindJSON(t *testing.T, body string, i interface{}) error {
	t.Helper()

	b, err := New()
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(echo.POST, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	return b.Bind(i, c)
}

func TestBind_TrimsAndValidates(t *testing.T) {
	t.Parallel()

	p := params{}
	err := bindJSON(t, `{"title":"  The Trial  ","type":"novel"}`, &p)
	require.NoError(t, err)
	assert.Equal(t, "The Trial", p.Title)
}

func TestBind_RequiredField(t *testing.T) {
	t.Parallel()

	p := params{}
	err := bindJSON(t, `{"type":"novel"}`, &p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"title" is required`)
}

func TestBind_OneOf(t *testing.T) {
	t.Parallel()

	p := params{}
	err := bindJSON(t, `{"title":"x","type":"poetry"}`, &p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"type" must be one of the following`)
}

func TestBind_UnknownField(t *testing.T) {
	t.Parallel()

	p := params{}
	err := bindJSON(t, `{"title":"x","bogus":true}`, &p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Unknown Parameter "bogus"`)
}

func TestBind_TypeError(t *testing.T) {
	t.Parallel()

	p := params{}
	err := bindJSON(t, `{"title":42}`, &p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"title" should be of type string`)
}

func TestBind_QueryDefaults(t *testing.T) {
	t.Parallel()

	b, err := New()
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(echo.GET, "/?search=kafka", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	q := queryParams{}
	require.NoError(t, b.Bind(&q, c))
	assert.Equal(t, "kafka", q.Search)
	assert.Equal(t, 50, q.Limit)
}
