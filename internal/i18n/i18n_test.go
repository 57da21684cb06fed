package i18n

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestI18n(t *testing.T) *I18n {
	t.Helper()
	i, err := New("en", []string{"en", "zh-CN", "ja", "es", "fr"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return i
}

func TestLocalesShareKeys(t *testing.T) {
	i := newTestI18n(t)

	base := i.languages["en"]
	for _, lang := range []string{"zh-CN", "ja", "es"} {
		for key := range base {
			if _, ok := i.languages[lang][key]; !ok {
				t.Errorf("%s is missing key %s", lang, key)
			}
		}
	}
}

func TestTranslate(t *testing.T) {
	i := newTestI18n(t)

	if got := i.T("es", MsgNewGame); got != "¡Nueva partida iniciada!" {
		t.Errorf("unexpected es translation %q", got)
	}
	// fr has no locale file and falls back to English
	if got := i.T("fr", MsgNewGame); got != "New game started!" {
		t.Errorf("unexpected fallback %q", got)
	}
	if got := i.T("en", "no.such.key"); got != "no.such.key" {
		t.Errorf("unknown keys should echo, got %q", got)
	}
	if got := i.Tf("en", MsgGameOver, 1234); got != "Game over! No more moves available. Final score: 1234" {
		t.Errorf("unexpected formatted message %q", got)
	}
}

func TestNewRequiresDefaultLocale(t *testing.T) {
	if _, err := New("xx", nil); err == nil {
		t.Error("expected an error for a default language without a locale file")
	}
}

func TestDetectLanguage(t *testing.T) {
	i := newTestI18n(t)

	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"ja", "ja"},
		{"zh-TW,zh;q=0.9", "zh-CN"},
		{"de-DE,es;q=0.8", "es"},
		{"*", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := i.DetectLanguage(tt.header); got != tt.want {
				t.Errorf("DetectLanguage(%q) = %s, want %s", tt.header, got, tt.want)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	i := newTestI18n(t)

	router := gin.New()
	router.Use(Middleware(i))
	router.GET("/lang", func(c *gin.Context) { c.String(http.StatusOK, GetLanguage(c)) })
	router.GET("/languages", Languages(i))

	tests := []struct {
		name   string
		query  string
		cookie string
		accept string
		want   string
	}{
		{"query wins", "?lang=ja", "es", "zh-CN", "ja"},
		{"cookie next", "", "es", "zh-CN", "es"},
		{"header last", "", "", "zh-CN", "zh-CN"},
		{"unsupported query ignored", "?lang=xx", "", "", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/lang"+tt.query, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: CookieName, Value: tt.cookie})
			}
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Body.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, w.Body.String())
			}
		})
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/languages", nil))

	var body struct {
		Current   string     `json:"current"`
		Languages []Language `json:"languages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	var codes []string
	for _, l := range body.Languages {
		codes = append(codes, l.Code)
	}
	if want := []string{"en", "es", "fr", "ja", "zh-CN"}; !reflect.DeepEqual(codes, want) {
		t.Errorf("languages = %v, want %v", codes, want)
	}
}
