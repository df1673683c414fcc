package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"budget_ledger/internal/db"
	"budget_ledger/internal/media"
	"budget_ledger/internal/middleware"
	"budget_ledger/internal/notify"
	"budget_ledger/internal/service"
	"budget_ledger/internal/session"
	"budget_ledger/internal/store"
	"budget_ledger/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

const resetBase = "http://127.0.0.1:8000/reset_password/"

// outbox keeps every reset message sent during a test
type outbox struct {
	mu   sync.Mutex
	msgs []notify.ResetMessage
}

func (o *outbox) SendPasswordReset(_ context.Context, msg notify.ResetMessage) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, msg)
	return nil
}

func (o *outbox) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.msgs)
}

func (o *outbox) lastToken() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return strings.TrimPrefix(o.msgs[len(o.msgs)-1].URL, resetBase)
}

// RouterTestSuite drives the HTTP surface through the real router
type RouterTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	outbox  *outbox
	uploads string
	router  *gin.Engine
}

func (suite *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	conn, err := db.OpenMemory()
	require.NoError(suite.T(), err)
	suite.mr = miniredis.RunT(suite.T())
	rdb := redis.NewClient(&redis.Options{Addr: suite.mr.Addr()})
	suite.T().Cleanup(func() { _ = rdb.Close() })

	users := store.NewUserStore(conn)
	entries := store.NewLedgerStore(conn)
	suite.outbox = &outbox{}
	suite.uploads = suite.T().TempDir()

	auth, err := service.NewAuthService(service.AuthConfig{
		Users:        users,
		Sessions:     session.NewStore(rdb),
		Hasher:       utils.NewHasher(bcrypt.MinCost),
		Tokens:       utils.NewTokenService("test-secret", time.Now),
		Notifier:     suite.outbox,
		Photos:       media.NewThumbnailer(suite.uploads),
		Cache:        rdb,
		Secret:       "test-secret",
		ResetURLBase: resetBase,
	})
	require.NoError(suite.T(), err)

	suite.router = NewRouter(&App{
		Auth:      auth,
		Ledger:    service.NewLedgerService(entries, rdb),
		Users:     users,
		Entries:   entries,
		Redis:     rdb,
		UploadDir: suite.uploads,
	})
}

// do sends a JSON request, optionally with a bearer token
func (suite *RouterTestSuite) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(suite.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)
	return rec
}

func (suite *RouterTestSuite) decode(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// registerAndLogin creates an account and returns its session token
func (suite *RouterTestSuite) registerAndLogin(name, email string) string {
	rec := suite.do(http.MethodPost, "/register", gin.H{"name": name, "email": email, "password": "secret1"}, "")
	require.Equal(suite.T(), http.StatusCreated, rec.Code, rec.Body.String())
	rec = suite.do(http.MethodPost, "/login", gin.H{"email": email, "password": "secret1"}, "")
	require.Equal(suite.T(), http.StatusOK, rec.Code, rec.Body.String())
	token, _ := suite.decode(rec)["token"].(string)
	require.NotEmpty(suite.T(), token)
	return token
}

func (suite *RouterTestSuite) TestLoginSetsSessionCookie() {
	suite.do(http.MethodPost, "/register", gin.H{"name": "ann", "email": "ann@example.com", "password": "secret1"}, "")

	rec := suite.do(http.MethodPost, "/login", gin.H{"email": "ann@example.com", "password": "secret1"}, "")
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			session = c
		}
	}
	require.NotNil(suite.T(), session)
	assert.True(suite.T(), session.HttpOnly)
	assert.Zero(suite.T(), session.MaxAge, "browser session cookie without remember")

	rec = suite.do(http.MethodPost, "/login", gin.H{"email": "ann@example.com", "password": "secret1", "remember": true}, "")
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookieName {
			assert.Equal(suite.T(), int(service.RememberTTL.Seconds()), c.MaxAge)
		}
	}
}

func (suite *RouterTestSuite) TestLoginFailureMessageIsGeneric() {
	suite.registerAndLogin("ann", "ann@example.com")

	wrong := suite.do(http.MethodPost, "/login", gin.H{"email": "ann@example.com", "password": "nope123"}, "")
	unknown := suite.do(http.MethodPost, "/login", gin.H{"email": "bob@example.com", "password": "nope123"}, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, wrong.Code)
	assert.Equal(suite.T(), wrong.Code, unknown.Code)
	assert.Equal(suite.T(), wrong.Body.String(), unknown.Body.String())
}

func (suite *RouterTestSuite) TestRegisterDuplicateEmail() {
	suite.registerAndLogin("ann", "ann@example.com")
	rec := suite.do(http.MethodPost, "/register", gin.H{"name": "annie", "email": "ANN@example.com", "password": "secret1"}, "")
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.Equal(suite.T(), "email", suite.decode(rec)["field"])
}

func (suite *RouterTestSuite) TestProtectedRoutesRequireSession() {
	for _, path := range []string{"/entries", "/account", "/admin/users", "/admin/entries"} {
		rec := suite.do(http.MethodGet, path, nil, "")
		assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code, path)
		assert.Equal(suite.T(), middleware.StatusMessage(http.StatusUnauthorized), suite.decode(rec)["error"])
	}
	rec := suite.do(http.MethodGet, "/entries", nil, "not-a-token")
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
}

func (suite *RouterTestSuite) TestUnknownRouteGenericBody() {
	rec := suite.do(http.MethodGet, "/nope", nil, "")
	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
	assert.Equal(suite.T(), middleware.StatusMessage(http.StatusNotFound), suite.decode(rec)["error"])
}

func (suite *RouterTestSuite) TestLogoutEndsSession() {
	token := suite.registerAndLogin("ann", "ann@example.com")
	require.Equal(suite.T(), http.StatusOK, suite.do(http.MethodGet, "/account", nil, token).Code)

	rec := suite.do(http.MethodPost, "/logout", nil, token)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), http.StatusUnauthorized, suite.do(http.MethodGet, "/account", nil, token).Code)
}

func (suite *RouterTestSuite) TestEntriesFlow() {
	token := suite.registerAndLogin("ann", "ann@example.com")
	other := suite.registerAndLogin("bob", "bob@example.com")

	for i := 1; i <= 7; i++ {
		rec := suite.do(http.MethodPost, "/entries", gin.H{"is_income": i%2 == 0, "amount": i * 100}, token)
		require.Equal(suite.T(), http.StatusCreated, rec.Code, rec.Body.String())
	}
	rec := suite.do(http.MethodPost, "/entries", gin.H{"is_income": true, "amount": -5}, token)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	rec = suite.do(http.MethodPost, "/entries", gin.H{"amount": 5}, token)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code, "direction is required")

	var page service.LedgerPage
	rec = suite.do(http.MethodGet, "/entries?page=1", nil, token)
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(suite.T(), page.Entries, service.LedgerPageSize)
	assert.EqualValues(suite.T(), 7, page.Total)
	assert.True(suite.T(), page.HasMore)

	rec = suite.do(http.MethodGet, "/entries?page=2", nil, token)
	require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(suite.T(), page.Entries, 2)
	assert.False(suite.T(), page.HasMore)

	rec = suite.do(http.MethodGet, "/entries?user_id=1", nil, other)
	require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Empty(suite.T(), page.Entries, "entries of other users stay hidden")
}

func (suite *RouterTestSuite) TestAdminRoutes() {
	admin := suite.registerAndLogin("root", "root@example.com") // First account holds the admin flag
	user := suite.registerAndLogin("ann", "ann@example.com")

	rec := suite.do(http.MethodGet, "/admin/users", nil, user)
	assert.Equal(suite.T(), http.StatusForbidden, rec.Code)
	assert.Equal(suite.T(), middleware.StatusMessage(http.StatusForbidden), suite.decode(rec)["error"])

	rec = suite.do(http.MethodGet, "/admin/users", nil, admin)
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	body := suite.decode(rec)
	assert.EqualValues(suite.T(), 2, body["total"])
	assert.NotContains(suite.T(), rec.Body.String(), "password")

	suite.do(http.MethodPost, "/entries", gin.H{"is_income": true, "amount": 10}, user)
	rec = suite.do(http.MethodGet, "/admin/entries", nil, admin)
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.EqualValues(suite.T(), 1, suite.decode(rec)["total"])

	// Cached listings follow new entries and accounts
	suite.do(http.MethodPost, "/entries", gin.H{"is_income": false, "amount": 20}, user)
	rec = suite.do(http.MethodGet, "/admin/entries", nil, admin)
	assert.EqualValues(suite.T(), 2, suite.decode(rec)["total"])

	suite.registerAndLogin("bob", "bob@example.com")
	rec = suite.do(http.MethodGet, "/admin/users", nil, admin)
	assert.EqualValues(suite.T(), 3, suite.decode(rec)["total"])
}

func (suite *RouterTestSuite) TestResetRequestDoesNotRevealAccounts() {
	suite.registerAndLogin("ann", "ann@example.com")

	known := suite.do(http.MethodPost, "/reset_password", gin.H{"email": "ann@example.com"}, "")
	unknown := suite.do(http.MethodPost, "/reset_password", gin.H{"email": "ghost@example.com"}, "")
	assert.Equal(suite.T(), http.StatusOK, known.Code)
	assert.Equal(suite.T(), known.Code, unknown.Code)
	assert.Equal(suite.T(), known.Body.String(), unknown.Body.String())
	assert.Equal(suite.T(), 1, suite.outbox.count(), "only the registered email gets a link")
}

func (suite *RouterTestSuite) TestResetConfirm() {
	token := suite.registerAndLogin("ann", "ann@example.com")
	suite.do(http.MethodPost, "/reset_password", gin.H{"email": "ann@example.com"}, "")
	resetToken := suite.outbox.lastToken()

	rec := suite.do(http.MethodPost, "/reset_password/garbage", gin.H{"password": "newpass1"}, "")
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.Equal(suite.T(), tokenInvalidMessage, suite.decode(rec)["error"])

	rec = suite.do(http.MethodPost, "/reset_password/"+resetToken, gin.H{"password": "newpass1"}, "")
	require.Equal(suite.T(), http.StatusOK, rec.Code, rec.Body.String())

	rec = suite.do(http.MethodPost, "/reset_password/"+resetToken, gin.H{"password": "another1"}, "")
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code, "reset links are single use")
	assert.Equal(suite.T(), http.StatusUnauthorized, suite.do(http.MethodGet, "/account", nil, token).Code)

	rec = suite.do(http.MethodPost, "/login", gin.H{"email": "ann@example.com", "password": "newpass1"}, "")
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func (suite *RouterTestSuite) TestUpdateAccount() {
	suite.registerAndLogin("bob", "bob@example.com")
	token := suite.registerAndLogin("ann", "ann@example.com")

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(suite.T(), form.WriteField("name", "annie"))
	require.NoError(suite.T(), form.WriteField("email", "annie@example.com"))
	part, err := form.CreateFormFile("photo", "me.png")
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), png.Encode(part, image.NewRGBA(image.Rect(0, 0, 300, 200))))
	require.NoError(suite.T(), form.Close())

	req := httptest.NewRequest(http.MethodPost, "/account", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)
	require.Equal(suite.T(), http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		User ProfileResponse `json:"user"`
	}
	require.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(suite.T(), "annie", body.User.Name)
	assert.Equal(suite.T(), "annie@example.com", body.User.Email)
	require.True(suite.T(), strings.HasPrefix(body.User.PhotoURL, photoURLPrefix))
	_, err = os.Stat(filepath.Join(suite.uploads, strings.TrimPrefix(body.User.PhotoURL, photoURLPrefix)))
	assert.NoError(suite.T(), err, "thumbnail stored in the upload directory")

	// Taken by another account
	rec = suite.do(http.MethodGet, "/account", nil, token)
	require.Equal(suite.T(), http.StatusOK, rec.Code)
	req = httptest.NewRequest(http.MethodPost, "/account", strings.NewReader("name=annie&email=bob@example.com"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	suite.router.ServeHTTP(rec, req)
	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.Equal(suite.T(), "email", suite.decode(rec)["field"])
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
