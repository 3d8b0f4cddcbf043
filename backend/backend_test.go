package backend

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lwestrich/papershelf/core"
	"github.com/lwestrich/papershelf/session"
	"github.com/lwestrich/papershelf/util"
)

const testSecret = "test-secret"

type fakeAdminDB struct {
	users     map[int]*core.AdminUser
	passwords map[string]string // mail -> plaintext, test only
}

func (db *fakeAdminDB) GetAdmin(id int) (*core.AdminUser, error) {
	u, ok := db.users[id]
	if !ok || u.Role != core.RoleAdmin {
		return nil, core.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (db *fakeAdminDB) LoginAdmin(mail, password string) (*core.AdminUser, error) {
	mail = strings.ToLower(strings.TrimSpace(mail))
	for _, u := range db.users {
		if u.Mail == mail && u.Role == core.RoleAdmin && db.passwords[mail] == password {
			copied := *u
			return &copied, nil
		}
	}
	return nil, core.ErrAuth
}

func (db *fakeAdminDB) InsertAdmin(mail, password string) (*core.AdminUser, error) {
	return nil, core.ValidationError("not supported")
}

type fakeArticleDB struct {
	articles map[int]*core.Article
	nextID   int
}

func (db *fakeArticleDB) InsertArticle(a *core.Article) (int, error) {
	db.nextID++
	a.ID = db.nextID
	stored := *a
	db.articles[a.ID] = &stored
	return a.ID, nil
}

func (db *fakeArticleDB) GetArticle(id int) (*core.Article, error) {
	a, ok := db.articles[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

func (db *fakeArticleDB) GetArticleByBlobID(blobID string) (*core.Article, error) {
	for _, a := range db.articles {
		if a.BlobID == blobID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, core.ErrNotFound
}

func (db *fakeArticleDB) GetAllArticles() ([]core.Article, error) {
	var all []core.Article
	for _, a := range db.articles {
		all = append(all, *a)
	}
	return all, nil
}

func (db *fakeArticleDB) GetApprovedArticles() ([]core.Article, error) {
	var approved []core.Article
	for _, a := range db.articles {
		if a.Approved {
			approved = append(approved, *a)
		}
	}
	return approved, nil
}

func (db *fakeArticleDB) UpdateArticle(id int, title, author, abstract, body string) error {
	if a, ok := db.articles[id]; ok {
		a.Title, a.Author, a.Abstract, a.Body = title, author, abstract, body
	}
	return nil
}

func (db *fakeArticleDB) SetArticleApproved(id int) error {
	if a, ok := db.articles[id]; ok {
		a.Approved = true
	}
	return nil
}

func (db *fakeArticleDB) RemoveArticle(id int) error {
	delete(db.articles, id)
	return nil
}

type fakeBlobStore struct {
	blobs map[string][]byte
	next  int
}

func (s *fakeBlobStore) Store(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", core.ValidationError("uploaded file is empty")
	}
	s.next++
	id := fmt.Sprintf("blob%d", s.next)
	s.blobs[id] = data
	return id, nil
}

func (s *fakeBlobStore) Open(id string) (io.ReadSeekCloser, error) {
	data, ok := s.blobs[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return nopCloser{bytes.NewReader(data)}, nil
}

func (s *fakeBlobStore) Delete(id string) error {
	delete(s.blobs, id)
	return nil
}

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }

// newTestBackend mounts the backend router under /admin the way main
// does, so redirect locations carry the prefix.
func newTestBackend(t *testing.T) (*core.CoreDB, http.Handler) {
	t.Helper()

	codec, err := session.NewCodec(testSecret)
	if err != nil {
		t.Fatal(err)
	}

	db := &core.CoreDB{
		AdminDB: &fakeAdminDB{
			users: map[int]*core.AdminUser{
				1: {ID: 1, Mail: "admin@example.com", Role: "admin"},
				2: {ID: 2, Mail: "editor@example.com", Role: "editor"},
			},
			passwords: map[string]string{
				"admin@example.com":  "correct horse",
				"editor@example.com": "correct horse",
			},
		},
		ArticleDB: &fakeArticleDB{articles: make(map[int]*core.Article)},
		Blobs:     &fakeBlobStore{blobs: make(map[string][]byte)},
		Sessions:  codec,
	}

	mux := http.NewServeMux()
	util.HandlePrefix(mux, "/admin", NewRouter(db, "/admin/", false))
	return db, mux
}

func sessionCookieOf(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookie {
			return cookie
		}
	}
	return nil
}

func doLogin(t *testing.T, handler http.Handler, mail, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"email": {mail}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func TestGateRedirectsAnonymous(t *testing.T) {

	_, handler := newTestBackend(t)

	for _, path := range []string{"/admin/", "/admin/dashboard", "/admin/view/1", "/admin/edit/1", "/admin/logout"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusSeeOther {
			t.Errorf("%s: got status %d, want 303", path, recorder.Code)
		}
		if location := recorder.Header().Get("Location"); location != "/admin/login" {
			t.Errorf("%s: got location %q, want /admin/login", path, location)
		}
	}
}

func TestGateNeverReachesHandler(t *testing.T) {

	db, handler := newTestBackend(t)

	req := newUploadRequest(t, "/admin/upload-article", "application/pdf", []byte("%PDF-1.4"))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("got status %d, want 303", recorder.Code)
	}
	if articles, _ := db.GetAllArticles(); len(articles) != 0 {
		t.Error("anonymous upload reached the handler")
	}
}

func TestLoginPageIsPublic(t *testing.T) {

	_, handler := newTestBackend(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("got status %d, want 200", recorder.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {

	_, handler := newTestBackend(t)

	for _, attempt := range [][2]string{
		{"admin@example.com", "wrong"},
		{"nobody@example.com", "correct horse"},
		{"editor@example.com", "correct horse"}, // role is not admin
	} {
		recorder := doLogin(t, handler, attempt[0], attempt[1])

		if recorder.Code != http.StatusUnauthorized {
			t.Errorf("%s: got status %d, want 401", attempt[0], recorder.Code)
		}
		if cookie := sessionCookieOf(t, recorder.Result()); cookie != nil {
			t.Errorf("%s: session cookie set on failed login", attempt[0])
		}
		if !strings.Contains(recorder.Body.String(), "Invalid credentials.") {
			t.Errorf("%s: generic error message missing", attempt[0])
		}
	}
}

func TestLoginAndAccess(t *testing.T) {

	_, handler := newTestBackend(t)

	recorder := doLogin(t, handler, "admin@example.com", "correct horse")
	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("login: got status %d, want 303", recorder.Code)
	}
	if location := recorder.Header().Get("Location"); location != "/admin/dashboard" {
		t.Fatalf("login: got location %q", location)
	}

	cookie := sessionCookieOf(t, recorder.Result())
	if cookie == nil {
		t.Fatal("no session cookie set")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie is not httponly")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Error("session cookie is not samesite-lax")
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(cookie)
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Errorf("dashboard with cookie: got status %d, want 200", recorder.Code)
	}
}

func TestExpiredToken(t *testing.T) {

	_, handler := newTestBackend(t)

	// signed with the right secret, but older than the max age
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, struct {
		jwt.RegisteredClaims
		Role string `json:"role"`
	}{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  "1",
			IssuedAt: jwt.NewNumericDate(time.Now().Add(-5 * time.Hour)),
		},
		Role: "admin",
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusSeeOther {
		t.Errorf("got status %d, want 303", recorder.Code)
	}
}

func TestTamperedToken(t *testing.T) {

	_, handler := newTestBackend(t)

	recorder := doLogin(t, handler, "admin@example.com", "correct horse")
	cookie := sessionCookieOf(t, recorder.Result())
	if cookie == nil {
		t.Fatal("no session cookie set")
	}

	tampered := []byte(cookie.Value)
	last := len(tampered) - 1
	if tampered[last] == 'A' {
		tampered[last] = 'B'
	} else {
		tampered[last] = 'A'
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: string(tampered)})
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusSeeOther {
		t.Errorf("got status %d, want 303", recorder.Code)
	}
}

// a token issued before a role downgrade must stop working
func TestRoleDowngrade(t *testing.T) {

	db, handler := newTestBackend(t)

	token, err := db.Sessions.Issue("2", "admin")
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: token})
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusSeeOther {
		t.Errorf("got status %d, want 303", recorder.Code)
	}
}

func TestLogout(t *testing.T) {

	_, handler := newTestBackend(t)

	recorder := doLogin(t, handler, "admin@example.com", "correct horse")
	cookie := sessionCookieOf(t, recorder.Result())
	if cookie == nil {
		t.Fatal("no session cookie set")
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/logout", nil)
	req.AddCookie(cookie)
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("got status %d, want 303", recorder.Code)
	}
	if location := recorder.Header().Get("Location"); location != "/admin/login" {
		t.Errorf("got location %q, want /admin/login", location)
	}

	cleared := sessionCookieOf(t, recorder.Result())
	if cleared == nil || cleared.MaxAge >= 0 || cleared.Value != "" {
		t.Error("session cookie not cleared")
	}
}

func newUploadRequest(t *testing.T, path string, contentType string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for field, value := range map[string]string{
		"title":    "Paper A",
		"author":   "Doe",
		"abstract": "abstract",
		"body":     "body",
	} {
		if err := writer.WriteField(field, value); err != nil {
			t.Fatal(err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="pdf_file"; filename="paper.pdf"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestAdminUploadAndDelete(t *testing.T) {

	db, handler := newTestBackend(t)

	recorder := doLogin(t, handler, "admin@example.com", "correct horse")
	cookie := sessionCookieOf(t, recorder.Result())
	if cookie == nil {
		t.Fatal("no session cookie set")
	}

	req := newUploadRequest(t, "/admin/upload-article", "application/pdf", []byte("%PDF-1.4"))
	req.AddCookie(cookie)
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("upload: got status %d, want 303", recorder.Code)
	}
	if location := recorder.Header().Get("Location"); location != "/admin/dashboard?uploaded=1" {
		t.Errorf("upload: got location %q", location)
	}

	articles, _ := db.GetAllArticles()
	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1", len(articles))
	}
	article := articles[0]

	form := url.Values{"article_id": {fmt.Sprint(article.ID)}}
	req = httptest.NewRequest(http.MethodPost, "/admin/delete-article", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("delete: got status %d, want 303", recorder.Code)
	}
	if _, err := db.GetArticle(article.ID); err != core.ErrNotFound {
		t.Error("article still in repository")
	}
	if _, err := db.Blobs.Open(article.BlobID); err != core.ErrNotFound {
		t.Error("blob still retrievable")
	}

	// deleting again is a 404, not a crash
	req = httptest.NewRequest(http.MethodPost, "/admin/delete-article", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("second delete: got status %d, want 404", recorder.Code)
	}
}

func TestAdminUploadRejectsContentType(t *testing.T) {

	db, handler := newTestBackend(t)

	recorder := doLogin(t, handler, "admin@example.com", "correct horse")
	cookie := sessionCookieOf(t, recorder.Result())
	if cookie == nil {
		t.Fatal("no session cookie set")
	}

	req := newUploadRequest(t, "/admin/upload-article", "text/plain", []byte("not a pdf"))
	req.AddCookie(cookie)
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want 400", recorder.Code)
	}
	if articles, _ := db.GetAllArticles(); len(articles) != 0 {
		t.Error("rejected upload created an article")
	}
}

func TestApprove(t *testing.T) {

	db, handler := newTestBackend(t)

	id, err := db.InsertArticle(&core.Article{Title: "Paper A", Created: time.Now().Unix()})
	if err != nil {
		t.Fatal(err)
	}

	recorder := doLogin(t, handler, "admin@example.com", "correct horse")
	cookie := sessionCookieOf(t, recorder.Result())
	if cookie == nil {
		t.Fatal("no session cookie set")
	}

	form := url.Values{"article_id": {fmt.Sprint(id)}}
	req := httptest.NewRequest(http.MethodPost, "/admin/approve-article", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusSeeOther {
		t.Fatalf("got status %d, want 303", recorder.Code)
	}

	article, err := db.GetArticle(id)
	if err != nil {
		t.Fatal(err)
	}
	if !article.Approved {
		t.Error("article not approved")
	}
}
