package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"recipebox/internal/middleware"
	"recipebox/internal/models"
	"recipebox/internal/storage"
	"recipebox/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	t   *testing.T
	s   *Server
	app *fiber.App
	db  *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := testutil.SQLiteConfig()
	cfg.MediaURL = "/media/"
	cfg.JWTTTLHours = 1
	cfg.ImageMaxUploadSizeMB = 2

	store, err := storage.NewLocalStore(t.TempDir(), cfg.MediaURL)
	require.NoError(t, err)

	s, err := NewServerWithDeps(cfg, db, nil, store)
	require.NoError(t, err)
	return &testEnv{t: t, s: s, app: s.NewApp(), db: db}
}

// login creates an active user and returns a bearer token for them.
func (e *testEnv) login(email string) (*models.User, string) {
	e.t.Helper()
	user := testutil.CreateUser(e.t, e.db, email)
	token, err := middleware.IssueToken(e.s.config.JWTSecret, user.ID, time.Hour)
	require.NoError(e.t, err)
	return user, token
}

func (e *testEnv) do(method, path, token string, body any) (int, []byte) {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return e.send(req, token)
}

func (e *testEnv) send(req *http.Request, token string) (int, []byte) {
	e.t.Helper()
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer func() { _ = resp.Body.Close() }()
	out, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	return resp.StatusCode, out
}

func (e *testEnv) upload(method, path, token, field string, content []byte, extra map[string]string) (int, []byte) {
	e.t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range extra {
		require.NoError(e.t, w.WriteField(k, v))
	}
	if content != nil {
		part, err := w.CreateFormFile(field, "photo.png")
		require.NoError(e.t, err)
		_, err = part.Write(content)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, w.Close())

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return e.send(req, token)
}

func decodeInto[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func (e *testEnv) createTag(token, name string) TagResponse {
	e.t.Helper()
	status, body := e.do(http.MethodPost, "/api/tags", token, map[string]any{"name": name})
	require.Equal(e.t, http.StatusCreated, status, string(body))
	return decodeInto[TagResponse](e.t, body)
}

func (e *testEnv) createPost(token string, payload map[string]any) PostResponse {
	e.t.Helper()
	base := map[string]any{"title": "Sample recipe", "time_minutes": 10, "price": "5.00"}
	for k, v := range payload {
		base[k] = v
	}
	status, body := e.do(http.MethodPost, "/api/posts", token, base)
	require.Equal(e.t, http.StatusCreated, status, string(body))
	return decodeInto[PostResponse](e.t, body)
}

func postPath(id uint, suffix string) string {
	return "/api/posts/" + strconv.FormatUint(uint64(id), 10) + suffix
}

func TestHealthEndpoints(t *testing.T) {
	e := newTestEnv(t)

	status, _ := e.do(http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, body := e.do(http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	ready := decodeInto[map[string]any](t, body)
	checks := ready["checks"].(map[string]any)
	assert.Equal(t, "healthy", checks["database"])
	assert.Equal(t, "unavailable", checks["redis"])
}

func TestAuthRequired_RejectsBeforeHandlers(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
	}{
		{name: "list posts without token", method: http.MethodGet, path: "/api/posts"},
		{name: "create tag without token", method: http.MethodPost, path: "/api/tags"},
		{name: "garbage token", method: http.MethodGet, path: "/api/ingredients", token: "not-a-jwt"},
		{name: "me without token", method: http.MethodGet, path: "/api/users/me"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := e.do(tt.method, tt.path, tt.token, map[string]any{"name": "sneaky"})
			assert.Equal(t, http.StatusUnauthorized, status)
			resp := decodeInto[models.ErrorResponse](t, body)
			assert.Equal(t, models.CodeUnauthorized, resp.Code)
		})
	}

	var count int64
	require.NoError(t, e.db.Model(&models.Tag{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAuthRequired_InactiveUser(t *testing.T) {
	e := newTestEnv(t)
	user, token := e.login("sleepy@example.com")
	require.NoError(t, e.db.Model(user).Update("is_active", false).Error)

	status, body := e.do(http.MethodGet, "/api/posts", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status, string(body))
}

func TestSignupLoginAndMe(t *testing.T) {
	e := newTestEnv(t)

	status, body := e.do(http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email": "cook@example.com", "password": "Sup3rSecret!", "name": "Cook",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	signup := decodeInto[AuthResponse](t, body)
	assert.NotEmpty(t, signup.Token)
	assert.Equal(t, "cook@example.com", signup.User.Email)

	status, body = e.do(http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email": "cook@example.com", "password": "Sup3rSecret!",
	})
	assert.Equal(t, http.StatusBadRequest, status, string(body))

	status, _ = e.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "cook@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = e.do(http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "cook@example.com", "password": "Sup3rSecret!",
	})
	require.Equal(t, http.StatusOK, status, string(body))
	login := decodeInto[AuthResponse](t, body)

	status, body = e.do(http.MethodGet, "/api/users/me", login.Token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	me := decodeInto[UserResponse](t, body)
	assert.Equal(t, signup.User.ID, me.ID)
	assert.Equal(t, "Cook", me.Name)
	assert.Nil(t, me.Avatar)

	status, _ = e.do(http.MethodPost, "/api/auth/logout", login.Token, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestAttributes_NameRequired(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.login("cook@example.com")

	for _, path := range []string{"/api/tags", "/api/ingredients"} {
		status, body := e.do(http.MethodPost, path, token, map[string]any{})
		require.Equal(t, http.StatusBadRequest, status, path)
		resp := decodeInto[models.ErrorResponse](t, body)
		assert.Equal(t, models.CodeValidation, resp.Code)
		assert.NotEmpty(t, resp.Fields["name"], path)
	}
}

func TestTags_OrderingAndAssignedOnly(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.login("cook@example.com")
	_, otherToken := e.login("other@example.com")

	e.createTag(token, "Breakfast")
	dessert := e.createTag(token, "Dessert")
	e.createTag(token, "Vegan")
	e.createTag(otherToken, "Zesty")

	status, body := e.do(http.MethodGet, "/api/tags", token, nil)
	require.Equal(t, http.StatusOK, status)
	tags := decodeInto[[]TagResponse](t, body)
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	assert.Equal(t, []string{"Vegan", "Dessert", "Breakfast"}, names)

	e.createPost(token, map[string]any{"tags": []uint{dessert.ID}})

	status, body = e.do(http.MethodGet, "/api/tags?assigned_only=1", token, nil)
	require.Equal(t, http.StatusOK, status)
	assigned := decodeInto[[]TagResponse](t, body)
	require.Len(t, assigned, 1)
	assert.Equal(t, "Dessert", assigned[0].Name)
}

func TestPosts_CreateMatchesPayloadAndDetailNests(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.login("cook@example.com")
	tag := e.createTag(token, "Soup")

	status, body := e.do(http.MethodPost, "/api/ingredients", token, map[string]any{"name": "Lentils"})
	require.Equal(t, http.StatusCreated, status)
	lentils := decodeInto[TagResponse](t, body)

	created := e.createPost(token, map[string]any{
		"title":        "Red lentil soup",
		"time_minutes": 35,
		"price":        "4.50",
		"link":         "https://example.com/soup",
		"tags":         []uint{tag.ID},
		"ingredients":  []uint{lentils.ID},
	})
	assert.Equal(t, "Red lentil soup", created.Title)
	assert.Equal(t, 35, created.TimeMinutes)
	assert.Equal(t, "4.50", created.Price.String())
	assert.Equal(t, "https://example.com/soup", created.Link)
	assert.Equal(t, []uint{tag.ID}, created.Tags)
	assert.Equal(t, []uint{lentils.ID}, created.Ingredients)
	assert.Nil(t, created.Image)

	status, body = e.do(http.MethodGet, postPath(created.ID, ""), token, nil)
	require.Equal(t, http.StatusOK, status)
	detail := decodeInto[PostDetailResponse](t, body)
	require.Len(t, detail.Tags, 1)
	assert.Equal(t, "Soup", detail.Tags[0].Name)
	require.Len(t, detail.Ingredients, 1)
	assert.Equal(t, "Lentils", detail.Ingredients[0].Name)
	assert.Empty(t, detail.Images)
}

func TestTextFields_RejectBooleans(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.login("cook@example.com")

	status, body := e.do(http.MethodPost, "/api/tags", token, map[string]any{"name": false})
	require.Equal(t, http.StatusBadRequest, status, string(body))
	resp := decodeInto[models.ErrorResponse](t, body)
	assert.Equal(t, []string{"Not a valid string."}, resp.Fields["name"])

	status, body = e.do(http.MethodPost, "/api/posts", token, map[string]any{"title": true, "time_minutes": 5, "price": "2.50"})
	require.Equal(t, http.StatusBadRequest, status, string(body))
	resp = decodeInto[models.ErrorResponse](t, body)
	assert.Equal(t, []string{"Not a valid string."}, resp.Fields["title"])

	status, body = e.do(http.MethodGet, "/api/posts", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decodeInto[[]PostResponse](t, body))
}

func TestPosts_ValidationErrors(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.login("cook@example.com")

	status, body := e.do(http.MethodPost, "/api/posts", token, map[string]any{"time_minutes": "soon"})
	require.Equal(t, http.StatusBadRequest, status)
	resp := decodeInto[models.ErrorResponse](t, body)
	assert.Contains(t, resp.Fields, "title")
	assert.Contains(t, resp.Fields, "time_minutes")
	assert.Contains(t, resp.Fields, "price")

	req := httptest.NewRequest(http.MethodPost, "/api/posts", strings.NewReader(`{"title":`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	status, _ = e.send(req, token)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPosts_OtherUsersRecordsAreNotFound(t *testing.T) {
	e := newTestEnv(t)
	_, owner := e.login("owner@example.com")
	_, intruder := e.login("intruder@example.com")
	post := e.createPost(owner, nil)

	checks := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, postPath(post.ID, ""), nil},
		{http.MethodPatch, postPath(post.ID, ""), map[string]any{"title": "Mine now"}},
		{http.MethodPut, postPath(post.ID, ""), map[string]any{"title": "x", "time_minutes": 1, "price": "1.00"}},
		{http.MethodDelete, postPath(post.ID, ""), nil},
		{http.MethodGet, postPath(post.ID, "/comments"), nil},
		{http.MethodPut, postPath(post.ID, "/rates"), map[string]any{"rate": 5}},
	}
	for _, c := range checks {
		status, body := e.do(c.method, c.path, intruder, c.body)
		assert.Equal(t, http.StatusNotFound, status, "%s %s: %s", c.method, c.path, body)
	}

	status, body := e.do(http.MethodGet, "/api/posts", intruder, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decodeInto[[]PostResponse](t, body))

	var stored models.Post
	require.NoError(t, e.db.First(&stored, post.ID).Error)
	assert.Equal(t, "Sample recipe", stored.Title)
}

func TestPosts_InvalidIDIsNotFound(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.login("cook@example.com")

	status, _ := e.do(http.MethodGet, "/api/posts/abc", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPosts_FilterByTags(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.login("cook@example.com")
	vegan := e.createTag(token, "Vegan")
	quick := e.createTag(token, "Quick")

	p1 := e.createPost(token, map[string]any{"title": "Salad", "tags": []uint{vegan.ID}})
	p2 := e.createPost(token, map[string]any{"title": "Toast", "tags": []uint{quick.ID}})
	e.createPost(token, map[string]any{"title": "Stew"})

	path := "/api/posts?tags=" + strconv.FormatUint(uint64(vegan.ID), 10) + "," + strconv.FormatUint(uint64(quick.ID), 10)
	status, body := e.do(http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, status)
	got := decodeInto[[]PostResponse](t, body)
	ids := make([]uint, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []uint{p1.ID, p2.ID}, ids)

	status, _ = e.do(http.MethodGet, "/api/posts?tags=a,b", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = e.do(http.MethodGet, "/api/posts?tags=0", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decodeInto[[]PostResponse](t, body))
}

func TestPosts_FilterByIngredients(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.login("cook@example.com")

	status, body := e.do(http.MethodPost, "/api/ingredients", token, map[string]any{"name": "Basil"})
	require.Equal(t, http.StatusCreated, status)
	basil := decodeInto[TagResponse](t, body)

	pesto := e.createPost(token, map[string]any{"title": "Pesto", "ingredients": []uint{basil.ID}})
	e.createPost(token, map[string]any{"title": "Plain rice"})

	status, body = e.do(http.MethodGet, "/api/posts?ingredients="+strconv.FormatUint(uint64(basil.ID), 10), token, nil)
	require.Equal(t, http.StatusOK, status)
	got := decodeInto[[]PostResponse](t, body)
	require.Len(t, got, 1)
	assert.Equal(t, pesto.ID, got[0].ID)

	status, body = e.do(http.MethodGet, "/api/posts?ingredients=0", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decodeInto[[]PostResponse](t, body))
}

func TestPosts_PatchAndPut(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.login("cook@example.com")
	tag := e.createTag(token, "Dinner")
	post := e.createPost(token, map[string]any{
		"title": "Curry", "link": "https://example.com/curry", "tags": []uint{tag.ID},
	})

	status, body := e.do(http.MethodPatch, postPath(post.ID, ""), token, map[string]any{"title": "Green curry"})
	require.Equal(t, http.StatusOK, status, string(body))
	patched := decodeInto[PostResponse](t, body)
	assert.Equal(t, "Green curry", patched.Title)
	assert.Equal(t, "https://example.com/curry", patched.Link)
	assert.Equal(t, []uint{tag.ID}, patched.Tags)
	assert.Equal(t, "5.00", patched.Price.String())

	status, body = e.do(http.MethodPut, postPath(post.ID, ""), token, map[string]any{
		"title": "Red curry", "time_minutes": 45, "price": "7.25",
	})
	require.Equal(t, http.StatusOK, status, string(body))
	replaced := decodeInto[PostResponse](t, body)
	assert.Equal(t, "Red curry", replaced.Title)
	assert.Equal(t, 45, replaced.TimeMinutes)
	assert.Equal(t, "7.25", replaced.Price.String())
	assert.Empty(t, replaced.Link)
	assert.Empty(t, replaced.Tags)

	status, _ = e.do(http.MethodPut, postPath(post.ID, ""), token, map[string]any{"title": "Incomplete"})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestPosts_ImageUploadAndGallery(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.login("cook@example.com")
	post := e.createPost(token, nil)

	status, body := e.upload(http.MethodPatch, postPath(post.ID, ""), token, "image", testutil.TinyPNG(t, 40, 30), nil)
	require.Equal(t, http.StatusOK, status, string(body))
	withImage := decodeInto[PostResponse](t, body)
	require.NotNil(t, withImage.Image)
	assert.True(t, strings.HasPrefix(*withImage.Image, "/media/uploads/post/"), *withImage.Image)

	status, _ = e.do(http.MethodGet, *withImage.Image, "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = e.upload(http.MethodPost, postPath(post.ID, "/upload-image"), token, "image", testutil.TinyPNG(t, 20, 20), nil)
	require.Equal(t, http.StatusOK, status, string(body))
	gallery := decodeInto[ImageResponse](t, body)
	require.NotNil(t, gallery.Image)

	status, body = e.do(http.MethodGet, postPath(post.ID, ""), token, nil)
	require.Equal(t, http.StatusOK, status)
	detail := decodeInto[PostDetailResponse](t, body)
	require.Len(t, detail.Images, 1)
	assert.Equal(t, gallery.ID, detail.Images[0].ID)

	status, body = e.do(http.MethodPost, postPath(post.ID, "/upload-image"), token, map[string]any{})
	require.Equal(t, http.StatusBadRequest, status)
	resp := decodeInto[models.ErrorResponse](t, body)
	assert.NotEmpty(t, resp.Fields["image"])

	status, body = e.upload(http.MethodPost, postPath(post.ID, "/upload-image"), token, "image", []byte("not an image at all"), nil)
	assert.Equal(t, http.StatusBadRequest, status, string(body))
}

func TestPosts_MultipartCreate(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.login("cook@example.com")

	status, body := e.upload(http.MethodPost, "/api/posts", token, "image", testutil.TinyPNG(t, 10, 10), map[string]string{
		"title": "Pancakes", "time_minutes": "20", "price": "3.10",
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	created := decodeInto[PostResponse](t, body)
	assert.Equal(t, "Pancakes", created.Title)
	assert.NotNil(t, created.Image)
}

func TestCommentsAndRates(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.login("cook@example.com")
	post := e.createPost(token, nil)

	status, body := e.do(http.MethodPost, postPath(post.ID, "/comments"), token, map[string]any{"title": "Tip", "text": "Add lime"})
	require.Equal(t, http.StatusCreated, status, string(body))
	comment := decodeInto[CommentResponse](t, body)
	assert.Equal(t, post.ID, comment.Post)

	status, body = e.do(http.MethodGet, postPath(post.ID, "/comments"), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decodeInto[[]CommentResponse](t, body), 1)

	status, _ = e.do(http.MethodDelete, postPath(post.ID, "/comments/"+strconv.FormatUint(uint64(comment.ID), 10)), token, nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = e.do(http.MethodPut, postPath(post.ID, "/rates"), token, map[string]any{"rate": 9})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = e.do(http.MethodPut, postPath(post.ID, "/rates"), token, map[string]any{"rate": 4})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, 4, decodeInto[RateResponse](t, body).Rate)

	status, body = e.do(http.MethodGet, postPath(post.ID, "/rates"), token, nil)
	require.Equal(t, http.StatusOK, status)
	summary := decodeInto[models.RateSummary](t, body)
	assert.Equal(t, int64(1), summary.Count)
	assert.InDelta(t, 4.0, summary.Average, 0.001)
}

func TestAddresses(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.login("cook@example.com")
	_, other := e.login("other@example.com")

	status, body := e.do(http.MethodPost, "/api/addresses", token, map[string]any{"street": "1 Main St", "city": "Lyon", "postcode": 69001})
	require.Equal(t, http.StatusCreated, status, string(body))
	addr := decodeInto[models.Address](t, body)
	path := "/api/addresses/" + strconv.FormatUint(uint64(addr.ID), 10)

	status, body = e.do(http.MethodPatch, path, token, map[string]any{"country": "FR"})
	require.Equal(t, http.StatusOK, status)
	patched := decodeInto[models.Address](t, body)
	assert.Equal(t, "Lyon", patched.City)
	assert.Equal(t, "FR", patched.Country)

	status, body = e.do(http.MethodPut, path, token, map[string]any{"city": "Paris"})
	require.Equal(t, http.StatusOK, status)
	replaced := decodeInto[models.Address](t, body)
	assert.Equal(t, "Paris", replaced.City)
	assert.Empty(t, replaced.Street)
	assert.Nil(t, replaced.Postcode)

	status, _ = e.do(http.MethodGet, path, other, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = e.do(http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestUsers_UpdateAvatarAndDelete(t *testing.T) {
	e := newTestEnv(t)
	user, token := e.login("cook@example.com")
	e.createPost(token, nil)

	status, body := e.do(http.MethodPatch, "/api/users/me", token, map[string]any{"first_name": "Ada", "birthday": "1990-04-01"})
	require.Equal(t, http.StatusOK, status, string(body))
	me := decodeInto[UserResponse](t, body)
	assert.Equal(t, "Ada", me.FirstName)
	require.NotNil(t, me.Birthday)
	assert.Equal(t, "1990-04-01", *me.Birthday)

	status, body = e.upload(http.MethodPut, "/api/users/me/avatar", token, "avatar", testutil.TinyPNG(t, 16, 16), nil)
	require.Equal(t, http.StatusOK, status, string(body))
	withAvatar := decodeInto[UserResponse](t, body)
	require.NotNil(t, withAvatar.Avatar)
	assert.True(t, strings.HasPrefix(*withAvatar.Avatar, "/media/uploads/avatar/"))

	status, _ = e.do(http.MethodDelete, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusNoContent, status)

	var posts int64
	require.NoError(t, e.db.Model(&models.Post{}).Where("user_id = ?", user.ID).Count(&posts).Error)
	assert.Zero(t, posts)

	status, _ = e.do(http.MethodGet, "/api/posts", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestWebsocket_RequiresUpgrade(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.login("cook@example.com")

	status, _ := e.do(http.MethodGet, "/api/ws", token, nil)
	assert.Equal(t, http.StatusUpgradeRequired, status)

	status, _ = e.do(http.MethodGet, "/api/ws", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
