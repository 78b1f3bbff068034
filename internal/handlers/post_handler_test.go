package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anonto42/wingit/backend/internal/models"
	"github.com/anonto42/wingit/backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postPage struct {
	Posts []models.PostView `json:"posts"`
}

func TestPostLifecycle(t *testing.T) {
	app := testutil.NewApp(t)
	alice := testutil.CreateUser(t, app.DB, "alice")
	bob := testutil.CreateUser(t, app.DB, "bob")
	aliceToken, bobToken := app.Token(t, alice), app.Token(t, bob)

	rec := app.Do(t, http.MethodPost, "/api/posts", map[string]any{
		"content":    "  sunset over the bay  ",
		"postTypeId": 2,
	}, aliceToken)
	testutil.RequireStatus(t, rec, http.StatusCreated)
	var created models.PostView
	testutil.DecodeData(t, rec, &created)
	assert.Equal(t, "sunset over the bay", created.Content)
	assert.Equal(t, "scenic", created.PostType.Name)
	assert.Equal(t, "alice", created.Author.Username)
	assert.Nil(t, created.MyReaction)

	rec = app.Do(t, http.MethodPost, "/api/posts", map[string]any{"content": "x", "postTypeId": 42}, aliceToken)
	testutil.RequireStatus(t, rec, http.StatusBadRequest)
	rec = app.Do(t, http.MethodPost, "/api/posts", map[string]any{"content": " \n\t ", "postTypeId": 1}, aliceToken)
	testutil.RequireStatus(t, rec, http.StatusBadRequest)

	postPath := path("/api/posts/%d", created.ID)
	testutil.RequireStatus(t, app.Do(t, http.MethodPut, postPath, map[string]any{"content": "   "}, aliceToken), http.StatusBadRequest)
	rec = app.Do(t, http.MethodPut, postPath, map[string]any{"content": "hijacked"}, bobToken)
	testutil.RequireStatus(t, rec, http.StatusForbidden)

	rec = app.Do(t, http.MethodPut, postPath, map[string]any{"content": "sunrise", "postTypeId": 3}, aliceToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	var updated models.PostView
	testutil.DecodeData(t, rec, &updated)
	assert.Equal(t, "sunrise", updated.Content)
	assert.Equal(t, "discussion", updated.PostType.Name)

	rec = app.Do(t, http.MethodGet, path("/api/posts?user_id=%d", alice.ID), nil, bobToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	var page postPage
	testutil.DecodeData(t, rec, &page)
	require.Len(t, page.Posts, 1)

	testutil.RequireStatus(t, app.Do(t, http.MethodDelete, postPath, nil, bobToken), http.StatusForbidden)
	testutil.RequireStatus(t, app.Do(t, http.MethodDelete, postPath, nil, aliceToken), http.StatusOK)
	testutil.RequireStatus(t, app.Do(t, http.MethodGet, postPath, nil, aliceToken), http.StatusNotFound)
}

func TestFeed_FollowedAndBlocked(t *testing.T) {
	app := testutil.NewApp(t)
	alice := testutil.CreateUser(t, app.DB, "alice")
	bob := testutil.CreateUser(t, app.DB, "bob")
	carol := testutil.CreateUser(t, app.DB, "carol")
	testutil.CreatePost(t, app.DB, alice.ID, "mine")
	testutil.CreatePost(t, app.DB, bob.ID, "from bob")
	testutil.CreatePost(t, app.DB, carol.ID, "from carol")
	token := app.Token(t, alice)

	feed := func() []string {
		rec := app.Do(t, http.MethodGet, "/api/feed", nil, token)
		testutil.RequireStatus(t, rec, http.StatusOK)
		var page postPage
		testutil.DecodeData(t, rec, &page)
		contents := make([]string, len(page.Posts))
		for i, p := range page.Posts {
			contents[i] = p.Content
		}
		return contents
	}
	assert.Equal(t, []string{"mine"}, feed())

	testutil.RequireStatus(t, app.Do(t, http.MethodPost, path("/api/users/%d/follow", bob.ID), nil, token), http.StatusOK)
	assert.ElementsMatch(t, []string{"mine", "from bob"}, feed())

	testutil.RequireStatus(t, app.Do(t, http.MethodPost, path("/api/blocks/%d", bob.ID), nil, token), http.StatusCreated)
	assert.Equal(t, []string{"mine"}, feed())
}

func TestReactionsAndComments(t *testing.T) {
	app := testutil.NewApp(t)
	alice := testutil.CreateUser(t, app.DB, "alice")
	bob := testutil.CreateUser(t, app.DB, "bob")
	post := testutil.CreatePost(t, app.DB, alice.ID, "hello")
	aliceToken, bobToken := app.Token(t, alice), app.Token(t, bob)

	// bob follows alice so her post notifications reach her
	testutil.RequireStatus(t, app.Do(t, http.MethodPost, path("/api/users/%d/follow", alice.ID), nil, bobToken), http.StatusOK)

	reactPath := path("/api/posts/%d/reactions", post.ID)
	rec := app.Do(t, http.MethodPut, reactPath, map[string]any{"reactionTypeId": 1}, bobToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	var summary struct {
		Counts map[string]int64 `json:"counts"`
		Mine   *string          `json:"mine"`
	}
	testutil.DecodeData(t, rec, &summary)
	assert.Equal(t, int64(1), summary.Counts["like"])
	require.NotNil(t, summary.Mine)
	assert.Equal(t, "like", *summary.Mine)

	rec = app.Do(t, http.MethodPut, reactPath, map[string]any{"reactionTypeId": 2}, bobToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	summary.Counts, summary.Mine = nil, nil
	testutil.DecodeData(t, rec, &summary)
	assert.Equal(t, int64(0), summary.Counts["like"])
	assert.Equal(t, int64(1), summary.Counts["dislike"])
	require.NotNil(t, summary.Mine)
	assert.Equal(t, "dislike", *summary.Mine)

	testutil.RequireStatus(t, app.Do(t, http.MethodPut, reactPath, map[string]any{"reactionTypeId": 9}, bobToken), http.StatusBadRequest)

	rec = app.Do(t, http.MethodPost, path("/api/posts/%d/comments", post.ID), map[string]any{"content": "nice"}, bobToken)
	testutil.RequireStatus(t, rec, http.StatusCreated)
	var comment models.CommentView
	testutil.DecodeData(t, rec, &comment)
	assert.Equal(t, "bob", comment.Author.Username)

	rec = app.Do(t, http.MethodPost, path("/api/posts/%d/comments", post.ID), map[string]any{
		"content":  "thanks",
		"parentId": comment.ID,
	}, aliceToken)
	testutil.RequireStatus(t, rec, http.StatusCreated)

	rec = app.Do(t, http.MethodGet, path("/api/posts/%d/comments", post.ID), nil, aliceToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	var tree struct {
		Comments []models.CommentView `json:"comments"`
		Total    int                  `json:"total"`
	}
	testutil.DecodeData(t, rec, &tree)
	assert.Equal(t, 2, tree.Total)
	require.Len(t, tree.Comments, 1)
	require.Len(t, tree.Comments[0].Replies, 1)
	assert.Equal(t, "thanks", tree.Comments[0].Replies[0].Content)

	rec = app.Do(t, http.MethodGet, path("/api/posts/%d", post.ID), nil, bobToken)
	testutil.RequireStatus(t, rec, http.StatusOK)
	var view models.PostView
	testutil.DecodeData(t, rec, &view)
	assert.Equal(t, int64(2), view.CommentCount)
	require.NotNil(t, view.MyReaction)
	assert.Equal(t, "dislike", *view.MyReaction)

	// the follow, the first reaction only, and bob's comment; alice's own reply is skipped
	notifications, total, err := app.Repos.Notifications.GetByRecipientID(alice.ID, false, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	types := make([]string, len(notifications))
	for i, n := range notifications {
		types[i] = n.Type
	}
	assert.ElementsMatch(t, []string{models.NotificationFollow, models.NotificationReaction, models.NotificationComment}, types)
}

func TestBookmarks(t *testing.T) {
	app := testutil.NewApp(t)
	alice := testutil.CreateUser(t, app.DB, "alice")
	post := testutil.CreatePost(t, app.DB, alice.ID, "keep me")
	token := app.Token(t, alice)

	bookmarkPath := path("/api/posts/%d/bookmark", post.ID)
	testutil.RequireStatus(t, app.Do(t, http.MethodPost, bookmarkPath, nil, token), http.StatusCreated)
	testutil.RequireStatus(t, app.Do(t, http.MethodPost, bookmarkPath, nil, token), http.StatusConflict)

	rec := app.Do(t, http.MethodGet, path("/api/posts/%d", post.ID), nil, token)
	var view models.PostView
	testutil.DecodeData(t, rec, &view)
	assert.True(t, view.IsBookmarked)

	rec = app.Do(t, http.MethodGet, "/api/bookmarks", nil, token)
	testutil.RequireStatus(t, rec, http.StatusOK)
	assert.Contains(t, rec.Body.String(), "keep me")

	testutil.RequireStatus(t, app.Do(t, http.MethodDelete, bookmarkPath, nil, token), http.StatusOK)
	testutil.RequireStatus(t, app.Do(t, http.MethodDelete, bookmarkPath, nil, token), http.StatusNotFound)
}

func TestUploadMedia(t *testing.T) {
	app := testutil.NewApp(t)
	alice := testutil.CreateUser(t, app.DB, "alice")
	post := testutil.CreatePost(t, app.DB, alice.ID, "with a picture")
	token := app.Token(t, alice)

	upload := func(filename, contentType string, content []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, path("/api/posts/%d/media", post.ID), &buf)
		req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		return serve(app, req)
	}

	rec := upload("notes.txt", "text/plain", []byte("plain"))
	testutil.RequireStatus(t, rec, http.StatusBadRequest)

	rec = upload("photo.PNG", "image/png", []byte("\x89PNG fake"))
	testutil.RequireStatus(t, rec, http.StatusCreated)
	var media models.PostMedia
	testutil.DecodeData(t, rec, &media)
	assert.Equal(t, "image", media.MediaType)
	assert.True(t, strings.HasPrefix(media.MediaURL, "/uploads/posts/"), media.MediaURL)
	assert.True(t, strings.HasSuffix(media.MediaURL, ".png"), media.MediaURL)

	key := strings.TrimPrefix(media.MediaURL, "/uploads/")
	stored, err := os.ReadFile(filepath.Join(app.Storage.BasePath(), filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG fake"), stored)

	rec = app.Do(t, http.MethodGet, media.MediaURL, nil, "")
	testutil.RequireStatus(t, rec, http.StatusOK)

	testutil.RequireStatus(t, app.Do(t, http.MethodDelete, path("/api/posts/%d", post.ID), nil, token), http.StatusOK)
	_, err = os.Stat(filepath.Join(app.Storage.BasePath(), filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))
}
